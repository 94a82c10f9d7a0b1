package model

import "strings"

type FounderRole string

const ROLE_CEO FounderRole = "ceo"
const ROLE_CFO FounderRole = "cfo"
const ROLE_CTO FounderRole = "cto"
const ROLE_FOUNDER FounderRole = "founder"
const ROLE_OTHER FounderRole = "other"

func ToFounderRole(role string) FounderRole {
	switch strings.ToLower(role) {
	case "ceo":
		return ROLE_CEO
	case "cfo":
		return ROLE_CFO
	case "cto":
		return ROLE_CTO
	case "founder":
		return ROLE_FOUNDER
	}
	return ROLE_OTHER
}

type FounderInfo struct {
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Role                FounderRole `json:"role"`
	OwnershipPercentage float64     `json:"ownershipPercentage"`
	Responsibilities    []string    `json:"responsibilities,omitempty"`
}

// CompanyInfo describes the company being formed. Ownership percentages are
// recorded as supplied, they are not required to sum to 100.
type CompanyInfo struct {
	Name        string        `json:"name"`
	EntityType  string        `json:"entityType"`
	State       string        `json:"state"`
	Industry    string        `json:"industry"`
	Description string        `json:"description,omitempty"`
	Founders    []FounderInfo `json:"founders"`
}
