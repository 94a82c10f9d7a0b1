package model

import "time"

type Status string

const STATUS_PENDING Status = "pending"
const STATUS_IN_PROGRESS Status = "in_progress"
const STATUS_COMPLETED Status = "completed"
const STATUS_FAILED Status = "failed"
const STATUS_CANCELLED Status = "cancelled"

// StepTemplate is the immutable definition of one unit of work in a formation
// workflow. Dependencies reference step ids within the same template set.
// Sources names the external sources the step queries; RequiredSource, when
// set, must answer successfully for the step to succeed.
type StepTemplate struct {
	StepId           string         `json:"stepId"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	AssignedRoles    []FounderRole  `json:"assignedRoles"`
	Dependencies     []string       `json:"dependencies"`
	EstimatedMinutes int            `json:"estimatedDurationMinutes"`
	Sources          []string       `json:"sources,omitempty"`
	RequiredSource   string         `json:"requiredSource,omitempty"`
	InputParams      map[string]any `json:"parameters,omitempty"`
}

// StepInstance is the mutable per-workflow copy of a step template. Status
// only moves forward: pending -> in_progress -> completed|failed.
type StepInstance struct {
	StepTemplate
	Status        Status         `json:"status"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	ActualMinutes int            `json:"actualDurationMinutes,omitempty"`
	Result        map[string]any `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// NewStepInstance deep-copies the template so instances sharing a template
// never alias its slices or maps.
func NewStepInstance(tmpl StepTemplate) *StepInstance {
	cp := tmpl
	cp.AssignedRoles = append([]FounderRole(nil), tmpl.AssignedRoles...)
	cp.Dependencies = append([]string(nil), tmpl.Dependencies...)
	if tmpl.Sources != nil {
		cp.Sources = append([]string(nil), tmpl.Sources...)
	}
	if tmpl.InputParams != nil {
		params := make(map[string]any, len(tmpl.InputParams))
		for k, v := range tmpl.InputParams {
			params[k] = v
		}
		cp.InputParams = params
	}
	return &StepInstance{
		StepTemplate: cp,
		Status:       STATUS_PENDING,
	}
}

func (s *StepInstance) IsTerminal() bool {
	return s.Status == STATUS_COMPLETED || s.Status == STATUS_FAILED
}
