package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/yogabrata/formation/model"
)

func idSuffix(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

func founderNames(company model.CompanyInfo) []string {
	names := make([]string, 0, len(company.Founders))
	for _, founder := range company.Founders {
		names = append(names, founder.Name)
	}
	return names
}

// prepareArticlesAction assembles the Articles document skeleton. Pure
// computation, no external calls.
type prepareArticlesAction struct{}

func (a *prepareArticlesAction) Name() string {
	return "prepare_articles"
}

func (a *prepareArticlesAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	articles := map[string]any{
		"companyName":         company.Name,
		"entityType":          company.EntityType,
		"registeredAgent":     "Yogabrata Legal Services",
		"principalOffice":     company.State,
		"organizers":          founderNames(company),
		"managementStructure": "Member-managed",
	}
	return map[string]any{
		"articlesPrepared": true,
		"documentId":       "articles_" + wfCtx.WorkflowId,
		"articlesContent":  articles,
		"filingFee":        200.00,
	}, nil
}

type obtainEinAction struct{}

func (a *obtainEinAction) Name() string {
	return "obtain_ein"
}

func (a *obtainEinAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{
		"einObtained":       true,
		"einNumber":         fmt.Sprintf("%s%s", time.Now().Format("20060102"), idSuffix(wfCtx.WorkflowId, 6)),
		"applicationMethod": "Online application",
		"processingTime":    "Immediate",
	}, nil
}

type businessBankingAction struct{}

func (a *businessBankingAction) Name() string {
	return "setup_business_banking"
}

func (a *businessBankingAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{
		"bankingSetup":     true,
		"recommendedBanks": []string{"Chase", "Bank of America", "Wells Fargo"},
		"accountTypes":     []string{"Business checking", "Business savings"},
		"nextSteps":        "Contact bank with EIN and Articles of Organization",
	}, nil
}

type payrollAction struct{}

func (a *payrollAction) Name() string {
	return "setup_payroll"
}

func (a *payrollAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{
		"payrollConfigured":     true,
		"systemRecommendations": []string{"Gusto", "ADP", "Paychex"},
		"setupSteps":            []string{"Create company profile", "Add employees", "Configure payroll schedule"},
		"estimatedMonthlyCost":  "$40-150 depending on provider",
	}, nil
}

// operatingAgreementAction drafts the member agreement from founder records.
type operatingAgreementAction struct{}

func (a *operatingAgreementAction) Name() string {
	return "generate_operating_agreement"
}

func (a *operatingAgreementAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	members := make([]map[string]any, 0, len(company.Founders))
	for _, founder := range company.Founders {
		members = append(members, map[string]any{
			"name":                founder.Name,
			"role":                string(founder.Role),
			"ownershipPercentage": founder.OwnershipPercentage,
		})
	}
	return map[string]any{
		"agreementGenerated": true,
		"documentId":         "oa_" + wfCtx.WorkflowId,
		"agreement": map[string]any{
			"agreementType":       "Operating Agreement",
			"companyName":         company.Name,
			"members":             members,
			"managementStructure": "Member-managed",
			"profitDistribution":  "Proportional to ownership",
			"meetingRequirements": "Annual member meetings",
		},
		"customizationNeeded": true,
	}, nil
}

type draftBylawsAction struct{}

func (a *draftBylawsAction) Name() string {
	return "draft_bylaws"
}

func (a *draftBylawsAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{
		"bylawsDrafted": true,
		"documentId":    "bylaws_" + wfCtx.WorkflowId,
		"sections":      []string{"Board of directors", "Officers", "Shareholder meetings", "Stock transfers", "Amendments"},
	}, nil
}

type appointDirectorsAction struct{}

func (a *appointDirectorsAction) Name() string {
	return "appoint_directors"
}

func (a *appointDirectorsAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{
		"directorsAppointed": true,
		"directors":          founderNames(wfCtx.Company),
	}, nil
}

type issueStockAction struct{}

func (a *issueStockAction) Name() string {
	return "issue_stock"
}

func (a *issueStockAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	grants := make([]map[string]any, 0, len(company.Founders))
	for _, founder := range company.Founders {
		grants = append(grants, map[string]any{
			"holder":            founder.Name,
			"percentage":        founder.OwnershipPercentage,
			"shareClass":        "Common",
			"vestingSchedule":   "4 years, 1 year cliff",
			"boardApprovalDate": time.Now().Format("2006-01-02"),
		})
	}
	return map[string]any{
		"stockIssued": true,
		"grants":      grants,
	}, nil
}
