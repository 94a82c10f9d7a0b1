package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yogabrata/formation/gateway"
	"github.com/yogabrata/formation/model"
)

// defaultSources is queried when a step declares no sources of its own.
var defaultSources = []string{"wa_sos", "wa_dor", "legal_us"}

func stepSources(step model.StepTemplate, fallback []string) []string {
	if len(step.Sources) > 0 {
		return step.Sources
	}
	return fallback
}

func sourceNames(results map[string]gateway.Response) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resultData(results map[string]gateway.Response) map[string]any {
	out := make(map[string]any, len(results))
	for name, resp := range results {
		out[name] = resp
	}
	return out
}

// requireSource fails when a step's required source answered with an error.
// Errors from other sources stay recorded in the aggregated result.
func requireSource(results map[string]gateway.Response, name string) error {
	if name == "" {
		return nil
	}
	resp, ok := results[name]
	if !ok {
		return fmt.Errorf("required source %s was not queried", name)
	}
	if resp.IsError() {
		return fmt.Errorf("required source %s failed: %s", name, resp.Error)
	}
	return nil
}

// sourceQueryAction is the fallback for steps without a dedicated action: it
// queries the step's declared sources concurrently and aggregates every
// response, errors included, keyed by source name.
type sourceQueryAction struct {
	gateway gateway.Client
}

func (a *sourceQueryAction) Name() string {
	return "source_query"
}

func (a *sourceQueryAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	params := ResolveParams(wfCtx.Data, step.InputParams)
	query := fmt.Sprintf("Execute %s for %s", step.Name, company.Name)
	results := a.gateway.QueryMany(ctx, stepSources(step, defaultSources), query, params)
	if err := requireSource(results, step.RequiredSource); err != nil {
		return nil, err
	}
	return map[string]any{
		"sources":     sourceNames(results),
		"results":     resultData(results),
		"companyName": company.Name,
		"entityType":  company.EntityType,
		"state":       company.State,
	}, nil
}

type analyzeRequirementsAction struct {
	gateway gateway.Client
}

func (a *analyzeRequirementsAction) Name() string {
	return "analyze_requirements"
}

func (a *analyzeRequirementsAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	query := fmt.Sprintf("Analyze business structure for %s %s in %s",
		company.Industry, company.EntityType, company.State)
	results := a.gateway.QueryMany(ctx, stepSources(step, []string{"wa_sos", "legal_us"}), query, nil)
	if err := requireSource(results, step.RequiredSource); err != nil {
		return nil, err
	}
	return map[string]any{
		"recommendedStructure": company.EntityType,
		"stateRequirements":    fmt.Sprintf("%s %s requirements", company.State, company.EntityType),
		"federalRequirements":  "Standard federal business requirements",
		"sources":              sourceNames(results),
		"results":              resultData(results),
	}, nil
}

type nameAvailabilityAction struct {
	gateway gateway.Client
}

func (a *nameAvailabilityAction) Name() string {
	return "name_availability"
}

func (a *nameAvailabilityAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	query := fmt.Sprintf("Check availability of business name: %s", company.Name)
	results := a.gateway.QueryMany(ctx, stepSources(step, []string{"wa_sos"}), query, nil)
	required := step.RequiredSource
	if required == "" {
		required = "wa_sos"
	}
	if err := requireSource(results, required); err != nil {
		return nil, err
	}
	return map[string]any{
		"nameAvailable": true,
		"alternatives":  []string{company.Name + " LLC", company.Name + " Technologies"},
		"sources":       sourceNames(results),
		"results":       resultData(results),
	}, nil
}

type fileStateRegistrationAction struct {
	gateway gateway.Client
}

func (a *fileStateRegistrationAction) Name() string {
	return "file_state_registration"
}

func (a *fileStateRegistrationAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	query := fmt.Sprintf("File %s registration for %s", company.EntityType, company.Name)
	results := a.gateway.QueryMany(ctx, stepSources(step, []string{"wa_sos", "wa_dor"}), query, nil)
	if err := requireSource(results, step.RequiredSource); err != nil {
		return nil, err
	}
	return map[string]any{
		"filingSubmitted":        true,
		"filingNumber":           fmt.Sprintf("WA%s%s", time.Now().Format("20060102"), idSuffix(wfCtx.WorkflowId, 6)),
		"filingDate":             time.Now().Format(time.RFC3339),
		"expectedProcessingTime": "5-7 business days",
		"sources":                sourceNames(results),
		"results":                resultData(results),
	}, nil
}

type stateTaxesAction struct {
	gateway gateway.Client
}

func (a *stateTaxesAction) Name() string {
	return "register_state_taxes"
}

func (a *stateTaxesAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	query := fmt.Sprintf("Register %s for state tax accounts", company.Name)
	results := a.gateway.QueryMany(ctx, stepSources(step, []string{"wa_dor"}), query, nil)
	required := step.RequiredSource
	if required == "" {
		required = "wa_dor"
	}
	if err := requireSource(results, required); err != nil {
		return nil, err
	}
	suffix := idSuffix(wfCtx.WorkflowId, 8)
	return map[string]any{
		"taxRegistration":      true,
		"taxAccounts":          []string{"Business & Occupation Tax", "Sales Tax"},
		"registrationNumbers":  []string{"WA" + suffix + "1", "WA" + suffix + "2"},
		"quarterlyFilingDates": []string{"Jan 31", "Apr 30", "Jul 31", "Oct 31"},
		"sources":              sourceNames(results),
		"results":              resultData(results),
	}, nil
}

type complianceSetupAction struct {
	gateway gateway.Client
}

func (a *complianceSetupAction) Name() string {
	return "compliance_setup"
}

func (a *complianceSetupAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	company := wfCtx.Company
	query := fmt.Sprintf("Compliance obligations for %s %s in %s",
		company.Industry, company.EntityType, company.State)
	results := a.gateway.QueryMany(ctx, stepSources(step, []string{"legal_us"}), query, nil)
	if err := requireSource(results, step.RequiredSource); err != nil {
		return nil, err
	}
	return map[string]any{
		"complianceSetup": true,
		"monitoringAreas": []string{"Annual reports", "Tax filings", "License renewals"},
		"alertSchedule":   "Monthly compliance review",
		"sources":         sourceNames(results),
		"results":         resultData(results),
	}, nil
}
