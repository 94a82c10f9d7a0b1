package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yogabrata/formation/gateway"
	"github.com/yogabrata/formation/model"
)

// stubGateway records the last query and answers from a canned response set.
type stubGateway struct {
	responses map[string]gateway.Response
	lastQuery string
	lastNames []string
}

func (s *stubGateway) Query(ctx context.Context, name string, query string, params map[string]any) gateway.Response {
	s.lastQuery = query
	if resp, ok := s.responses[name]; ok {
		return resp
	}
	return gateway.Response{Source: name, Data: map[string]any{"result": "ok"}}
}

func (s *stubGateway) QueryMany(ctx context.Context, names []string, query string, params map[string]any) map[string]gateway.Response {
	s.lastQuery = query
	s.lastNames = names
	out := make(map[string]gateway.Response, len(names))
	for _, name := range names {
		out[name] = s.Query(ctx, name, query, params)
	}
	return out
}

func testContext() WorkflowContext {
	wf := model.NewWorkflowInstance(model.CompanyInfo{
		Name:       "Acme",
		EntityType: "llc",
		State:      "WA",
		Industry:   "technology",
		Founders: []model.FounderInfo{
			{Name: "Ann", Role: model.ROLE_CEO, OwnershipPercentage: 60},
			{Name: "Bob", Role: model.ROLE_CTO, OwnershipPercentage: 40},
		},
	}, nil)
	return NewWorkflowContext(wf)
}

func step(id string) model.StepTemplate {
	return model.StepTemplate{StepId: id, Name: id, EstimatedMinutes: 10}
}

func TestDispatchKnownAction(t *testing.T) {
	gw := &stubGateway{}
	d := NewDispatcher(gw)

	result, err := d.Dispatch(context.Background(), testContext(), step("obtain_ein"))
	require.NoError(t, err)
	require.Equal(t, true, result["einObtained"])
	require.NotEmpty(t, result["einNumber"])
}

func TestDispatchFallbackQueriesDeclaredSources(t *testing.T) {
	gw := &stubGateway{}
	d := NewDispatcher(gw)

	custom := step("custom_research")
	custom.Sources = []string{"uspto", "legal_us"}
	result, err := d.Dispatch(context.Background(), testContext(), custom)
	require.NoError(t, err)
	require.Equal(t, []string{"uspto", "legal_us"}, gw.lastNames)
	require.Equal(t, []string{"legal_us", "uspto"}, result["sources"])
	require.Equal(t, "Acme", result["companyName"])
}

func TestDispatchFallbackDefaultSources(t *testing.T) {
	gw := &stubGateway{}
	d := NewDispatcher(gw)

	_, err := d.Dispatch(context.Background(), testContext(), step("custom_research"))
	require.NoError(t, err)
	require.Equal(t, defaultSources, gw.lastNames)
}

func TestDispatchRequiredSourceFailure(t *testing.T) {
	gw := &stubGateway{responses: map[string]gateway.Response{
		"wa_sos": {Source: "wa_sos", Error: "connection refused"},
	}}
	d := NewDispatcher(gw)

	_, err := d.Dispatch(context.Background(), testContext(), step("name_availability"))
	require.Error(t, err)
	var dispatchErr DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	require.Equal(t, "name_availability", dispatchErr.StepId)
	require.Contains(t, dispatchErr.Cause.Error(), "wa_sos")
}

func TestDispatchNonRequiredSourceFailureAggregated(t *testing.T) {
	// A failing optional source is recorded in the result, not an error.
	gw := &stubGateway{responses: map[string]gateway.Response{
		"legal_us": {Source: "legal_us", Error: "timeout"},
	}}
	d := NewDispatcher(gw)

	result, err := d.Dispatch(context.Background(), testContext(), step("analyze_requirements"))
	require.NoError(t, err)
	results := result["results"].(map[string]any)
	require.True(t, results["legal_us"].(gateway.Response).IsError())
	require.False(t, results["wa_sos"].(gateway.Response).IsError())
}

func TestDispatchOperatingAgreementMembers(t *testing.T) {
	d := NewDispatcher(&stubGateway{})

	wfCtx := testContext()
	result, err := d.Dispatch(context.Background(), wfCtx, step("generate_operating_agreement"))
	require.NoError(t, err)
	require.Equal(t, "oa_"+wfCtx.WorkflowId, result["documentId"])
	agreement := result["agreement"].(map[string]any)
	members := agreement["members"].([]map[string]any)
	require.Len(t, members, 2)
	require.Equal(t, "Ann", members[0]["name"])
	require.Equal(t, string(model.ROLE_CEO), members[0]["role"])
	require.Equal(t, 60.0, members[0]["ownershipPercentage"])
}

func TestDispatchRegisterActionOverride(t *testing.T) {
	d := NewDispatcher(&stubGateway{})
	d.RegisterAction(&fakeAction{name: "obtain_ein"})

	result, err := d.Dispatch(context.Background(), testContext(), step("obtain_ein"))
	require.NoError(t, err)
	require.Equal(t, true, result["fake"])
}

type fakeAction struct {
	name string
}

func (a *fakeAction) Name() string {
	return a.name
}

func (a *fakeAction) Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	return map[string]any{"fake": true}, nil
}

func TestResolveParams(t *testing.T) {
	data := map[string]any{
		"company": map[string]any{"name": "Acme"},
		"steps": map[string]any{
			"obtain_ein": map[string]any{
				"output": map[string]any{"einNumber": "20260829abc123"},
			},
		},
	}
	params := map[string]any{
		"companyName": "$.company.name",
		"ein":         "$.steps.obtain_ein.output.einNumber",
		"literal":     "plain value",
		"missing":     "$.steps.ghost.output",
		"count":       3,
		"nested": map[string]any{
			"name": "$.company.name",
		},
	}
	resolved := ResolveParams(data, params)
	require.Equal(t, "Acme", resolved["companyName"])
	require.Equal(t, "20260829abc123", resolved["ein"])
	require.Equal(t, "plain value", resolved["literal"])
	require.Nil(t, resolved["missing"])
	require.Equal(t, 3, resolved["count"])
	require.Equal(t, "Acme", resolved["nested"].(map[string]any)["name"])
}

func TestWorkflowContextStepOutputs(t *testing.T) {
	wf := model.NewWorkflowInstance(model.CompanyInfo{Name: "Acme", EntityType: "llc"},
		[]model.StepTemplate{step("a"), step("b")})
	wf.Steps["a"].Result = map[string]any{"value": 42}

	wfCtx := NewWorkflowContext(wf)
	steps := wfCtx.Data["steps"].(map[string]any)
	require.Contains(t, steps, "a")
	require.NotContains(t, steps, "b")
	output := steps["a"].(map[string]any)["output"].(map[string]any)
	require.Equal(t, 42, output["value"])

	// the dispatch view must not alias the instance result map
	output["value"] = 0
	require.Equal(t, 42, wf.Steps["a"].Result["value"])
}
