package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yogabrata/formation/dispatch"
	"github.com/yogabrata/formation/model"
	"github.com/yogabrata/formation/persistence"
	"github.com/yogabrata/formation/registry"
	"github.com/yogabrata/formation/store"
)

// scriptedDispatcher records every dispatched step and fails or blocks the
// ones it is told to.
type scriptedDispatcher struct {
	mu       sync.Mutex
	calls    []string
	contexts map[string]dispatch.WorkflowContext
	fail     map[string]error
	release  map[string]chan struct{}
	started  map[string]chan struct{}
}

func newScriptedDispatcher() *scriptedDispatcher {
	return &scriptedDispatcher{
		contexts: make(map[string]dispatch.WorkflowContext),
		fail:     make(map[string]error),
		release:  make(map[string]chan struct{}),
		started:  make(map[string]chan struct{}),
	}
}

func (d *scriptedDispatcher) failStep(stepId string, err error) {
	d.fail[stepId] = err
}

// blockStep makes the step wait until the returned channel is closed; the
// second channel is closed when the step starts executing.
func (d *scriptedDispatcher) blockStep(stepId string) (chan struct{}, chan struct{}) {
	release := make(chan struct{})
	started := make(chan struct{})
	d.release[stepId] = release
	d.started[stepId] = started
	return release, started
}

func (d *scriptedDispatcher) Dispatch(ctx context.Context, wfCtx dispatch.WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	d.mu.Lock()
	d.calls = append(d.calls, step.StepId)
	d.contexts[step.StepId] = wfCtx
	started := d.started[step.StepId]
	release := d.release[step.StepId]
	failErr := d.fail[step.StepId]
	d.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if failErr != nil {
		return nil, failErr
	}
	return map[string]any{"step": step.StepId, "done": true}, nil
}

func (d *scriptedDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// recordingSnapshots keeps every persisted instance for inspection.
type recordingSnapshots struct {
	mu    sync.Mutex
	saved []*model.WorkflowInstance
}

func (r *recordingSnapshots) Save(wf *model.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, wf)
	return nil
}

func (r *recordingSnapshots) Load(workflowId string) (*model.WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].WorkflowId == workflowId {
			return r.saved[i], nil
		}
	}
	return nil, persistence.SnapshotNotFoundError{WorkflowId: workflowId}
}

func (r *recordingSnapshots) last() *model.WorkflowInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

func builtInRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.NewRegistry()
	require.NoError(t, registry.RegisterBuiltIn(r))
	return r
}

func customRegistry(t *testing.T, steps ...model.StepTemplate) *registry.Registry {
	t.Helper()
	r := registry.NewRegistry()
	require.NoError(t, r.Register("llc", steps))
	return r
}

func tmpl(id string, deps ...string) model.StepTemplate {
	return model.StepTemplate{StepId: id, Name: id, Dependencies: deps, EstimatedMinutes: 5}
}

func testCompany() model.CompanyInfo {
	return model.CompanyInfo{
		Name:       "Acme",
		EntityType: "llc",
		State:      "WA",
		Industry:   "technology",
		Founders: []model.FounderInfo{
			{Name: "Ann", Role: model.ROLE_CEO, OwnershipPercentage: 100},
		},
	}
}

func startAndAwait(t *testing.T, e *Engine, company model.CompanyInfo) *Execution {
	t.Helper()
	snapshot, err := e.StartWorkflow(company)
	require.NoError(t, err)
	exec, err := e.GetExecution(snapshot.WorkflowId)
	require.NoError(t, err)
	select {
	case <-exec.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("workflow did not finish in time")
	}
	return exec
}

func TestWorkflowRunsToCompletion(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	exec := startAndAwait(t, e, testCompany())

	snapshot := exec.Snapshot()
	require.Equal(t, model.STATUS_COMPLETED, snapshot.Status)
	require.Equal(t, 100.0, snapshot.ProgressPercentage)
	require.Equal(t, 10, snapshot.CompletedSteps)
	require.Empty(t, snapshot.UnreachableSteps)
	require.Equal(t, "completed", snapshot.EstimatedCompletion)

	// single executor, first-ready-in-declaration-order selection
	require.Equal(t, []string{
		"analyze_requirements",
		"name_availability",
		"prepare_articles",
		"file_state_registration",
		"obtain_ein",
		"setup_business_banking",
		"register_state_taxes",
		"setup_payroll",
		"compliance_setup",
		"generate_operating_agreement",
	}, dispatcher.dispatched())
}

func TestStepSeesDependencyOutputs(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	startAndAwait(t, e, testCompany())

	// by the time obtain_ein runs, every step before it in the chain has
	// published its output into the dispatch data
	wfCtx := dispatcher.contexts["obtain_ein"]
	steps := wfCtx.Data["steps"].(map[string]any)
	for _, depId := range []string{"analyze_requirements", "name_availability", "prepare_articles", "file_state_registration"} {
		require.Contains(t, steps, depId)
	}
	require.NotContains(t, steps, "setup_payroll")

	company := wfCtx.Data["company"].(map[string]any)
	require.Equal(t, "Acme", company["name"])
}

func TestStepFailureFailsWorkflow(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	dispatcher.failStep("obtain_ein", errors.New("irs unavailable"))
	snapshots := &recordingSnapshots{}
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), snapshots, 0)

	exec := startAndAwait(t, e, testCompany())

	snapshot := exec.Snapshot()
	require.Equal(t, model.STATUS_FAILED, snapshot.Status)
	require.Equal(t, 40.0, snapshot.ProgressPercentage)

	byId := make(map[string]model.StepSummary)
	for _, step := range snapshot.Steps {
		byId[step.StepId] = step
	}
	require.Equal(t, model.STATUS_FAILED, byId["obtain_ein"].Status)
	require.Contains(t, byId["obtain_ein"].Error, "irs unavailable")
	// dependents of the failed step stay pending, never cascade to failed
	require.Equal(t, model.STATUS_PENDING, byId["setup_business_banking"].Status)
	require.Equal(t, model.STATUS_PENDING, byId["setup_payroll"].Status)
	require.Contains(t, snapshot.UnreachableSteps, "setup_business_banking")
	require.Contains(t, snapshot.UnreachableSteps, "setup_payroll")

	// steps after the failure are never dispatched
	require.NotContains(t, dispatcher.dispatched(), "setup_business_banking")

	// terminal state reached the persistence layer
	require.Equal(t, model.STATUS_FAILED, snapshots.last().Status)
}

func TestUnsatisfiableDependencyFailsLoudly(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	reg := customRegistry(t, tmpl("a"), tmpl("b", "ghost"))
	e := NewEngine(reg, dispatcher, store.NewStore[*Execution](), nil, 0)

	exec := startAndAwait(t, e, testCompany())

	require.Equal(t, []string{"a"}, dispatcher.dispatched())
	snapshot := exec.Snapshot()
	require.Equal(t, model.STATUS_FAILED, snapshot.Status)
	require.Contains(t, snapshot.Diagnostic, "b")
	require.Equal(t, []string{"b"}, snapshot.UnreachableSteps)
}

func TestCancelLetsInFlightStepFinish(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	release, started := dispatcher.blockStep("name_availability")
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	snapshot, err := e.StartWorkflow(testCompany())
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("step never started")
	}
	require.NoError(t, e.Cancel(snapshot.WorkflowId))
	close(release)

	exec, err := e.GetExecution(snapshot.WorkflowId)
	require.NoError(t, err)
	exec.Await()

	final := exec.Snapshot()
	require.Equal(t, model.STATUS_CANCELLED, final.Status)

	byId := make(map[string]model.StepSummary)
	for _, step := range final.Steps {
		byId[step.StepId] = step
	}
	// the in-flight step completed its attempt before the loop stopped
	require.Equal(t, model.STATUS_COMPLETED, byId["name_availability"].Status)
	require.Equal(t, model.STATUS_PENDING, byId["prepare_articles"].Status)
	require.NotContains(t, dispatcher.dispatched(), "prepare_articles")
}

func TestCancelUnknownWorkflow(t *testing.T) {
	e := NewEngine(builtInRegistry(t), newScriptedDispatcher(), store.NewStore[*Execution](), nil, 0)
	err := e.Cancel("no-such-id")
	var notFound store.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestCancelAfterCompletionIsNoop(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	exec := startAndAwait(t, e, testCompany())
	require.Equal(t, model.STATUS_COMPLETED, exec.Snapshot().Status)

	require.NoError(t, e.Cancel(exec.WorkflowId()))
	require.Equal(t, model.STATUS_COMPLETED, exec.Snapshot().Status)
}

func TestStartWorkflowUnknownTemplate(t *testing.T) {
	reg := registry.NewRegistry()
	e := NewEngine(reg, newScriptedDispatcher(), store.NewStore[*Execution](), nil, 0)

	company := testCompany()
	company.EntityType = "partnership"
	_, err := e.StartWorkflow(company)
	require.Error(t, err)
	var unknown registry.UnknownTemplateError
	require.True(t, errors.As(err, &unknown))
}

func TestListWorkflowsOrdering(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	first := startAndAwait(t, e, testCompany())
	second := startAndAwait(t, e, testCompany())

	summaries := e.ListWorkflows()
	require.Len(t, summaries, 2)
	ids := []string{summaries[0].WorkflowId, summaries[1].WorkflowId}
	require.Contains(t, ids, first.WorkflowId())
	require.Contains(t, ids, second.WorkflowId())
	require.False(t, summaries[1].CreatedAt.Before(summaries[0].CreatedAt))
}

func TestProgressIsMonotonic(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	snapshots := &recordingSnapshots{}
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), snapshots, 0)

	exec := startAndAwait(t, e, testCompany())
	require.Equal(t, model.STATUS_COMPLETED, exec.Snapshot().Status)

	last := -1.0
	snapshots.mu.Lock()
	defer snapshots.mu.Unlock()
	for _, wf := range snapshots.saved {
		require.GreaterOrEqual(t, wf.ProgressPercentage, last)
		last = wf.ProgressPercentage
	}
}

func TestEngineStopDrainsWorkflows(t *testing.T) {
	dispatcher := newScriptedDispatcher()
	release, started := dispatcher.blockStep("analyze_requirements")
	e := NewEngine(builtInRegistry(t), dispatcher, store.NewStore[*Execution](), nil, 0)

	snapshot, err := e.StartWorkflow(testCompany())
	require.NoError(t, err)
	<-started

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	require.NoError(t, e.Stop())

	final, err := e.GetSnapshot(snapshot.WorkflowId)
	require.NoError(t, err)
	require.Equal(t, model.STATUS_CANCELLED, final.Status)
}
