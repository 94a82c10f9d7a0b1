package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yogabrata/formation/dispatch"
	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/model"
	"github.com/yogabrata/formation/persistence"
	"github.com/yogabrata/formation/registry"
	"github.com/yogabrata/formation/store"
	"go.uber.org/zap"
)

// Dispatcher executes the action behind one step.
type Dispatcher interface {
	Dispatch(ctx context.Context, wfCtx dispatch.WorkflowContext, step model.StepTemplate) (map[string]any, error)
}

// Engine drives workflow instances from pending to a terminal status. Each
// instance is owned by its own run goroutine; the engine only hands out
// snapshots and control handles.
type Engine struct {
	registry   *registry.Registry
	dispatcher Dispatcher
	store      *store.Store[*Execution]
	snapshots  persistence.SnapshotStore
	pacing     time.Duration
	wg         sync.WaitGroup
}

func NewEngine(reg *registry.Registry, dispatcher Dispatcher, st *store.Store[*Execution],
	snapshots persistence.SnapshotStore, pacing time.Duration) *Engine {
	if snapshots == nil {
		snapshots = persistence.NopSnapshotStore{}
	}
	return &Engine{
		registry:   reg,
		dispatcher: dispatcher,
		store:      st,
		snapshots:  snapshots,
		pacing:     pacing,
	}
}

// StartWorkflow instantiates the template for the company's entity type and
// launches the execution loop in the background. The returned snapshot is
// taken before the first step starts.
func (e *Engine) StartWorkflow(companyInfo model.CompanyInfo) (model.WorkflowSnapshot, error) {
	template, err := e.registry.GetTemplate(companyInfo.EntityType)
	if err != nil {
		return model.WorkflowSnapshot{}, err
	}
	wf := model.NewWorkflowInstance(companyInfo, template)
	exec := newExecution(wf)
	e.store.Add(wf.WorkflowId, exec)
	snapshot := exec.Snapshot()

	logger.Info("starting workflow",
		zap.String("workflowId", wf.WorkflowId),
		zap.String("company", companyInfo.Name),
		zap.String("entityType", companyInfo.EntityType),
		zap.Int("steps", len(template)))
	e.wg.Add(1)
	go e.run(exec)
	return snapshot, nil
}

func (e *Engine) GetExecution(workflowId string) (*Execution, error) {
	return e.store.Get(workflowId)
}

func (e *Engine) GetSnapshot(workflowId string) (model.WorkflowSnapshot, error) {
	exec, err := e.store.Get(workflowId)
	if err != nil {
		return model.WorkflowSnapshot{}, err
	}
	return exec.Snapshot(), nil
}

func (e *Engine) GetInstance(workflowId string) (*model.WorkflowInstance, error) {
	exec, err := e.store.Get(workflowId)
	if err != nil {
		return nil, err
	}
	return exec.Instance(), nil
}

func (e *Engine) ListWorkflows() []model.WorkflowSummary {
	execs := e.store.List()
	summaries := make([]model.WorkflowSummary, 0, len(execs))
	for _, exec := range execs {
		summaries = append(summaries, exec.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].WorkflowId < summaries[j].WorkflowId
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// Cancel requests cancellation of a workflow. Cancelling an already terminal
// workflow is an acknowledged no-op, terminal state is never mutated.
func (e *Engine) Cancel(workflowId string) error {
	exec, err := e.store.Get(workflowId)
	if err != nil {
		return err
	}
	logger.Info("cancellation requested", zap.String("workflowId", workflowId))
	exec.Cancel()
	return nil
}

// Stop cancels every active workflow and waits for their loops to drain.
func (e *Engine) Stop() error {
	for _, exec := range e.store.List() {
		exec.Cancel()
	}
	e.wg.Wait()
	return nil
}

func (e *Engine) run(exec *Execution) {
	defer e.wg.Done()
	defer close(exec.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workflow executor panicked",
				zap.String("workflowId", exec.WorkflowId()), zap.Any("panic", r))
			exec.mu.Lock()
			if !exec.wf.IsTerminal() {
				exec.wf.Status = model.STATUS_FAILED
				exec.wf.Diagnostic = "internal executor error"
				exec.wf.UpdatedAt = time.Now()
			}
			exec.mu.Unlock()
			e.persist(exec)
		}
	}()

	ctx := context.Background()
	for {
		if exec.cancelRequested() {
			e.markCancelled(exec)
			return
		}
		exec.mu.RLock()
		stepId := exec.wf.NextReadyStep()
		exec.mu.RUnlock()
		if stepId == "" {
			e.finish(exec)
			return
		}
		if terminal := e.executeStep(ctx, exec, stepId); terminal {
			e.persist(exec)
			return
		}
		if e.pacing > 0 {
			select {
			case <-time.After(e.pacing):
			case <-exec.cancel:
			}
		}
	}
}

// executeStep runs one step attempt and returns whether the workflow reached
// a terminal status. The instance lock is never held across the dispatch
// call, readers may observe the step in progress while it executes.
func (e *Engine) executeStep(ctx context.Context, exec *Execution, stepId string) bool {
	exec.mu.Lock()
	step := exec.wf.Steps[stepId]
	now := time.Now()
	step.Status = model.STATUS_IN_PROGRESS
	step.StartedAt = &now
	exec.wf.CurrentStepId = stepId
	if exec.wf.Status == model.STATUS_PENDING {
		exec.wf.Status = model.STATUS_IN_PROGRESS
	}
	exec.wf.UpdatedAt = now
	wfCtx := dispatch.NewWorkflowContext(exec.wf)
	template := step.StepTemplate
	exec.mu.Unlock()

	logger.Info("executing step",
		zap.String("workflowId", exec.WorkflowId()), zap.String("step", stepId))
	result, err := e.dispatcher.Dispatch(ctx, wfCtx, template)

	exec.mu.Lock()
	defer exec.mu.Unlock()
	completed := time.Now()
	step.CompletedAt = &completed
	if err != nil {
		step.Status = model.STATUS_FAILED
		step.Error = err.Error()
		exec.wf.Status = model.STATUS_FAILED
		logger.Error("step failed, failing workflow",
			zap.String("workflowId", exec.WorkflowId()),
			zap.String("step", stepId), zap.Error(err))
	} else {
		step.Status = model.STATUS_COMPLETED
		step.Result = result
		step.ActualMinutes = int(completed.Sub(now).Minutes())
		logger.Info("step completed",
			zap.String("workflowId", exec.WorkflowId()), zap.String("step", stepId))
	}
	exec.wf.UpdatedAt = completed
	exec.wf.RecomputeProgress()
	if err == nil && exec.wf.CompletedSteps() == len(exec.wf.Steps) {
		exec.wf.Status = model.STATUS_COMPLETED
		exec.wf.CompletedAt = &completed
		logger.Info("workflow completed", zap.String("workflowId", exec.WorkflowId()))
	}
	return exec.wf.IsTerminal()
}

// finish handles the no-ready-step case: either every step completed, or the
// remaining pending steps are unreachable and the workflow must fail loudly
// rather than hang.
func (e *Engine) finish(exec *Execution) {
	exec.mu.Lock()
	if !exec.wf.IsTerminal() {
		if exec.wf.CompletedSteps() == len(exec.wf.Steps) {
			now := time.Now()
			exec.wf.Status = model.STATUS_COMPLETED
			exec.wf.CompletedAt = &now
			exec.wf.UpdatedAt = now
		} else {
			unreachable := exec.wf.UnreachableSteps()
			exec.wf.Status = model.STATUS_FAILED
			exec.wf.Diagnostic = fmt.Sprintf("unreachable steps: %s", strings.Join(unreachable, ", "))
			exec.wf.UpdatedAt = time.Now()
			logger.Error("workflow has unreachable steps, failing",
				zap.String("workflowId", exec.wf.WorkflowId),
				zap.Strings("steps", unreachable))
		}
	}
	exec.mu.Unlock()
	e.persist(exec)
}

func (e *Engine) markCancelled(exec *Execution) {
	exec.mu.Lock()
	if !exec.wf.IsTerminal() {
		exec.wf.Status = model.STATUS_CANCELLED
		exec.wf.UpdatedAt = time.Now()
		logger.Info("workflow cancelled", zap.String("workflowId", exec.wf.WorkflowId))
	}
	exec.mu.Unlock()
	e.persist(exec)
}

func (e *Engine) persist(exec *Execution) {
	if err := e.snapshots.Save(exec.Instance()); err != nil {
		logger.Error("error persisting workflow snapshot",
			zap.String("workflowId", exec.WorkflowId()), zap.Error(err))
	}
}
