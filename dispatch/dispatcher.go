package dispatch

import (
	"context"
	"fmt"

	"github.com/yogabrata/formation/gateway"
	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/model"
	"go.uber.org/zap"
)

// DispatchError wraps any downstream failure of a step's action.
type DispatchError struct {
	StepId string
	Cause  error
}

func (e DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for step %s: %v", e.StepId, e.Cause)
}

func (e DispatchError) Unwrap() error {
	return e.Cause
}

// Dispatcher maps a step id to the action it performs. Steps without a
// dedicated action fall back to a generic query against their declared
// sources.
type Dispatcher struct {
	actions  map[string]Action
	fallback Action
}

func NewDispatcher(gw gateway.Client) *Dispatcher {
	d := &Dispatcher{
		actions:  make(map[string]Action),
		fallback: &sourceQueryAction{gateway: gw},
	}
	for _, action := range []Action{
		&analyzeRequirementsAction{gateway: gw},
		&nameAvailabilityAction{gateway: gw},
		&prepareArticlesAction{},
		&fileStateRegistrationAction{gateway: gw},
		&obtainEinAction{},
		&businessBankingAction{},
		&stateTaxesAction{gateway: gw},
		&payrollAction{},
		&complianceSetupAction{gateway: gw},
		&operatingAgreementAction{},
		&draftBylawsAction{},
		&appointDirectorsAction{},
		&issueStockAction{},
	} {
		d.RegisterAction(action)
	}
	return d
}

// RegisterAction binds an action to the step id matching its name. Later
// registrations override earlier ones.
func (d *Dispatcher) RegisterAction(action Action) {
	d.actions[action.Name()] = action
}

func (d *Dispatcher) Dispatch(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error) {
	action, ok := d.actions[step.StepId]
	if !ok {
		action = d.fallback
	}
	logger.Debug("dispatching step action",
		zap.String("workflowId", wfCtx.WorkflowId),
		zap.String("step", step.StepId),
		zap.String("action", action.Name()))
	result, err := action.Execute(ctx, wfCtx, step)
	if err != nil {
		return nil, DispatchError{StepId: step.StepId, Cause: err}
	}
	return result, nil
}
