package dispatch

import (
	"context"
	"encoding/json"

	"github.com/yogabrata/formation/model"
)

// WorkflowContext carries the read-only workflow data an action may consult:
// the company record and, under Data, a jsonpath-addressable view of the
// company plus the results of completed steps.
type WorkflowContext struct {
	WorkflowId string
	Company    model.CompanyInfo
	Data       map[string]any
}

// NewWorkflowContext builds the dispatch view of a workflow instance. The
// caller must hold the instance lock; the returned context shares nothing
// mutable with the instance.
func NewWorkflowContext(wf *model.WorkflowInstance) WorkflowContext {
	stepsData := make(map[string]any)
	for stepId, step := range wf.Steps {
		if step.Result != nil {
			output := make(map[string]any, len(step.Result))
			for k, v := range step.Result {
				output[k] = v
			}
			stepsData[stepId] = map[string]any{"output": output}
		}
	}
	return WorkflowContext{
		WorkflowId: wf.WorkflowId,
		Company:    wf.CompanyInfo,
		Data: map[string]any{
			"company": toDataMap(wf.CompanyInfo),
			"steps":   stepsData,
		},
	}
}

func toDataMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// Action performs the work of one step: a pure computation, one or more
// gateway queries, or both.
type Action interface {
	Name() string
	Execute(ctx context.Context, wfCtx WorkflowContext, step model.StepTemplate) (map[string]any, error)
}
