package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowInstance is one concrete execution graph for a specific company.
// Steps is built once from the template and never structurally mutated
// afterwards, only the StepInstance fields change. StepOrder preserves the
// declaration order of the originating template and drives the deterministic
// selection tie-break.
type WorkflowInstance struct {
	WorkflowId         string                   `json:"workflowId"`
	CompanyInfo        CompanyInfo              `json:"companyInfo"`
	Status             Status                   `json:"status"`
	Steps              map[string]*StepInstance `json:"steps"`
	StepOrder          []string                 `json:"stepOrder"`
	CurrentStepId      string                   `json:"currentStepId,omitempty"`
	ProgressPercentage float64                  `json:"progressPercentage"`
	Diagnostic         string                   `json:"diagnostic,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
	CompletedAt        *time.Time               `json:"completedAt,omitempty"`
}

func NewWorkflowInstance(companyInfo CompanyInfo, template []StepTemplate) *WorkflowInstance {
	now := time.Now()
	steps := make(map[string]*StepInstance, len(template))
	order := make([]string, 0, len(template))
	for _, tmpl := range template {
		steps[tmpl.StepId] = NewStepInstance(tmpl)
		order = append(order, tmpl.StepId)
	}
	return &WorkflowInstance{
		WorkflowId:  uuid.New().String(),
		CompanyInfo: companyInfo,
		Status:      STATUS_PENDING,
		Steps:       steps,
		StepOrder:   order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (w *WorkflowInstance) IsTerminal() bool {
	return w.Status == STATUS_COMPLETED || w.Status == STATUS_FAILED || w.Status == STATUS_CANCELLED
}

func (w *WorkflowInstance) CompletedSteps() int {
	count := 0
	for _, step := range w.Steps {
		if step.Status == STATUS_COMPLETED {
			count++
		}
	}
	return count
}

func (w *WorkflowInstance) RecomputeProgress() {
	if len(w.Steps) == 0 {
		return
	}
	w.ProgressPercentage = float64(w.CompletedSteps()) / float64(len(w.Steps)) * 100
}

// StepReady reports whether a step is ready to execute: pending with every
// dependency completed. A dependency missing from the step map can never be
// satisfied, so the step is not ready.
func (w *WorkflowInstance) StepReady(stepId string) bool {
	step, ok := w.Steps[stepId]
	if !ok || step.Status != STATUS_PENDING {
		return false
	}
	for _, depId := range step.Dependencies {
		dep, ok := w.Steps[depId]
		if !ok || dep.Status != STATUS_COMPLETED {
			return false
		}
	}
	return true
}

// NextReadyStep returns the first ready step in template declaration order,
// or "" when none is ready.
func (w *WorkflowInstance) NextReadyStep() string {
	for _, stepId := range w.StepOrder {
		if w.StepReady(stepId) {
			return stepId
		}
	}
	return ""
}

// UnreachableSteps returns the pending steps whose dependency chain can never
// complete: a dependency is missing, failed, cancelled, or itself
// unreachable. Result follows template declaration order.
func (w *WorkflowInstance) UnreachableSteps() []string {
	blocked := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, stepId := range w.StepOrder {
			step := w.Steps[stepId]
			if step.Status != STATUS_PENDING || blocked[stepId] {
				continue
			}
			for _, depId := range step.Dependencies {
				dep, ok := w.Steps[depId]
				if !ok || dep.Status == STATUS_FAILED || dep.Status == STATUS_CANCELLED || blocked[depId] {
					blocked[stepId] = true
					changed = true
					break
				}
			}
		}
	}
	var result []string
	for _, stepId := range w.StepOrder {
		if blocked[stepId] {
			result = append(result, stepId)
		}
	}
	return result
}

// EstimatedCompletion projects a completion timestamp from the estimated
// durations of the steps not yet completed.
func (w *WorkflowInstance) EstimatedCompletion() string {
	remaining := 0
	for _, step := range w.Steps {
		if step.Status != STATUS_COMPLETED {
			remaining += step.EstimatedMinutes
		}
	}
	if remaining == 0 {
		return "completed"
	}
	return time.Now().Add(time.Duration(remaining) * time.Minute).Format("2006-01-02 15:04:05")
}

// Clone returns a deep copy safe to hand to readers and the persistence
// collaborator.
func (w *WorkflowInstance) Clone() *WorkflowInstance {
	cp := *w
	cp.StepOrder = append([]string(nil), w.StepOrder...)
	cp.Steps = make(map[string]*StepInstance, len(w.Steps))
	for stepId, step := range w.Steps {
		stepCp := *NewStepInstance(step.StepTemplate)
		stepCp.Status = step.Status
		stepCp.ActualMinutes = step.ActualMinutes
		stepCp.Error = step.Error
		if step.StartedAt != nil {
			started := *step.StartedAt
			stepCp.StartedAt = &started
		}
		if step.CompletedAt != nil {
			completed := *step.CompletedAt
			stepCp.CompletedAt = &completed
		}
		if step.Result != nil {
			result := make(map[string]any, len(step.Result))
			for k, v := range step.Result {
				result[k] = v
			}
			stepCp.Result = result
		}
		cp.Steps[stepId] = &stepCp
	}
	cp.CompanyInfo.Founders = append([]FounderInfo(nil), w.CompanyInfo.Founders...)
	if w.CompletedAt != nil {
		completed := *w.CompletedAt
		cp.CompletedAt = &completed
	}
	return &cp
}

type StepSummary struct {
	StepId        string        `json:"stepId"`
	Name          string        `json:"name"`
	Status        Status        `json:"status"`
	AssignedRoles []FounderRole `json:"assignedRoles,omitempty"`
	ActualMinutes int           `json:"actualDurationMinutes,omitempty"`
	Error         string        `json:"error,omitempty"`
}

type WorkflowSummary struct {
	WorkflowId          string    `json:"workflowId"`
	CompanyName         string    `json:"companyName"`
	EntityType          string    `json:"entityType"`
	Status              Status    `json:"status"`
	ProgressPercentage  float64   `json:"progressPercentage"`
	CurrentStepId       string    `json:"currentStepId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	EstimatedCompletion string    `json:"estimatedCompletion"`
}

type WorkflowSnapshot struct {
	WorkflowSummary
	Steps            []StepSummary `json:"steps"`
	UnreachableSteps []string      `json:"unreachableSteps,omitempty"`
	Diagnostic       string        `json:"diagnostic,omitempty"`
	CompletedSteps   int           `json:"completedSteps"`
	TotalSteps       int           `json:"totalSteps"`
}

func (w *WorkflowInstance) Summary() WorkflowSummary {
	return WorkflowSummary{
		WorkflowId:          w.WorkflowId,
		CompanyName:         w.CompanyInfo.Name,
		EntityType:          w.CompanyInfo.EntityType,
		Status:              w.Status,
		ProgressPercentage:  w.ProgressPercentage,
		CurrentStepId:       w.CurrentStepId,
		CreatedAt:           w.CreatedAt,
		EstimatedCompletion: w.EstimatedCompletion(),
	}
}

func (w *WorkflowInstance) Snapshot() WorkflowSnapshot {
	steps := make([]StepSummary, 0, len(w.StepOrder))
	for _, stepId := range w.StepOrder {
		step := w.Steps[stepId]
		steps = append(steps, StepSummary{
			StepId:        step.StepId,
			Name:          step.Name,
			Status:        step.Status,
			AssignedRoles: step.AssignedRoles,
			ActualMinutes: step.ActualMinutes,
			Error:         step.Error,
		})
	}
	return WorkflowSnapshot{
		WorkflowSummary:  w.Summary(),
		Steps:            steps,
		UnreachableSteps: w.UnreachableSteps(),
		Diagnostic:       w.Diagnostic,
		CompletedSteps:   w.CompletedSteps(),
		TotalSteps:       len(w.Steps),
	}
}
