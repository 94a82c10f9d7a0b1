package service

import (
	"fmt"

	"github.com/yogabrata/formation/engine"
	"github.com/yogabrata/formation/gateway"
	"github.com/yogabrata/formation/model"
	"github.com/yogabrata/formation/registry"
	"github.com/yogabrata/formation/viz"
)

// WorkflowService is the typed operation surface the HTTP layer calls into.
type WorkflowService struct {
	engine   *engine.Engine
	registry *registry.Registry
	gateway  *gateway.Manager
}

func NewWorkflowService(eng *engine.Engine, reg *registry.Registry, gw *gateway.Manager) *WorkflowService {
	return &WorkflowService{
		engine:   eng,
		registry: reg,
		gateway:  gw,
	}
}

func (s *WorkflowService) CreateWorkflow(companyInfo model.CompanyInfo) (model.WorkflowSnapshot, error) {
	if companyInfo.Name == "" {
		return model.WorkflowSnapshot{}, fmt.Errorf("company name is required")
	}
	if companyInfo.EntityType == "" {
		return model.WorkflowSnapshot{}, fmt.Errorf("entity type is required")
	}
	return s.engine.StartWorkflow(companyInfo)
}

func (s *WorkflowService) GetWorkflowSnapshot(workflowId string) (model.WorkflowSnapshot, error) {
	return s.engine.GetSnapshot(workflowId)
}

func (s *WorkflowService) ListWorkflows() []model.WorkflowSummary {
	return s.engine.ListWorkflows()
}

func (s *WorkflowService) RenderWorkflow(workflowId string) (string, error) {
	wf, err := s.engine.GetInstance(workflowId)
	if err != nil {
		return "", err
	}
	return viz.RenderWorkflow(wf), nil
}

func (s *WorkflowService) RenderTemplate(entityType string) (string, error) {
	template, err := s.registry.GetTemplate(entityType)
	if err != nil {
		return "", err
	}
	return viz.RenderTemplate(entityType, template), nil
}

func (s *WorkflowService) CancelWorkflow(workflowId string) error {
	return s.engine.Cancel(workflowId)
}

func (s *WorkflowService) SourceStatus() map[string]gateway.SourceStatus {
	return s.gateway.Status()
}
