package registry

import (
	"fmt"
	"strings"

	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/model"
	"go.uber.org/zap"
)

// DEFAULT_ENTITY_TYPE is the documented fallback template for entity types
// with no registered step set.
const DEFAULT_ENTITY_TYPE = "llc"

type UnknownTemplateError struct {
	EntityType string
}

func (e UnknownTemplateError) Error() string {
	return fmt.Sprintf("no step template registered for entity type %s", e.EntityType)
}

// ConfigurationError marks an invalid template set. It is fatal at load time,
// templates are never rejected at runtime.
type ConfigurationError struct {
	EntityType string
	Reason     string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid step template for entity type %s: %s", e.EntityType, e.Reason)
}

// Registry is the static catalog of step templates per entity type. Templates
// are registered once at process start and read-only afterwards.
type Registry struct {
	templates map[string][]model.StepTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string][]model.StepTemplate),
	}
}

func (r *Registry) Register(entityType string, steps []model.StepTemplate) error {
	if err := validateTemplate(entityType, steps); err != nil {
		return err
	}
	r.templates[strings.ToLower(entityType)] = steps
	return nil
}

// GetTemplate resolves the step set for an entity type, falling back to the
// default template for unrecognized types.
func (r *Registry) GetTemplate(entityType string) ([]model.StepTemplate, error) {
	if steps, ok := r.templates[strings.ToLower(entityType)]; ok {
		return steps, nil
	}
	if steps, ok := r.templates[DEFAULT_ENTITY_TYPE]; ok {
		logger.Info("no template for entity type, using default",
			zap.String("entityType", entityType), zap.String("default", DEFAULT_ENTITY_TYPE))
		return steps, nil
	}
	return nil, UnknownTemplateError{EntityType: entityType}
}

func (r *Registry) EntityTypes() []string {
	types := make([]string, 0, len(r.templates))
	for entityType := range r.templates {
		types = append(types, entityType)
	}
	return types
}

func validateTemplate(entityType string, steps []model.StepTemplate) error {
	byId := make(map[string]model.StepTemplate, len(steps))
	for _, step := range steps {
		if step.StepId == "" {
			return ConfigurationError{EntityType: entityType, Reason: "step with empty id"}
		}
		if _, ok := byId[step.StepId]; ok {
			return ConfigurationError{EntityType: entityType,
				Reason: fmt.Sprintf("step id %s is duplicate", step.StepId)}
		}
		if step.EstimatedMinutes <= 0 {
			return ConfigurationError{EntityType: entityType,
				Reason: fmt.Sprintf("step %s has non-positive estimated duration", step.StepId)}
		}
		byId[step.StepId] = step
	}
	// Cycle check by DFS. Dependencies on unknown step ids are not an error
	// here, they surface at runtime as unreachable steps.
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(steps))
	var visit func(stepId string) error
	visit = func(stepId string) error {
		color[stepId] = grey
		for _, depId := range byId[stepId].Dependencies {
			if _, ok := byId[depId]; !ok {
				continue
			}
			switch color[depId] {
			case grey:
				return ConfigurationError{EntityType: entityType,
					Reason: fmt.Sprintf("dependency cycle through step %s", depId)}
			case white:
				if err := visit(depId); err != nil {
					return err
				}
			}
		}
		color[stepId] = black
		return nil
	}
	for _, step := range steps {
		if color[step.StepId] == white {
			if err := visit(step.StepId); err != nil {
				return err
			}
		}
	}
	return nil
}
