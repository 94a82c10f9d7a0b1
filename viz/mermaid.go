package viz

import (
	"fmt"
	"strings"

	"github.com/yogabrata/formation/model"
)

const classDefs = `    classDef pending fill:#f9f9f9,stroke:#333,stroke-width:2px
    classDef in_progress fill:#e1f5fe,stroke:#01579b,stroke-width:2px
    classDef completed fill:#e8f5e8,stroke:#2e7d32,stroke-width:2px
    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px
    classDef cancelled fill:#eeeeee,stroke:#616161,stroke-width:2px
`

// RenderWorkflow produces a mermaid directed graph of the instance: one node
// per step styled by status, one edge per dependency. Read-only, the
// instance is not touched beyond field reads.
func RenderWorkflow(wf *model.WorkflowInstance) string {
	return render(wf.CompanyInfo.Name, wf.StepOrder, wf.Steps)
}

// RenderTemplate renders a template with every step shown as pending.
func RenderTemplate(name string, template []model.StepTemplate) string {
	steps := make(map[string]*model.StepInstance, len(template))
	order := make([]string, 0, len(template))
	for _, tmpl := range template {
		steps[tmpl.StepId] = model.NewStepInstance(tmpl)
		order = append(order, tmpl.StepId)
	}
	return render(name, order, steps)
}

func render(companyName string, order []string, steps map[string]*model.StepInstance) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "    formation_start[Start: %s Formation]\n", companyName)
	b.WriteString("    formation_complete[Formation Complete]\n")
	for _, stepId := range order {
		fmt.Fprintf(&b, "    %s[%s]\n", stepId, steps[stepId].Name)
	}

	dependents := make(map[string]int, len(steps))
	for _, stepId := range order {
		for _, depId := range steps[stepId].Dependencies {
			dependents[depId]++
		}
	}
	for _, stepId := range order {
		step := steps[stepId]
		if len(step.Dependencies) == 0 {
			fmt.Fprintf(&b, "    formation_start --> %s\n", stepId)
		}
		for _, depId := range step.Dependencies {
			if _, ok := steps[depId]; ok {
				fmt.Fprintf(&b, "    %s --> %s\n", depId, stepId)
			}
		}
		if dependents[stepId] == 0 {
			fmt.Fprintf(&b, "    %s --> formation_complete\n", stepId)
		}
	}

	b.WriteString(classDefs)
	for _, stepId := range order {
		fmt.Fprintf(&b, "    class %s %s\n", stepId, steps[stepId].Status)
	}
	return b.String()
}
