package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yogabrata/formation/model"
)

func tmpl(id string, deps ...string) model.StepTemplate {
	return model.StepTemplate{StepId: id, Name: id, Dependencies: deps, EstimatedMinutes: 5}
}

func TestRenderWorkflow(t *testing.T) {
	wf := model.NewWorkflowInstance(model.CompanyInfo{Name: "Acme", EntityType: "llc"},
		[]model.StepTemplate{
			tmpl("a"),
			tmpl("b", "a"),
			tmpl("c", "a"),
			tmpl("d", "b", "c"),
		})
	wf.Steps["a"].Status = model.STATUS_COMPLETED
	wf.Steps["b"].Status = model.STATUS_IN_PROGRESS
	wf.Steps["c"].Status = model.STATUS_FAILED

	diagram := RenderWorkflow(wf)

	require.True(t, strings.HasPrefix(diagram, "graph TD\n"))
	require.Contains(t, diagram, "formation_start[Start: Acme Formation]")
	require.Contains(t, diagram, "formation_complete[Formation Complete]")

	// roots hang off the start node, leaves feed the completion node
	require.Contains(t, diagram, "formation_start --> a")
	require.Contains(t, diagram, "d --> formation_complete")
	require.NotContains(t, diagram, "formation_start --> b")
	require.NotContains(t, diagram, "a --> formation_complete")

	require.Contains(t, diagram, "a --> b")
	require.Contains(t, diagram, "a --> c")
	require.Contains(t, diagram, "b --> d")
	require.Contains(t, diagram, "c --> d")

	require.Contains(t, diagram, "class a completed")
	require.Contains(t, diagram, "class b in_progress")
	require.Contains(t, diagram, "class c failed")
	require.Contains(t, diagram, "class d pending")
	require.Contains(t, diagram, "classDef cancelled")
}

func TestRenderTemplate(t *testing.T) {
	diagram := RenderTemplate("llc", []model.StepTemplate{
		tmpl("a"),
		tmpl("b", "a"),
	})
	require.Contains(t, diagram, "formation_start[Start: llc Formation]")
	require.Contains(t, diagram, "class a pending")
	require.Contains(t, diagram, "class b pending")
}

func TestRenderSkipsUnknownDependencyEdges(t *testing.T) {
	wf := model.NewWorkflowInstance(model.CompanyInfo{Name: "Acme"},
		[]model.StepTemplate{
			tmpl("a"),
			tmpl("b", "ghost"),
		})
	diagram := RenderWorkflow(wf)
	require.NotContains(t, diagram, "ghost -->")
	require.Contains(t, diagram, "b --> formation_complete")
}
