package workflow

import "github.com/randalmurphal/reldocs/flow"

// Step names of the release graph.
const (
	StepValidate         = "validate-release"
	StepGatherJira       = "gather-jira"
	StepGatherBitbucket  = "gather-bitbucket"
	StepGatherConfluence = "gather-confluence"
	StepAggregate        = "aggregate-context"
	StepGenerate         = "generate-release-docs"
	StepPlanEdits        = "plan-file-edits"
	StepCreateBranch     = "create-docs-branch"
	StepApplyEdits       = "apply-file-edits"
	StepOpenPR           = "open-pr"
	StepFinalize         = "finalize"
)

// BuildGraph wires the steps into the release graph: validation fans out
// into the three gather steps, which join at aggregation, followed by the
// linear generate-and-publish chain.
func BuildGraph(steps *Steps) (*flow.Runner[State], error) {
	return flow.NewGraph[State]().
		AddNode(StepValidate, steps.ValidateRelease).
		AddNode(StepGatherJira, steps.GatherJira).
		AddNode(StepGatherBitbucket, steps.GatherBitbucket).
		AddNode(StepGatherConfluence, steps.GatherConfluence).
		AddNode(StepAggregate, steps.AggregateContext).
		AddNode(StepGenerate, steps.GenerateReleaseDocs).
		AddNode(StepPlanEdits, steps.PlanFileEdits).
		AddNode(StepCreateBranch, steps.CreateDocsBranch).
		AddNode(StepApplyEdits, steps.ApplyFileEdits).
		AddNode(StepOpenPR, steps.OpenPR).
		AddNode(StepFinalize, steps.Finalize).
		SetEntry(StepValidate).
		AddEdge(StepValidate, StepGatherJira).
		AddEdge(StepValidate, StepGatherBitbucket).
		AddEdge(StepValidate, StepGatherConfluence).
		AddEdge(StepGatherJira, StepAggregate).
		AddEdge(StepGatherBitbucket, StepAggregate).
		AddEdge(StepGatherConfluence, StepAggregate).
		AddEdge(StepAggregate, StepGenerate).
		AddEdge(StepGenerate, StepPlanEdits).
		AddEdge(StepPlanEdits, StepCreateBranch).
		AddEdge(StepCreateBranch, StepApplyEdits).
		AddEdge(StepApplyEdits, StepOpenPR).
		AddEdge(StepOpenPR, StepFinalize).
		AddEdge(StepFinalize, flow.End).
		Compile()
}
