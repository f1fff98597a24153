// Package generate produces release documentation from a gathered
// release context.
//
// The Generator satisfies workflow.Generator with two operations:
//   - ReleaseNotes: renders the release notes document, via an LLM
//     when one is configured, otherwise via a deterministic template
//   - PlanEdits: plans the concrete file edits for a release (release
//     notes file, changelog entry, component guide updates)
//
// Edit planning is pure and never calls the LLM.
package generate
