package flow

import "context"

// Well-known fields written by the executor itself. Every Record
// implementation must recognize both: FieldError as a scalar string,
// FieldWarnings as a union-typed []string.
const (
	FieldError    = "error"
	FieldWarnings = "warnings"
)

// Record is implemented by the concrete state type threaded through a graph.
// Implementations are value types: Set and Union return a modified copy and
// must never mutate the receiver, so a snapshot handed to one branch is
// never visible to another.
type Record[S any] interface {
	// Set returns a copy of the record with the named scalar field replaced.
	// Unknown fields return an error; the executor converts that into a
	// failure attributed to the step that produced the update.
	Set(field string, value any) (S, error)

	// Union returns a copy of the record with value merged into the named
	// union-typed field (append for sequences, collection union for nested
	// aggregates). Merge order is the order of Union calls.
	Union(field string, value any) (S, error)

	// UnionField reports whether the named field carries union semantics.
	UnionField(field string) bool
}

// StepFunc is the contract every workflow step implements: given a read-only
// snapshot of the state record, produce a partial update or a failure signal.
// Steps must not retain or mutate the snapshot, and must tolerate running
// concurrently with sibling steps.
type StepFunc[S Record[S]] func(ctx context.Context, snapshot S) Outcome

// apply overlays a single update onto a record. Fields are applied in sorted
// order so executor-generated diagnostics are deterministic.
func apply[S Record[S]](s S, u Update) (S, error) {
	var err error
	for _, field := range sortedKeys(u) {
		if s.UnionField(field) {
			s, err = s.Union(field, u[field])
		} else {
			s, err = s.Set(field, u[field])
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

// applyAll overlays a sequence of updates in order.
func applyAll[S Record[S]](s S, updates []Update) (S, error) {
	var err error
	for _, u := range updates {
		s, err = apply(s, u)
		if err != nil {
			return s, err
		}
	}
	return s, nil
}
