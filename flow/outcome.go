package flow

import "fmt"

// Update is a partial field->value mapping produced by a step.
// Fields not present are left untouched by the merge.
type Update map[string]any

// Outcome is the result of running a single step: either a partial update
// to overlay onto the state record, or a failure signal.
type Outcome struct {
	update  Update
	failure string
	failed  bool
}

// Updated returns a successful outcome carrying a partial update.
func Updated(u Update) Outcome {
	return Outcome{update: u}
}

// Fail returns a failure outcome with the given message.
func Fail(msg string) Outcome {
	return Outcome{failure: msg, failed: true}
}

// Failf returns a failure outcome with a formatted message.
func Failf(format string, args ...any) Outcome {
	return Fail(fmt.Sprintf(format, args...))
}

// FailWith returns a failure outcome that still carries a partial update.
// Only union-typed fields of the update survive the merge; scalar fields
// from a failed step are discarded.
func FailWith(msg string, partial Update) Outcome {
	return Outcome{update: partial, failure: msg, failed: true}
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool { return o.failed }

// Failure returns the failure message, or "" for a successful outcome.
func (o Outcome) Failure() string { return o.failure }

// Fields returns the partial update carried by the outcome. May be nil.
func (o Outcome) Fields() Update { return o.update }
