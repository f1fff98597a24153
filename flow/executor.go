package flow

import (
	"context"
	"fmt"
	"log/slog"
)

// Runner executes a compiled graph. A Runner is immutable and safe for
// concurrent use; each Run owns its state record exclusively.
type Runner[S Record[S]] struct {
	steps map[string]StepFunc[S]
	succ  map[string][]string
	preds map[string][]string
	ends  []string
	entry string
}

// nodeState is the settled result of one node within a run.
type nodeState[S Record[S]] struct {
	eff     S        // record after this node completed
	delta   []Update // updates accumulated since the current scope's fork snapshot
	fork    string   // fan-out node that opened the scope ("" = run root)
	failed  bool
	skipped bool
}

// pendingMeta carries scheduling context for a node whose step is in flight.
type pendingMeta[S Record[S]] struct {
	input S
	delta []Update // scope delta before this node's own update
	fork  string
}

type completion struct {
	name string
	out  Outcome
}

// Run executes the graph from the entry step on the initial record and
// returns the final record that reached End.
//
// Failure propagation: the first Failure is written into FieldError; steps
// downstream of a failed step are skipped but still pass the merged record
// through, so independent branches contribute to a partial result. A
// returned error indicates cancellation or a defect in the engine or a
// record implementation, never a domain failure; domain failures surface in
// the record itself.
func (r *Runner[S]) Run(ctx context.Context, initial S) (S, error) {
	recs := map[string]*nodeState[S]{
		// Root pseudo-node: the entry behaves as its chain successor.
		"": {eff: initial},
	}
	waiting := make(map[string]int, len(r.steps))
	for name := range r.steps {
		waiting[name] = len(r.preds[name])
	}

	pending := make(map[string]pendingMeta[S], len(r.steps))
	done := make(chan completion, len(r.steps))
	running := 0

	launch := func(name string, meta pendingMeta[S]) {
		pending[name] = meta
		running++
		fn := r.steps[name]
		input := meta.input
		go func() {
			done <- completion{name: name, out: runStep(ctx, fn, name, input)}
		}()
	}

	var internalErr error
	settle := func(name string, st *nodeState[S]) []string {
		recs[name] = st
		var ready []string
		for _, s := range r.succ[name] {
			waiting[s]--
			if waiting[s] == 0 {
				ready = append(ready, s)
			}
		}
		return ready
	}

	// schedule decides, for a node whose predecessors have all settled,
	// whether to launch its step, or to settle it immediately as skipped.
	// It returns any successors that became ready from an immediate settle.
	schedule := func(name string) []string {
		preds := r.preds[name]
		if len(preds) == 0 {
			preds = []string{""}
		}
		if len(preds) == 1 {
			p := recs[preds[0]]
			fork, delta := p.fork, p.delta
			if r.fanOut(preds[0]) {
				fork, delta = preds[0], nil
			}
			if p.failed || p.skipped {
				slog.Debug("skipping step downstream of failure", "step", name)
				return settle(name, &nodeState[S]{eff: p.eff, delta: cloneDelta(delta), fork: fork, skipped: true})
			}
			launch(name, pendingMeta[S]{input: p.eff, delta: cloneDelta(delta), fork: fork})
			return nil
		}

		pre, delta, fork, bad, err := r.join(initial, name, preds, recs)
		if err != nil {
			internalErr = err
			return nil
		}
		if bad {
			slog.Debug("skipping join downstream of failure", "step", name)
			return settle(name, &nodeState[S]{eff: pre, delta: delta, fork: fork, skipped: true})
		}
		launch(name, pendingMeta[S]{input: pre, delta: delta, fork: fork})
		return nil
	}

	// Worklist of nodes whose predecessors have all settled.
	work := []string{r.entry}
	for {
		for len(work) > 0 && internalErr == nil {
			name := work[0]
			work = work[1:]
			work = append(work, schedule(name)...)
		}
		if internalErr != nil {
			return initial, internalErr
		}
		if running == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return initial, ctx.Err()
		case c := <-done:
			running--
			meta := pending[c.name]
			delete(pending, c.name)
			st, err := r.completed(c, meta)
			if err != nil {
				return initial, err
			}
			work = append(work, settle(c.name, st)...)
		}
	}

	if len(recs)-1 != len(r.steps) {
		return initial, fmt.Errorf("flow: %d of %d steps never settled", len(r.steps)-(len(recs)-1), len(r.steps))
	}
	return r.finalRecord(initial, recs)
}

// completed folds a step's outcome into its node state.
func (r *Runner[S]) completed(c completion, meta pendingMeta[S]) (*nodeState[S], error) {
	if c.out.Failed() {
		// Scalar fields from a failed step are discarded; union-typed
		// fields (accumulated warnings) still merge, and the failure
		// message is recorded in the error field.
		u := unionOnly(meta.input, c.out.Fields())
		u[FieldError] = c.out.Failure()
		eff, err := apply(meta.input, u)
		if err != nil {
			return nil, fmt.Errorf("flow: step %q: apply failure update: %w", c.name, err)
		}
		return &nodeState[S]{
			eff:    eff,
			delta:  append(cloneDelta(meta.delta), u),
			fork:   meta.fork,
			failed: true,
		}, nil
	}

	u := c.out.Fields()
	eff, err := apply(meta.input, u)
	if err != nil {
		// A step producing an unapplicable update is a step defect;
		// treat it as that step failing rather than crashing the run.
		u = Update{FieldError: fmt.Sprintf("%s: %v", c.name, err)}
		eff, err = apply(meta.input, u)
		if err != nil {
			return nil, fmt.Errorf("flow: step %q: record rejects %s: %w", c.name, FieldError, err)
		}
		return &nodeState[S]{
			eff:    eff,
			delta:  append(cloneDelta(meta.delta), u),
			fork:   meta.fork,
			failed: true,
		}, nil
	}
	delta := cloneDelta(meta.delta)
	if len(u) > 0 {
		delta = append(delta, u)
	}
	return &nodeState[S]{eff: eff, delta: delta, fork: meta.fork}, nil
}

// join merges the accumulated updates of a join's predecessors onto the
// pre-fan-out snapshot, in predecessor declaration order.
func (r *Runner[S]) join(initial S, name string, preds []string, recs map[string]*nodeState[S]) (pre S, delta []Update, fork string, bad bool, err error) {
	f := r.forkScope(preds, recs)
	base := recs[f]

	branches := make([]branch, 0, len(preds))
	for _, p := range preds {
		if p == f {
			// The fork itself edges directly into the join; it
			// contributes nothing beyond the snapshot.
			continue
		}
		branches = append(branches, branch{name: p, updates: recs[p].delta})
		if recs[p].failed || recs[p].skipped {
			bad = true
		}
	}

	merged, warns := mergeBranches(initial, branches)
	if len(warns) > 0 {
		merged = append(merged, Update{FieldWarnings: warns})
	}
	pre, err = applyAll(base.eff, merged)
	if err != nil {
		return pre, nil, "", false, fmt.Errorf("flow: join %q: merge: %w", name, err)
	}
	return pre, append(cloneDelta(base.delta), merged...), base.fork, bad, nil
}

// forkScope resolves the fan-out node whose snapshot is the merge base for
// the given predecessors. All predecessors of a join normally share one
// scope; when the fork itself edges directly into the join, the fork is the
// scope. Anything else falls back to the first predecessor's scope, which
// keeps the merge deterministic for non-fork/join-structured graphs.
func (r *Runner[S]) forkScope(preds []string, recs map[string]*nodeState[S]) string {
	scopes := make(map[string]bool, len(preds))
	for _, p := range preds {
		scopes[recs[p].fork] = true
	}
	if len(scopes) == 1 {
		return recs[preds[0]].fork
	}
	for _, p := range preds {
		if scopes[p] {
			return p
		}
	}
	return recs[preds[0]].fork
}

// finalRecord merges the records flowing into End.
func (r *Runner[S]) finalRecord(initial S, recs map[string]*nodeState[S]) (S, error) {
	if len(r.ends) == 1 {
		return recs[r.ends[0]].eff, nil
	}
	pre, _, _, _, err := r.join(initial, End, r.ends, recs)
	return pre, err
}

// fanOut reports whether a node spawns concurrent branches.
func (r *Runner[S]) fanOut(name string) bool {
	return len(r.succ[name]) > 1
}

// runStep invokes a step, converting a panic into a Failure so a defective
// step can never take the run down with it.
func runStep[S Record[S]](ctx context.Context, fn StepFunc[S], name string, input S) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Failf("panic in step %s: %v", name, rec)
		}
	}()
	return fn(ctx, input)
}

// unionOnly filters an update down to its union-typed fields.
func unionOnly[S Record[S]](probe S, u Update) Update {
	filtered := make(Update)
	for field, value := range u {
		if probe.UnionField(field) {
			filtered[field] = value
		}
	}
	return filtered
}

func cloneDelta(delta []Update) []Update {
	if len(delta) == 0 {
		return nil
	}
	return append([]Update(nil), delta...)
}
