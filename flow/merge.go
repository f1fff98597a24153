package flow

import (
	"fmt"
	"sort"
)

// branch is one predecessor's contribution at a join point: the updates it
// accumulated since the pre-fan-out snapshot, in the order they were produced.
type branch struct {
	name    string
	updates []Update
}

// mergeBranches implements the two-tier merge policy. Branches are given in
// predecessor declaration order, never completion order, so the result is
// reproducible regardless of which branch finishes first.
//
// Union-typed fields combine across branches in declaration order. A scalar
// field touched by more than one branch is a write conflict: the
// first-declared branch wins and a warning names the field and each
// discarded branch. The returned update sequence, applied in order to the
// pre-fan-out snapshot, yields the merged record.
func mergeBranches[S Record[S]](probe S, branches []branch) (merged []Update, warnings []string) {
	// Which branches touch each scalar field, in declaration order.
	scalarTouch := make(map[string][]int)
	for i, b := range branches {
		seen := make(map[string]bool)
		for _, u := range b.updates {
			for field := range u {
				if probe.UnionField(field) || seen[field] {
					continue
				}
				seen[field] = true
				scalarTouch[field] = append(scalarTouch[field], i)
			}
		}
	}

	conflicted := make(map[string]bool)
	var conflictFields []string
	for field, touchers := range scalarTouch {
		if len(touchers) > 1 {
			conflicted[field] = true
			conflictFields = append(conflictFields, field)
		}
	}
	sort.Strings(conflictFields)

	for _, field := range conflictFields {
		touchers := scalarTouch[field]
		winner := branches[touchers[0]].name
		for _, i := range touchers[1:] {
			loser := branches[i]
			if field == FieldError {
				// Keep the discarded failure message visible.
				warnings = append(warnings, fmt.Sprintf(
					"conflicting writes to %q: kept value from %q, discarded from %q: %v",
					field, winner, loser.name, lastValue(loser.updates, field)))
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"conflicting writes to %q: kept value from %q, discarded from %q",
				field, winner, loser.name))
		}
	}

	for i, b := range branches {
		for _, u := range b.updates {
			filtered := make(Update, len(u))
			for field, value := range u {
				if conflicted[field] && scalarTouch[field][0] != i {
					continue
				}
				filtered[field] = value
			}
			if len(filtered) > 0 {
				merged = append(merged, filtered)
			}
		}
	}
	return merged, warnings
}

// lastValue returns the final value a branch assigned to a field.
func lastValue(updates []Update, field string) any {
	var v any
	for _, u := range updates {
		if uv, ok := u[field]; ok {
			v = uv
		}
	}
	return v
}
