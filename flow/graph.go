package flow

import (
	"fmt"
	"sort"
)

// End is the terminal marker. Every step with no other successors must have
// an edge to End; the state flowing into End is the run's final record.
const End = "__end__"

// Graph is a builder for a directed acyclic workflow graph. Methods return
// the receiver so graphs read as a single chained expression. Structural
// problems are collected and reported by Compile.
type Graph[S Record[S]] struct {
	steps map[string]StepFunc[S]
	succ  map[string][]string // from -> to, edge declaration order, End excluded
	preds map[string][]string // to -> from, edge declaration order
	ends  []string            // nodes with an edge to End, declaration order
	entry string
	errs  []error
}

// NewGraph creates an empty graph builder.
func NewGraph[S Record[S]]() *Graph[S] {
	return &Graph[S]{
		steps: make(map[string]StepFunc[S]),
		succ:  make(map[string][]string),
		preds: make(map[string][]string),
	}
}

// AddNode registers a named step.
func (g *Graph[S]) AddNode(name string, fn StepFunc[S]) *Graph[S] {
	switch {
	case name == "" || name == End:
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %q: nil step func", name))
	default:
		if _, ok := g.steps[name]; ok {
			g.errs = append(g.errs, fmt.Errorf("duplicate node %q", name))
			return g
		}
		g.steps[name] = fn
	}
	return g
}

// AddEdge adds a directed edge. Use End as the target to mark a terminal
// step. Edge declaration order is significant: it is the predecessor order
// used by the merge policy at join points.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if to == End {
		g.ends = append(g.ends, from)
		return g
	}
	g.succ[from] = append(g.succ[from], to)
	g.preds[to] = append(g.preds[to], from)
	return g
}

// SetEntry designates the entry step.
func (g *Graph[S]) SetEntry(name string) *Graph[S] {
	g.entry = name
	return g
}

// Compile validates the graph and returns an executable Runner.
// Validation failures are programming errors in the graph definition:
// unknown edge endpoints, a missing or non-unique entry, a cycle, a step
// unreachable from the entry, or a sink without a path to End.
func (g *Graph[S]) Compile() (*Runner[S], error) {
	if len(g.errs) > 0 {
		return nil, g.errs[0]
	}
	if len(g.steps) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if g.entry == "" {
		return nil, fmt.Errorf("no entry step set")
	}
	if _, ok := g.steps[g.entry]; !ok {
		return nil, fmt.Errorf("entry step %q not registered", g.entry)
	}

	// Edge endpoints must be registered nodes.
	for from, tos := range g.succ {
		if _, ok := g.steps[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node %q", from)
		}
		for _, to := range tos {
			if _, ok := g.steps[to]; !ok {
				return nil, fmt.Errorf("edge from %q to unknown node %q", from, to)
			}
		}
	}
	for _, from := range g.ends {
		if _, ok := g.steps[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node %q", from)
		}
	}

	// Exactly one entry: the designated entry has in-degree 0 and every
	// other node has at least one predecessor.
	if len(g.preds[g.entry]) > 0 {
		return nil, fmt.Errorf("entry step %q has incoming edges", g.entry)
	}
	for name := range g.steps {
		if name != g.entry && len(g.preds[name]) == 0 {
			return nil, fmt.Errorf("node %q has no incoming edges; only the entry may", name)
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	if err := g.checkReachable(); err != nil {
		return nil, err
	}

	// Every sink must be marked terminal.
	terminal := make(map[string]bool, len(g.ends))
	for _, name := range g.ends {
		terminal[name] = true
	}
	for name := range g.steps {
		if len(g.succ[name]) == 0 && !terminal[name] {
			return nil, fmt.Errorf("node %q has no successors and no edge to End", name)
		}
	}

	return &Runner[S]{
		steps: g.steps,
		succ:  g.succ,
		preds: g.preds,
		ends:  append([]string(nil), g.ends...),
		entry: g.entry,
	}, nil
}

// checkAcyclic runs Kahn's algorithm over the edge set.
func (g *Graph[S]) checkAcyclic() error {
	indeg := make(map[string]int, len(g.steps))
	for name := range g.steps {
		indeg[name] = len(g.preds[name])
	}
	var queue []string
	for name, d := range indeg {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, s := range g.succ[n] {
			indeg[s]--
			if indeg[s] == 0 {
				queue = append(queue, s)
			}
		}
	}
	if visited != len(g.steps) {
		var cyclic []string
		for name, d := range indeg {
			if d > 0 {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
		return fmt.Errorf("graph contains a cycle involving %v", cyclic)
	}
	return nil
}

// checkReachable verifies every node is reachable from the entry.
func (g *Graph[S]) checkReachable() error {
	seen := map[string]bool{g.entry: true}
	stack := []string{g.entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range g.succ[n] {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	var unreachable []string
	for name := range g.steps {
		if !seen[name] {
			unreachable = append(unreachable, name)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return fmt.Errorf("nodes unreachable from entry %q: %v", g.entry, unreachable)
	}
	return nil
}

func sortedKeys(u Update) []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
