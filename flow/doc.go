// Package flow runs named workflow steps over a directed acyclic graph with
// a shared, evolving state record.
//
// A graph is built once and validated at compile time:
//
//	runner, err := flow.NewGraph[myState]().
//		AddNode("fetch", fetchStep).
//		AddNode("report", reportStep).
//		AddEdge("fetch", "report").
//		AddEdge("report", flow.End).
//		SetEntry("fetch").
//		Compile()
//
// Steps receive a read-only snapshot and return either a partial update or a
// failure. A step with several successors fans out into concurrent branches,
// all reading the identical snapshot; a step with several predecessors waits
// for all of them and merges their updates deterministically in predecessor
// declaration order. Union-typed fields (warnings, nested collections)
// combine across branches; conflicting scalar writes resolve to the
// first-declared branch with a warning naming the field.
//
// A failure halts the failed step's downstream subtree while independent
// branches keep running, so a halted run still yields a partial, explainable
// record.
package flow
