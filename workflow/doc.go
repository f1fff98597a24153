// Package workflow implements the release documentation workflow: validate
// a release branch, gather context from the issue tracker, code host, and
// wiki in parallel, aggregate and analyze it, generate release notes, and
// publish the resulting documentation changes as a pull request.
//
// The workflow runs on the flow package's graph executor. State is the
// record threaded through the graph; Steps binds the collaborator clients
// into step functions; BuildGraph wires them into the release graph; and
// Runner drives a complete run, emitting notifications along the way.
package workflow
