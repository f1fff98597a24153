// Package store persists run history under the base directory
// (default ".reldocs"). Each run gets its own directory holding the
// final workflow state, the generated release notes, and the planned
// documentation edits. Large artifacts are gzip-compressed on disk.
//
// A retention policy bounds disk usage: runs older than the retention
// window are deleted, keeping a minimum number of recent runs and,
// optionally, all failed runs.
package store
