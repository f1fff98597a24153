// Package confluence fetches wiki pages that give the release context:
// previous release notes and pages labeled like the release issues.
package confluence
