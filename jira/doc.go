// Package jira fetches release issues from the Jira REST API.
//
// The client answers one question for the workflow: which issues ship in a
// given release. It searches by fix version first and falls back to issues
// whose development branch matches the release branch.
package jira
