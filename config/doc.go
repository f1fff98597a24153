// Package config provides hierarchical configuration for the reldocs CLI.
//
// Values are merged with clear precedence:
//  1. Command-line flags (highest priority)
//  2. RELDOCS_* environment variables
//  3. .reldocs.yaml in the git root
//  4. ~/.config/reldocs/config.yaml
//  5. Built-in defaults (lowest priority)
//
// # Basic Usage
//
//	settings, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// # Environment Variables
//
// Keys map to environment variables via the RELDOCS_ prefix:
//
//	RELDOCS_JIRA_URL=https://acme.atlassian.net   # sets "jira_url"
//	RELDOCS_PR_LABELS=docs,release                # sets "pr_labels"
//
// Each resolved value tracks its source, which `reldocs config list`
// uses to show where a value came from.
package config
