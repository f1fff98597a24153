// Package prompt provides prompt template loading and management.
//
// Core types:
//   - Loader: Loads prompt templates from project directories or
//     from defaults embedded in the binary
//   - Builder: Assembles a prompt from markdown sections
//
// Example usage:
//
//	loader := prompt.NewLoader(".")
//	text, err := loader.LoadWithVars("release-notes", map[string]any{
//	    "version": "2.3.0",
//	})
package prompt
