// Package pr publishes documentation changes as pull requests.
//
// The Publisher interface covers the three operations the release workflow
// needs: create a branch on the docs repository, commit the planned file
// edits onto it, and open a pull request for review. Implementations exist
// for Bitbucket, GitHub, and GitLab, plus a staging publisher that writes
// everything to a local directory for dry runs.
package pr
