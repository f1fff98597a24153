// Package bitbucket fetches pull requests and commits for a release from
// the Bitbucket Cloud REST API.
package bitbucket
