// Package githubauth locates the GitHub token used by revreq.
//
// Tokens come from an explicit source declaration (env:NAME or file:PATH) or,
// when none is configured, from GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN.
package githubauth
