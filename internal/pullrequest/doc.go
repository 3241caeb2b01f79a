// Package pullrequest composes and opens review pull requests.
//
// Composer renders the description and the instruction comment with text/template.
// Submitter ensures the project milestone, collects earlier reviews of the project, opens
// the draft pull request, and attaches its labels, milestone, assignee, and reviewers.
package pullrequest
