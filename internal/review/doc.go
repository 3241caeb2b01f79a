// Package review assembles the setup and request sequences from the release,
// gatekeeper, checkout, build gate, and pull request packages and exposes them
// as Cobra commands.
//
// Setup verifies the release and its approvals, prepares the review branch,
// and persists what it learned. Request restores that state, re-checks the
// working tree, pushes the review branch, and opens the draft pull request.
package review
