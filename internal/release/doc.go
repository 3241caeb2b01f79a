// Package release verifies that a tagged release exists and that its test workflow,
// triggered by the release event, completed successfully.
//
// The most recent run whose head branch equals the tag decides the outcome; a missing
// run is reported as reviewerrors.NotFoundError and an unfinished or failed run as
// reviewerrors.PolicyViolationError.
package release
