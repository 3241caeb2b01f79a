// Package reviewerrors defines the error taxonomy shared by the review request sequences.
//
// Every failure aborts the running sequence; the types exist so callers and tests can
// distinguish malformed input from missing forge resources and from policy violations.
package reviewerrors
