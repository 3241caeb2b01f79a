// Package pipeline runs named steps strictly in sequence, framing each step in a console
// group and aborting at the first failure with a StepError.
package pipeline
