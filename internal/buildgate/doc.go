// Package buildgate compiles the review candidate with warnings escalated to errors and runs
// static checks over its sources.
//
// Checks implement StaticCheck. TextCountCheck is the grep-backed implementation: it requires
// an exact number of matching lines, so a check expecting one match fails on zero as well as
// on two.
package buildgate
