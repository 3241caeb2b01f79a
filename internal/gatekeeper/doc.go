// Package gatekeeper decides whether a project may enter code review.
//
// Issues labeled with the project and "functionality" or "design" are approval gates: an
// issue counts as approved once it is closed, locked, and resolved. Pull requests labeled
// with the project and a review type represent earlier reviews; any of them still open
// blocks a new request.
package gatekeeper
