// Package forge wraps the GitHub REST API calls used by revreq.
//
// Every call checks the response status against the status the operation
// expects and reports mismatches as APIStatusError carrying the serialized
// request payload and response body.
package forge
