// Package gitrepo builds the HTTPS remote URLs used to clone and push review repositories.
package gitrepo
