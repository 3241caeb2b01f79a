// Package checkout clones the main repository with an installation token and creates the
// review branch at the release tag once the default branch is confirmed unchanged since the release.
package checkout
