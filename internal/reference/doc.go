// Package reference parses release tags and review type flags into the
// ParsedReference shared by the setup and request commands.
package reference
