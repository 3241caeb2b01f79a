// Package cli constructs the revreq command-line interface. It wires the Cobra
// command hierarchy, the Viper-backed configuration loader with its embedded
// defaults, and the zap loggers, then registers the review setup and request
// commands.
package cli
