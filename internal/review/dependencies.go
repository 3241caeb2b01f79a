package review

import (
	"context"

	"github.com/temirov/revreq/internal/buildgate"
	"github.com/temirov/revreq/internal/checkout"
	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/gatekeeper"
	"github.com/temirov/revreq/internal/pullrequest"
	"github.com/temirov/revreq/internal/release"
)

// ForgeClient exposes every GitHub call made by the setup and request sequences.
type ForgeClient interface {
	release.ReleaseClient
	gatekeeper.IssueClient
	pullrequest.Client
	DefaultBranch(requestContext context.Context, repository forge.Repository) (string, error)
}

// CommandExecutor runs git and the build toolchain.
type CommandExecutor interface {
	checkout.GitExecutor
	buildgate.ToolchainExecutor
	buildgate.TextSearcher
}

// Console prints grouped human-readable progress.
type Console interface {
	StartGroup(title string)
	EndGroup()
	Info(message string)
	Success(message string)
	Block(text string)
	Warning(message string)
	Failure(message string)
	Notice(message string)
	SummarizeWarnings()
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)
