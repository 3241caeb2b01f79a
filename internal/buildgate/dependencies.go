package buildgate

import (
	"context"

	"github.com/temirov/revreq/internal/execshell"
)

// ToolchainExecutor runs the build toolchain.
type ToolchainExecutor interface {
	ExecuteMaven(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteJava(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TextSearcher runs grep.
type TextSearcher interface {
	ExecuteGrep(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Reporter prints human-readable progress lines and command output.
type Reporter interface {
	Success(message string)
	Block(text string)
}
