package checkout

import (
	"context"

	"github.com/temirov/revreq/internal/execshell"
)

// GitExecutor runs git commands and masks secrets in their logged form.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	RegisterSecret(value string)
}

// Reporter prints human-readable progress lines and command output.
type Reporter interface {
	Info(message string)
	Block(text string)
}
