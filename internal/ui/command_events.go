package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/execshell"
)

// CommandProgressLogger echoes executed commands to the console logger so workflow logs show each git and
// Maven step as it happens.
type CommandProgressLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewCommandProgressLogger constructs a CommandProgressLogger. A nil logger discards output.
func NewCommandProgressLogger(logger *zap.Logger) *CommandProgressLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandProgressLogger{logger: logger}
}

// CommandStarted logs the command line at info level.
func (progressLogger *CommandProgressLogger) CommandStarted(command execshell.ShellCommand) {
	progressLogger.logger.Info(progressLogger.formatter.BuildStartedMessage(command))
}

// CommandFinished logs success at info level and a non-zero exit at warn level.
func (progressLogger *CommandProgressLogger) CommandFinished(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode != 0 {
		progressLogger.logger.Warn(progressLogger.formatter.BuildFailureMessage(command, result))
		return
	}
	progressLogger.logger.Info(progressLogger.formatter.BuildSuccessMessage(command))
}

// CommandFailed logs a command that could not run at error level.
func (progressLogger *CommandProgressLogger) CommandFailed(command execshell.ShellCommand, failure error) {
	progressLogger.logger.Error(progressLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
