package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	commandGitNameConstant                  = "git"
	commandMavenNameConstant                = "mvn"
	commandJavaNameConstant                 = "java"
	commandGrepNameConstant                 = "grep"
	loggerNotConfiguredMessageConstant      = "shell executor logger not configured"
	runnerNotConfiguredMessageConstant      = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant      = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant   = "%s could not be executed: %s"
	redactedValueConstant                   = "***"
	logFieldCommandConstant                 = "command"
	logFieldArgumentsConstant               = "arguments"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "stderr"
)

// CommandName identifies an external executable.
type CommandName string

// Supported command names.
const (
	CommandGit   CommandName = CommandName(commandGitNameConstant)
	CommandMaven CommandName = CommandName(commandMavenNameConstant)
	CommandJava  CommandName = CommandName(commandJavaNameConstant)
	CommandGrep  CommandName = CommandName(commandGrepNameConstant)
)

// CommandDetails describes arguments and environment for a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates a nil runner was supplied.
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	standardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode, standardError)
}

// CommandExecutionError reports a command that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ExitCode extracts the exit code from a CommandFailedError, reporting false for any other error.
func ExitCode(err error) (int, bool) {
	var failedError CommandFailedError
	if !errors.As(err, &failedError) {
		return 0, false
	}
	return failedError.Result.ExitCode, true
}

// ShellExecutor runs commands through a CommandRunner, logging lifecycle events and enforcing zero exit codes.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observers CommandObservers
	secrets   []string
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor that notifies observers about each command.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, runner: runner, observers: CommandObservers(observers)}, nil
}

// RegisterSecret masks value in every subsequently logged or observed command.
func (executor *ShellExecutor) RegisterSecret(value string) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return
	}
	executor.secrets = append(executor.secrets, trimmedValue)
}

// Execute runs the command and returns CommandFailedError when the exit code is non-zero.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	displayCommand := executor.redactCommand(command)
	executor.logger.Debug(
		executor.formatter.BuildStartedMessage(displayCommand),
		zap.String(logFieldCommandConstant, string(displayCommand.Name)),
		zap.Strings(logFieldArgumentsConstant, displayCommand.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, displayCommand.Details.WorkingDirectory),
	)
	executor.observers.CommandStarted(displayCommand)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		redactedFailure := errors.New(executor.redact(runError.Error()))
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(displayCommand, redactedFailure))
		executor.observers.CommandFailed(displayCommand, redactedFailure)
		return ExecutionResult{}, CommandExecutionError{Command: displayCommand, Cause: redactedFailure}
	}

	executionResult.StandardOutput = executor.redact(executionResult.StandardOutput)
	executionResult.StandardError = executor.redact(executionResult.StandardError)
	executor.observers.CommandFinished(displayCommand, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(displayCommand, executionResult),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, CommandFailedError{Command: displayCommand, Result: executionResult}
	}

	executor.logger.Debug(executor.formatter.BuildSuccessMessage(displayCommand))
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteMaven runs mvn with the provided details.
func (executor *ShellExecutor) ExecuteMaven(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandMaven, Details: details})
}

// ExecuteJava runs java with the provided details.
func (executor *ShellExecutor) ExecuteJava(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandJava, Details: details})
}

// ExecuteGrep runs grep with the provided details.
func (executor *ShellExecutor) ExecuteGrep(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGrep, Details: details})
}

func (executor *ShellExecutor) redactCommand(command ShellCommand) ShellCommand {
	if len(executor.secrets) == 0 {
		return command
	}
	redactedArguments := make([]string, 0, len(command.Details.Arguments))
	for _, argument := range command.Details.Arguments {
		redactedArguments = append(redactedArguments, executor.redact(argument))
	}
	redactedCommand := command
	redactedCommand.Details.Arguments = redactedArguments
	redactedCommand.Details.StandardInput = nil
	return redactedCommand
}

func (executor *ShellExecutor) redact(value string) string {
	redactedValue := value
	for _, secret := range executor.secrets {
		redactedValue = strings.ReplaceAll(redactedValue, secret, redactedValueConstant)
	}
	return redactedValue
}
