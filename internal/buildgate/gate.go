package buildgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	versionFlagConstant                 = "--version"
	compilationPolicyConstant           = "warnings_as_errors"
	compilationFailureMessageConstant   = "the project does not compile without warnings; fix every compiler and javadoc warning before requesting a review"
	compilationSucceededMessageConstant = "Compiled without warnings"
	versionFailureTemplateConstant      = "Unable to determine the %s version"
	compileFailureMessageConstant       = "Unable to compile the project"
	checkFailureTemplateConstant        = "Static check %q failed"
	checkPassedTemplateConstant         = "%s: %d match(es) as expected"
	executorRequiredMessageConstant     = "build gate requires a toolchain executor"
	logFieldCommandConstant             = "command"
	logFieldCheckConstant               = "check"
	logFieldExitCodeConstant            = "exit_code"
	compilationFailedLogMessageConstant = "compilation failed"
	checkPassedLogMessageConstant       = "static check passed"
)

// DefaultMavenArguments compile the project with every compiler and javadoc warning escalated to an error.
// Each javac flag travels in its own property so the project pom can list it as a separate compilerArgs entry.
var DefaultMavenArguments = []string{
	"-ntp",
	"-B",
	"clean",
	"compile",
	"-Dmaven.compiler.showWarnings=true",
	"-Dmaven.compiler.failOnWarning=true",
	"-Dconfig.xlint=-Xlint:all",
	"-Dconfig.xdoclint=-Xdoclint:all/private",
	"-Dconfig.werror=-Werror",
}

// ErrExecutorNotConfigured indicates the gate was constructed without a toolchain executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// Options configures the build gate.
type Options struct {
	WorkingDirectory string
	MavenArguments   []string
}

// Gate prints toolchain versions, compiles the project, and runs static checks.
type Gate struct {
	executor         ToolchainExecutor
	reporter         Reporter
	logger           *zap.Logger
	workingDirectory string
	mavenArguments   []string
}

// NewGate constructs a Gate. Empty MavenArguments select DefaultMavenArguments.
func NewGate(executor ToolchainExecutor, reporter Reporter, logger *zap.Logger, options Options) (*Gate, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mavenArguments := options.MavenArguments
	if len(mavenArguments) == 0 {
		mavenArguments = DefaultMavenArguments
	}
	return &Gate{
		executor:         executor,
		reporter:         reporter,
		logger:           logger,
		workingDirectory: strings.TrimSpace(options.WorkingDirectory),
		mavenArguments:   append([]string(nil), mavenArguments...),
	}, nil
}

// DisplayVersions prints the java and mvn versions.
func (gate *Gate) DisplayVersions(executionContext context.Context) error {
	versionCommands := []struct {
		name    execshell.CommandName
		execute func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	}{
		{name: execshell.CommandJava, execute: gate.executor.ExecuteJava},
		{name: execshell.CommandMaven, execute: gate.executor.ExecuteMaven},
	}

	for _, versionCommand := range versionCommands {
		result, versionError := versionCommand.execute(executionContext, execshell.CommandDetails{
			Arguments:        []string{versionFlagConstant},
			WorkingDirectory: gate.workingDirectory,
		})
		if versionError != nil {
			return reviewerrors.Wrap(fmt.Sprintf(versionFailureTemplateConstant, versionCommand.name), versionError)
		}
		gate.block(result.StandardOutput)
	}
	return nil
}

// Compile runs the configured Maven build. A failing build is a policy violation.
func (gate *Gate) Compile(executionContext context.Context) error {
	result, compileError := gate.executor.ExecuteMaven(executionContext, execshell.CommandDetails{
		Arguments:        gate.mavenArguments,
		WorkingDirectory: gate.workingDirectory,
	})
	if compileError == nil {
		gate.block(result.StandardOutput)
		gate.succeed(compilationSucceededMessageConstant)
		return nil
	}

	var failedError execshell.CommandFailedError
	if !errors.As(compileError, &failedError) {
		return reviewerrors.Wrap(compileFailureMessageConstant, compileError)
	}

	gate.block(failedError.Result.StandardOutput)
	gate.logger.Warn(compilationFailedLogMessageConstant, zap.Int(logFieldExitCodeConstant, failedError.Result.ExitCode))
	return reviewerrors.Wrap(compileFailureMessageConstant, reviewerrors.PolicyViolationError{
		Policy:  compilationPolicyConstant,
		Message: compilationFailureMessageConstant,
	})
}

// RunChecks evaluates every check in order and stops at the first failure.
func (gate *Gate) RunChecks(executionContext context.Context, checks []StaticCheck) error {
	for _, check := range checks {
		outcome, checkError := check.Evaluate(executionContext, gate.workingDirectory)
		if len(outcome.Matches) > 0 {
			gate.block(strings.Join(outcome.Matches, "\n"))
		}
		if checkError != nil {
			return reviewerrors.Wrap(fmt.Sprintf(checkFailureTemplateConstant, check.Name()), checkError)
		}
		gate.succeed(fmt.Sprintf(checkPassedTemplateConstant, check.Name(), outcome.Count))
		gate.logger.Debug(checkPassedLogMessageConstant, zap.String(logFieldCheckConstant, check.Name()))
	}
	return nil
}

func (gate *Gate) succeed(message string) {
	if gate.reporter == nil {
		return
	}
	gate.reporter.Success(message)
}

func (gate *Gate) block(text string) {
	if gate.reporter == nil {
		return
	}
	gate.reporter.Block(text)
}
