package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	stepErrorTemplateConstant         = "%s: %s"
	logFieldStepConstant              = "step"
	logFieldStepIndexConstant         = "index"
	logFieldStepCountConstant         = "count"
	stepStartedLogMessageConstant     = "step started"
	stepCompletedLogMessageConstant   = "step completed"
	stepFailedLogMessageConstant      = "step failed"
	sequenceAbortedLogMessageConstant = "sequence cancelled"
)

// GroupReporter frames the console output of each step.
type GroupReporter interface {
	StartGroup(title string)
	EndGroup()
}

// StepError identifies the step that aborted a sequence.
type StepError struct {
	Step  string
	Cause error
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepErrorTemplateConstant, stepError.Step, stepError.Cause)
}

// Unwrap exposes the underlying cause.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// Runner executes steps strictly in order and stops at the first failure.
type Runner struct {
	reporter GroupReporter
	logger   *zap.Logger
}

// NewRunner constructs a Runner. Both collaborators are optional.
func NewRunner(reporter GroupReporter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{reporter: reporter, logger: logger}
}

// Run executes steps in order. The returned error is a StepError naming the failed step.
func (runner *Runner) Run(executionContext context.Context, steps []Step) error {
	for stepIndex, step := range steps {
		if step == nil {
			continue
		}
		if contextError := executionContext.Err(); contextError != nil {
			runner.logger.Warn(sequenceAbortedLogMessageConstant, zap.String(logFieldStepConstant, step.Name()))
			return StepError{Step: step.Name(), Cause: contextError}
		}

		runner.logger.Debug(stepStartedLogMessageConstant, zap.String(logFieldStepConstant, step.Name()), zap.Int(logFieldStepIndexConstant, stepIndex+1), zap.Int(logFieldStepCountConstant, len(steps)))
		if runner.reporter != nil {
			runner.reporter.StartGroup(step.Name())
		}
		executeError := step.Execute(executionContext)
		if runner.reporter != nil {
			runner.reporter.EndGroup()
		}

		if executeError != nil {
			runner.logger.Error(stepFailedLogMessageConstant, zap.String(logFieldStepConstant, step.Name()), zap.Error(executeError))
			return StepError{Step: step.Name(), Cause: executeError}
		}
		runner.logger.Debug(stepCompletedLogMessageConstant, zap.String(logFieldStepConstant, step.Name()))
	}
	return nil
}
