package pipeline

import "context"

// Step is a single named unit of a sequence.
type Step interface {
	Name() string
	Execute(executionContext context.Context) error
}

// StepFunc adapts a function into a Step.
type StepFunc struct {
	name    string
	execute func(executionContext context.Context) error
}

// NewStep constructs a Step named name that runs execute.
func NewStep(name string, execute func(executionContext context.Context) error) StepFunc {
	return StepFunc{name: name, execute: execute}
}

// Name returns the step name.
func (step StepFunc) Name() string {
	return step.name
}

// Execute runs the step function. A step without a function succeeds.
func (step StepFunc) Execute(executionContext context.Context) error {
	if step.execute == nil {
		return nil
	}
	return step.execute(executionContext)
}
