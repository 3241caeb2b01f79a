package execshell

// CommandObserver is notified around every command a ShellExecutor runs. Commands arrive with secrets redacted.
type CommandObserver interface {
	CommandStarted(command ShellCommand)
	CommandFinished(command ShellCommand, result ExecutionResult)
	CommandFailed(command ShellCommand, failure error)
}

// CommandObservers fans notifications out to each member in order. The zero value discards them.
type CommandObservers []CommandObserver

// CommandStarted forwards the start notification.
func (observers CommandObservers) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandStarted(command)
		}
	}
}

// CommandFinished forwards the result of a command that ran to completion, whatever its exit code.
func (observers CommandObservers) CommandFinished(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandFinished(command, result)
		}
	}
}

// CommandFailed forwards a failure to start or wait for the command.
func (observers CommandObservers) CommandFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandFailed(command, failure)
		}
	}
}
