// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor logs each git, mvn, java, or grep invocation, enforces zero exit
// codes, and notifies CommandObservers. ProcessRunner is the os/exec backed
// CommandRunner. Secrets registered with the executor never reach log output.
package execshell
