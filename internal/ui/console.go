package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	groupStartTemplateConstant          = "::group::%s"
	groupEndLineConstant                = "::endgroup::"
	errorAnnotationTemplateConstant     = "::error::%s"
	warningAnnotationTemplateConstant   = "::warning::%s"
	noticeAnnotationTemplateConstant    = "::notice::%s"
	plainGroupStartTemplateConstant     = "==> %s"
	infoPrefixConstant                  = "  "
	successPrefixConstant               = "✓ "
	warningPrefixConstant               = "! "
	failurePrefixConstant               = "✗ "
	warningSummaryTemplateConstant      = "Completed with %d warning(s)"
	lineTerminatorConstant              = "\n"
	successColorConstant                = "#8BC34A"
	warningColorConstant                = "#FFC107"
	failureColorConstant                = "#E53935"
	headingColorConstant                = "#2196F3"
	githubActionsEnvironmentKeyConstant = "GITHUB_ACTIONS"
	githubActionsEnabledValueConstant   = "true"
)

// ConsoleOptions configures console rendering.
type ConsoleOptions struct {
	Writer io.Writer
	// ForceColor renders ANSI colors even when Writer is not a terminal.
	ForceColor bool
	// Annotations emits GitHub Actions workflow commands for groups, warnings, errors, and notices.
	Annotations bool
}

// Console prints colored human-readable progress lines and tracks warnings.
type Console struct {
	writer       io.Writer
	annotations  bool
	groupOpen    bool
	warningCount int
	headingStyle lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	failureStyle lipgloss.Style
}

// NewConsole constructs a Console using the provided options.
func NewConsole(options ConsoleOptions) *Console {
	writer := options.Writer
	if writer == nil {
		writer = os.Stdout
	}

	renderer := lipgloss.NewRenderer(writer)
	if options.ForceColor {
		renderer.SetColorProfile(termenv.ANSI)
	}

	return &Console{
		writer:       writer,
		annotations:  options.Annotations,
		headingStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(headingColorConstant)),
		successStyle: renderer.NewStyle().Foreground(lipgloss.Color(successColorConstant)),
		warningStyle: renderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)),
		failureStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(failureColorConstant)),
	}
}

// RunningInGitHubActions reports whether the process runs inside a GitHub Actions job.
// A nil lookup reads the process environment.
func RunningInGitHubActions(lookup func(key string) (string, bool)) bool {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, found := lookup(githubActionsEnvironmentKeyConstant)
	return found && strings.EqualFold(strings.TrimSpace(value), githubActionsEnabledValueConstant)
}

// StartGroup opens a collapsible log group, closing any group still open.
func (console *Console) StartGroup(title string) {
	if console.groupOpen {
		console.EndGroup()
	}
	if console.annotations {
		console.writeLine(fmt.Sprintf(groupStartTemplateConstant, title))
	} else {
		console.writeLine(console.headingStyle.Render(fmt.Sprintf(plainGroupStartTemplateConstant, title)))
	}
	console.groupOpen = true
}

// EndGroup closes the open log group. It is a no-op when no group is open.
func (console *Console) EndGroup() {
	if !console.groupOpen {
		return
	}
	if console.annotations {
		console.writeLine(groupEndLineConstant)
	}
	console.groupOpen = false
}

// Info prints an informational line.
func (console *Console) Info(message string) {
	console.writeLine(infoPrefixConstant + message)
}

// Block prints multi-line text verbatim.
func (console *Console) Block(text string) {
	trimmedText := strings.TrimRight(text, lineTerminatorConstant)
	if len(trimmedText) == 0 {
		return
	}
	console.writeLine(trimmedText)
}

// Success prints a success line.
func (console *Console) Success(message string) {
	console.writeLine(console.successStyle.Render(successPrefixConstant + message))
}

// Warning prints a warning line and increments the warning counter.
func (console *Console) Warning(message string) {
	console.warningCount++
	if console.annotations {
		console.writeLine(fmt.Sprintf(warningAnnotationTemplateConstant, message))
		return
	}
	console.writeLine(console.warningStyle.Render(warningPrefixConstant + message))
}

// Failure closes any open group and prints an error line.
func (console *Console) Failure(message string) {
	console.EndGroup()
	if console.annotations {
		console.writeLine(fmt.Sprintf(errorAnnotationTemplateConstant, message))
		return
	}
	console.writeLine(console.failureStyle.Render(failurePrefixConstant + message))
}

// Notice closes any open group and prints a final notice line.
func (console *Console) Notice(message string) {
	console.EndGroup()
	if console.annotations {
		console.writeLine(fmt.Sprintf(noticeAnnotationTemplateConstant, message))
		return
	}
	console.writeLine(console.successStyle.Render(successPrefixConstant + message))
}

// SummarizeWarnings prints the accumulated warning count when any warning was printed.
func (console *Console) SummarizeWarnings() {
	if console.warningCount == 0 {
		return
	}
	console.EndGroup()
	console.writeLine(console.warningStyle.Render(fmt.Sprintf(warningSummaryTemplateConstant, console.warningCount)))
}

func (console *Console) writeLine(line string) {
	_, _ = io.WriteString(console.writer, line+lineTerminatorConstant)
}
