// Package ui provides helpers for formatting human-readable console output.
//
// Console renders colored progress lines with lipgloss and, inside GitHub
// Actions, emits workflow commands so each review step becomes a collapsible
// log group. CommandProgressLogger echoes each executed shell command
// while detailed telemetry continues to flow through structured loggers.
package ui
