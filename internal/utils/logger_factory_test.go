package utils_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/utils"
)

const (
	testDiagnosticMessageConstant = "release verified"
	testConsoleMessageConstant    = "==> Verify release"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		level         utils.LogLevel
		format        utils.LogFormat
		expectJSON    bool
		expectEntry   bool
		expectedError string
	}{
		{name: "debug_structured", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectJSON: true, expectEntry: true},
		{name: "info_console", level: utils.LogLevelInfo, format: utils.LogFormatConsole, expectEntry: true},
		{name: "mixed_case_names", level: utils.LogLevel("INFO"), format: utils.LogFormat("Structured"), expectJSON: true, expectEntry: true},
		{name: "warn_filters_info", level: utils.LogLevelWarn, format: utils.LogFormatStructured},
		{name: "unsupported_level", level: utils.LogLevel("verbose"), format: utils.LogFormatConsole, expectedError: "unsupported log level: verbose"},
		{name: "unsupported_format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectedError: "unsupported log format: xml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var diagnosticBuffer bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithWriters(io.Discard, &diagnosticBuffer)

			logger, creationError := loggerFactory.CreateLogger(testCase.level, testCase.format)
			if len(testCase.expectedError) > 0 {
				require.EqualError(testInstance, creationError, testCase.expectedError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)

			logger.Info(testDiagnosticMessageConstant)
			require.NoError(testInstance, logger.Sync())

			output := bytes.TrimSpace(diagnosticBuffer.Bytes())
			if !testCase.expectEntry {
				require.Empty(testInstance, output)
				return
			}
			require.Contains(testInstance, string(output), testDiagnosticMessageConstant)
			require.Equal(testInstance, testCase.expectJSON, json.Valid(output))
		})
	}
}

func TestLoggerFactoryConsoleLoggerPrintsMessagesOnly(testInstance *testing.T) {
	var consoleBuffer bytes.Buffer
	var diagnosticBuffer bytes.Buffer
	loggerFactory := utils.NewLoggerFactoryWithWriters(&consoleBuffer, &diagnosticBuffer)

	loggerOutputs, creationError := loggerFactory.CreateLoggerOutputs(utils.LogLevelError, utils.LogFormatStructured)
	require.NoError(testInstance, creationError)

	loggerOutputs.ConsoleLogger.Debug(testConsoleMessageConstant)
	loggerOutputs.DiagnosticLogger.Info(testDiagnosticMessageConstant)

	require.Equal(testInstance, testConsoleMessageConstant, strings.TrimSpace(consoleBuffer.String()))
	require.Empty(testInstance, diagnosticBuffer.String())
}

func TestLoggerFactoryCreateLoggerOutputsRejectsUnsupportedLevel(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactoryWithWriters(io.Discard, io.Discard)

	_, creationError := loggerFactory.CreateLoggerOutputs(utils.LogLevel("verbose"), utils.LogFormatConsole)
	require.Error(testInstance, creationError)
}
