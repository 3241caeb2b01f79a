package forge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
)

const (
	apiStatusErrorTemplateConstant          = "%s returned HTTP %d, expected %d (request: %s, response: %s)"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	emptyPayloadConstant                    = "{}"
	unserializablePayloadConstant           = "<unserializable>"
)

// OperationName describes a named GitHub REST operation supported by the client.
type OperationName string

// APIStatusError reports a response whose status differs from the status the operation expects.
type APIStatusError struct {
	Operation      OperationName
	ExpectedStatus int
	ActualStatus   int
	RequestPayload string
	ResponseBody   string
}

// Error describes the unexpected status together with the serialized request and response.
func (statusError APIStatusError) Error() string {
	return fmt.Sprintf(
		apiStatusErrorTemplateConstant,
		statusError.Operation,
		statusError.ActualStatus,
		statusError.ExpectedStatus,
		statusError.RequestPayload,
		statusError.ResponseBody,
	)
}

// OperationError wraps transport failures that produced no HTTP response.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// IsStatus reports whether err is an APIStatusError carrying the provided HTTP status.
func IsStatus(err error, status int) bool {
	var statusError APIStatusError
	if !errors.As(err, &statusError) {
		return false
	}
	return statusError.ActualStatus == status
}

// IsNotFound reports whether err is an APIStatusError for a 404 response.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// expectStatus converts the outcome of a go-github call into nil or a typed error.
func expectStatus(operation OperationName, requestPayload any, response *github.Response, callError error, expectedStatus int) error {
	if response == nil || response.Response == nil {
		if callError == nil {
			return nil
		}
		return OperationError{Operation: operation, Cause: callError}
	}

	if response.StatusCode != expectedStatus {
		return APIStatusError{
			Operation:      operation,
			ExpectedStatus: expectedStatus,
			ActualStatus:   response.StatusCode,
			RequestPayload: serializePayload(requestPayload),
			ResponseBody:   describeResponseError(callError),
		}
	}

	if callError != nil {
		return OperationError{Operation: operation, Cause: callError}
	}
	return nil
}

func serializePayload(payload any) string {
	if payload == nil {
		return emptyPayloadConstant
	}
	encodedPayload, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return unserializablePayloadConstant
	}
	return string(encodedPayload)
}

func describeResponseError(callError error) string {
	var errorResponse *github.ErrorResponse
	if errors.As(callError, &errorResponse) {
		return serializePayload(errorResponse)
	}
	if callError != nil {
		return callError.Error()
	}
	return emptyPayloadConstant
}
