package reviewerrors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	parseErrorTemplateConstant           = "unable to parse %s %q: %s"
	validationErrorTemplateConstant      = "invalid %s: %s"
	notFoundErrorTemplateConstant        = "%s not found: %s"
	policyViolationErrorTemplateConstant = "%s"
	wrappedErrorTemplateConstant         = "%s: %s"
	unknownCauseMessageConstant          = "unknown error"
)

// ParseError reports input that does not match the expected textual format.
type ParseError struct {
	Subject string
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Subject, parseError.Input, parseError.Message)
}

// ValidationError reports a well-formed input with an unacceptable value.
type ValidationError struct {
	FieldName string
	Message   string
}

// Error describes the validation failure.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.FieldName, validationError.Message)
}

// NotFoundError reports a forge resource (release, run, issue) that does not exist.
type NotFoundError struct {
	Resource string
	Message  string
	Cause    error
}

// Error describes the missing resource.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.Resource, notFoundError.Message)
}

// Unwrap exposes the underlying cause.
func (notFoundError NotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// PolicyViolationError reports a state of the repository that forbids requesting a review.
type PolicyViolationError struct {
	Policy  string
	Message string
}

// Error describes the violated policy.
func (policyError PolicyViolationError) Error() string {
	return fmt.Sprintf(policyViolationErrorTemplateConstant, policyError.Message)
}

// WrappedError pairs a human-readable message with the lowercased text of its cause.
type WrappedError struct {
	Message string
	Cause   error
}

// Error renders the message followed by the lowercased cause.
func (wrappedError WrappedError) Error() string {
	causeMessage := unknownCauseMessageConstant
	if wrappedError.Cause != nil {
		causeMessage = strings.ToLower(wrappedError.Cause.Error())
	}
	return fmt.Sprintf(wrappedErrorTemplateConstant, wrappedError.Message, causeMessage)
}

// Unwrap exposes the underlying cause.
func (wrappedError WrappedError) Unwrap() error {
	return wrappedError.Cause
}

// Wrap attaches a human-readable message to cause. A nil cause yields nil.
func Wrap(message string, cause error) error {
	if cause == nil {
		return nil
	}
	return WrappedError{Message: message, Cause: cause}
}

// IsPolicyViolation reports whether err carries a PolicyViolationError.
func IsPolicyViolation(err error) bool {
	var policyError PolicyViolationError
	return errors.As(err, &policyError)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundError NotFoundError
	return errors.As(err, &notFoundError)
}
