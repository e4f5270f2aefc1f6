// Package errors provides structured errors for the scheduling assistant.
//
// Every failure that crosses the pipeline boundary is converted to a
// PipelineError carrying a machine-readable code plus details, so callers
// always receive a message/details pair instead of a raw error chain.
package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for assistant operations.
type ErrorCode string

const (
	// ErrCodeInvalidNLUOutput indicates the NLU text could not be converted to JSON.
	ErrCodeInvalidNLUOutput ErrorCode = "INVALID_NLU_OUTPUT"
	// ErrCodeSchemaValidation indicates the intent payload violates its schema.
	ErrCodeSchemaValidation ErrorCode = "SCHEMA_VALIDATION"
	// ErrCodeUnsupportedIntent indicates a well-formed intent outside the executable set.
	ErrCodeUnsupportedIntent ErrorCode = "UNSUPPORTED_INTENT"
	// ErrCodeLLMUnavailable indicates the NLU collaborator is not reachable.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeConstraintCheckDegraded indicates the advisory constraint engine was skipped.
	// This code is logged, never surfaced as a request failure.
	ErrCodeConstraintCheckDegraded ErrorCode = "CONSTRAINT_CHECK_DEGRADED"
	// ErrCodeEventConflict indicates the candidate interval overlaps existing events.
	ErrCodeEventConflict ErrorCode = "EVENT_CONFLICT"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the referenced event does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the operation was canceled by its caller.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// PipelineError represents a structured error for assistant operations.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details map[string]any
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail entry to the error.
func (e *PipelineError) WithDetail(key string, value any) *PipelineError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// GetCode returns the error code.
func (e *PipelineError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidNLUOutput creates an error for unparseable NLU output.
func InvalidNLUOutput(rawOutput, parseError string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeInvalidNLUOutput,
		Message: "could not extract valid JSON from the model response",
		Details: map[string]any{
			"raw_output":  rawOutput,
			"parse_error": parseError,
		},
	}
}

// SchemaValidation creates an error for intent payloads that fail validation.
func SchemaValidation(intentType string, fieldErrors []FieldError) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeSchemaValidation,
		Message: fmt.Sprintf("intent data does not match the %s schema", intentType),
		Details: map[string]any{
			"intent_type":  intentType,
			"field_errors": fieldErrors,
		},
	}
}

// UnsupportedIntent creates an error for intent types outside the executable set.
func UnsupportedIntent(intentType string, supported []string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeUnsupportedIntent,
		Message: fmt.Sprintf("intent type %q is not supported", intentType),
		Details: map[string]any{
			"intent_type":     intentType,
			"supported_types": supported,
		},
	}
}

// LLMUnavailable creates an error for unreachable NLU collaborators.
func LLMUnavailable(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// EventConflict creates an error describing a scheduling conflict.
func EventConflict(count int) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeEventConflict,
		Message: fmt.Sprintf("the requested time overlaps %d existing event(s)", count),
		Details: map[string]any{"conflict_count": count},
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeNotFound, Message: msg}
}

// ContextCanceled creates a canceled error.
func ContextCanceled(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
