package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for trade study agent errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Store error codes
const (
	DB_OPEN_FAILED    ErrorCode = "DB_OPEN_FAILED"
	DB_QUERY_FAILED   ErrorCode = "DB_QUERY_FAILED"
	STUDY_NOT_FOUND   ErrorCode = "STUDY_NOT_FOUND"
	ATTACHMENT_FAILED ErrorCode = "ATTACHMENT_FAILED"
)

// Language model error codes
const (
	LLM_AUTH_FAILED      ErrorCode = "LLM_AUTH_FAILED"
	LLM_REQUEST_FAILED   ErrorCode = "LLM_REQUEST_FAILED"
	MODEL_OUTPUT_INVALID ErrorCode = "MODEL_OUTPUT_INVALID"
)

// Research error codes
const (
	RESEARCH_SEARCH_FAILED ErrorCode = "RESEARCH_SEARCH_FAILED"
	RESEARCH_FETCH_FAILED  ErrorCode = "RESEARCH_FETCH_FAILED"
)

// Tool error codes
const (
	TOOL_NOT_FOUND        ErrorCode = "TOOL_NOT_FOUND"
	TOOL_ALREADY_EXISTS   ErrorCode = "TOOL_ALREADY_EXISTS"
	TOOL_INVALID_INPUT    ErrorCode = "TOOL_INVALID_INPUT"
	TOOL_EXECUTION_FAILED ErrorCode = "TOOL_EXECUTION_FAILED"
)

// Export error codes
const (
	EXPORT_FAILED ErrorCode = "EXPORT_FAILED"
)

// AgentError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type AgentError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an AgentError with the same Code.
func (e *AgentError) Is(target error) bool {
	var agentErr *AgentError
	if errors.As(target, &agentErr) {
		return e.Code == agentErr.Code
	}
	return false
}

// NewError creates a new non-retryable AgentError with the given code and message.
func NewError(code ErrorCode, message string) *AgentError {
	return &AgentError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable AgentError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *AgentError {
	return &AgentError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable AgentError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AgentError {
	return &AgentError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns an empty code when the chain carries no AgentError.
func CodeOf(err error) ErrorCode {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Code
	}
	return ""
}
