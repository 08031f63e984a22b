// Package errors provides standardized error handling for the plan pipeline and its HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Client input
	ErrCodeMissingPrompt ErrorCode = "MISSING_PROMPT"

	// External model
	ErrCodeModelInvocationFailed ErrorCode = "MODEL_INVOCATION_FAILED"
	ErrCodeModelTimeout          ErrorCode = "MODEL_TIMEOUT"
	ErrCodeMalformedModelOutput  ErrorCode = "MALFORMED_MODEL_OUTPUT"

	// Result transport
	ErrCodeNoPayload           ErrorCode = "NO_PAYLOAD"
	ErrCodePayloadDecodeFailed ErrorCode = "PAYLOAD_DECODE_FAILED"
	ErrCodeResultStoreFailed   ErrorCode = "RESULT_STORE_FAILED"

	// Endpoint boundary
	ErrCodePlanGenerationFailed ErrorCode = "PLAN_GENERATION_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// Stable, non-diagnostic messages shown to callers.
const (
	MsgPromptRequired       = "Prompt is required"
	MsgPlanGenerationFailed = "Failed to generate plan"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code so sentinel comparisons work with errors.Is.
func (e *StandardError) Is(target error) bool {
	var t *StandardError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks. Only the Code is compared.
var (
	ErrMissingPrompt        = &StandardError{Code: ErrCodeMissingPrompt}
	ErrModelInvocation      = &StandardError{Code: ErrCodeModelInvocationFailed}
	ErrModelTimeout         = &StandardError{Code: ErrCodeModelTimeout}
	ErrMalformedModelOutput = &StandardError{Code: ErrCodeMalformedModelOutput}
	ErrNoPayload            = &StandardError{Code: ErrCodeNoPayload}
	ErrPayloadDecode        = &StandardError{Code: ErrCodePayloadDecodeFailed}
	ErrPlanGeneration       = &StandardError{Code: ErrCodePlanGenerationFailed}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingPromptError creates a non-retryable client input error.
func NewMissingPromptError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingPrompt,
		Message:   MsgPromptRequired,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelInvocationError wraps a transport, auth or service failure from the model API.
func NewModelInvocationError(provider string, err error, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelInvocationFailed,
		Message:   "Model invocation failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, errString(err)),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewModelTimeoutError creates a retryable model timeout error.
func NewModelTimeoutError(provider string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelTimeout,
		Message:   "Model invocation timeout",
		Details:   fmt.Sprintf("provider: %s, timeout: %s", provider, timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedModelOutputError rejects a model response that does not fit the plan shape.
func NewMalformedModelOutputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedModelOutput,
		Message:   "Model output is not a valid plan",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNoPayloadError reports that no result was supplied to the results view.
func NewNoPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoPayload,
		Message:   "No result data supplied",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadDecodeError reports a result payload that is present but unreadable.
func NewPayloadDecodeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadDecodeFailed,
		Message:   "Result data could not be processed",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewResultStoreError creates a retryable store error.
func NewResultStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Result store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPlanGenerationError collapses any downstream failure at the endpoint boundary.
func NewPlanGenerationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanGenerationFailed,
		Message:   MsgPlanGenerationFailed,
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps an unexpected fault.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps error codes to the status returned to callers.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMissingPrompt:         http.StatusBadRequest,
	ErrCodeNoPayload:             http.StatusOK,
	ErrCodePayloadDecodeFailed:   http.StatusBadRequest,
	ErrCodeModelInvocationFailed: http.StatusInternalServerError,
	ErrCodeModelTimeout:          http.StatusInternalServerError,
	ErrCodeMalformedModelOutput:  http.StatusInternalServerError,
	ErrCodeResultStoreFailed:     http.StatusInternalServerError,
	ErrCodePlanGenerationFailed:  http.StatusInternalServerError,
	ErrCodeInternal:              http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-visible message. Server-side faults never expose details.
func PublicMessage(code ErrorCode) string {
	if code == ErrCodeMissingPrompt {
		return MsgPromptRequired
	}
	return MsgPlanGenerationFailed
}

// ==========================
// 4. Utility Functions
// ==========================

// CodeOf extracts the error code from any error chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROMPT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "MODEL"):
		return "AI"
	case strings.Contains(codeStr, "PAYLOAD") || strings.Contains(codeStr, "STORE"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "PLAN"):
		return "PLAN"
	default:
		return "OTHER"
	}
}
