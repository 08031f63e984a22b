// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns pipeline errors into HTTP responses with standardized logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError logs the full error and writes the stable public body.
func (h *ErrorHandler) HandleHTTPError(c *gin.Context, err error) {
	stdErr := h.normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(c, stdErr, status)

	c.AbortWithStatusJSON(status, gin.H{"error": PublicMessage(stdErr.Code)})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(c *gin.Context, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	}
	if cause := stdErr.Unwrap(); cause != nil {
		fields["cause"] = cause.Error()
	}
	if c != nil {
		fields["path"] = c.FullPath()
		if id, ok := c.Get("requestId"); ok {
			fields["requestId"] = id
		}
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	h.logger.Error("Request failed", fields)
}
