package web

// errors.go provides unified error responses for the API.
//
// Every error is logged with its technical detail and the request id, then
// mapped through core.MapError to the message, action and support code the
// client sees.

import (
	"context"
	"errors"
	"net/http"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/Achyut2001/Data-provider-Service/internal/logging"
)

// Request validation errors. Their text matches the core.MapError patterns.
var (
	errRateLimited        = errors.New("rate limit exceeded")
	errNoFile             = errors.New("no file provided")
	errEmptyFile          = errors.New("file is empty")
	errFileTooLarge       = errors.New("file too large")
	errNotXLSX            = errors.New("only .xlsx files are supported")
	errInvalidUploadState = errors.New("invalid upload status")
	errInvalidPropertyID  = errors.New("invalid property id")
	errInvalidBody        = errors.New("invalid request body")
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	errText := err.Error()
	if statusCode >= http.StatusInternalServerError {
		errText = userMsg.Message
	}

	writeJSON(w, statusCode, ErrorResponse{
		Error:   errText,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUploadNotFound), errors.Is(err, core.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
