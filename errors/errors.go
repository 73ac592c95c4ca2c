package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the error type shared by the feed, its configuration and the
// HTTP surface.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying error and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError; Retryable follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Wrap returns the first AppError in err's chain, or Internal(err).
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// FeedUnavailable reports a request against a feed that is not mounted.
func FeedUnavailable(feed string) *AppError {
	return New(ErrCodeFeedUnavailable, fmt.Sprintf("Feed %q is not mounted.", feed), http.StatusServiceUnavailable).
		WithDetail("feed", feed)
}

// SourceFailed wraps the error a pull source replied with. Controllers log
// it and treat it as end of stream.
func SourceFailed(controller string, cause error) *AppError {
	return New(ErrCodeSourceFailed, fmt.Sprintf("The %s source failed.", controller), http.StatusBadGateway).
		WithDetail("controller", controller).
		WithCause(cause)
}

// InvalidInput reports a field whose value is not acceptable.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation reports one or more failed field checks.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// MissingField reports a required value that was not supplied.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field, http.StatusBadRequest).
		WithDetail("field", field)
}

// InvalidFormat reports a value that could not be decoded.
func InvalidFormat(field, expected string) *AppError {
	return New(ErrCodeInvalidFormat, fmt.Sprintf("Invalid format for %s. Expected: %s", field, expected), http.StatusBadRequest).
		WithDetail("field", field).
		WithDetail("expected_format", expected)
}

// PayloadTooLarge reports a request body over limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, fmt.Sprintf("Request body exceeds %d bytes.", limit), http.StatusRequestEntityTooLarge).
		WithDetail("limit", limit)
}

// RouteNotFound reports a request no route matched.
func RouteNotFound(method, path string) *AppError {
	return New(ErrCodeRouteNotFound, fmt.Sprintf("No route for %s %s.", method, path), http.StatusNotFound).
		WithDetail("method", method).
		WithDetail("path", path)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).
		WithCause(cause)
}
