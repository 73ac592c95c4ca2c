package errors

// ErrorCode is the machine-readable code carried in every error response.
type ErrorCode string

// Retryable: the client may repeat the request unchanged.
const (
	// ErrCodeFeedUnavailable: the feed is not mounted or is shutting down.
	ErrCodeFeedUnavailable ErrorCode = "FEED_UNAVAILABLE"
	// ErrCodeSourceFailed: a pull source answered with an error.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
)

// Request errors.
const (
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat   ErrorCode = "INVALID_FORMAT"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRouteNotFound   ErrorCode = "ROUTE_NOT_FOUND"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// IsRetryableCode reports whether code marks a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeFeedUnavailable, ErrCodeSourceFailed:
		return true
	default:
		return false
	}
}
