// Package errors provides the structured AppError type used across the
// module: machine-readable codes, HTTP status mapping, retryable detection,
// and the JSON error envelope returned by the HTTP surface.
package errors
