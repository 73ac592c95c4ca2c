// Package middleware provides the Gin middleware stack used by the server:
// panic recovery, request IDs, CORS, body size limits, request metrics and
// request logging.
package middleware
