package source

import (
	"context"
	"errors"
)

// ErrEnd is the end value a source passes to its callback when the stream
// finished cleanly. Any other non-nil end value is a failure.
var ErrEnd = errors.New("source: end of stream")

// ErrConcurrentRead is reported by Guard when a second request arrives
// while the previous one has not been answered yet.
var ErrConcurrentRead = errors.New("source: concurrent read")

// Callback receives the single reply to a request. Exactly one of end and
// item is meaningful: a non-nil end terminates the stream.
type Callback[T any] func(end error, item T)

// Source is a demand-driven producer. Calling it with a nil abort requests
// the next item; calling it with a non-nil abort asks the producer to
// terminate. The callback is invoked exactly once per call, either
// synchronously or from another goroutine. Only one request may be
// outstanding at a time.
type Source[T any] func(abort error, cb Callback[T])

// Factory returns a fresh Source. It is invoked once per bind.
type Factory[T any] func() Source[T]

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// IsEnd reports whether err marks a clean end of stream.
func IsEnd(err error) bool {
	return errors.Is(err, ErrEnd)
}

// Abort sends a termination request to src and ignores the reply.
func Abort[T any](src Source[T], reason error) {
	if src == nil {
		return
	}
	if reason == nil {
		reason = ErrEnd
	}
	src(reason, func(error, T) {})
}

func zero[T any]() T {
	var z T
	return z
}
