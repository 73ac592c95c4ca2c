// Package sourcetest provides a scriptable pull source for tests.
package sourcetest

import (
	"sync"
	"testing"

	"github.com/kbukum/pullfeed/source"
)

// Manual is a source whose replies are issued by the test. It records
// every request and abort and fails the test when a request arrives while
// another is still unanswered.
type Manual[T any] struct {
	t testing.TB

	mu       sync.Mutex
	pending  source.Callback[T]
	requests int
	aborts   []error
}

// NewManual creates a manual source bound to t.
func NewManual[T any](t testing.TB) *Manual[T] {
	t.Helper()
	return &Manual[T]{t: t}
}

// Source returns the read side.
func (m *Manual[T]) Source() source.Source[T] {
	return m.read
}

// Factory returns a factory that always yields this source.
func (m *Manual[T]) Factory() source.Factory[T] {
	return func() source.Source[T] { return m.read }
}

func (m *Manual[T]) read(abort error, cb source.Callback[T]) {
	m.mu.Lock()
	if abort != nil {
		m.aborts = append(m.aborts, abort)
		m.mu.Unlock()
		var zero T
		cb(source.ErrEnd, zero)
		return
	}
	if m.pending != nil {
		m.mu.Unlock()
		m.t.Errorf("sourcetest: request %d issued while request %d is outstanding", m.requests+1, m.requests)
		return
	}
	m.requests++
	m.pending = cb
	m.mu.Unlock()
}

// Requests returns the number of item requests received.
func (m *Manual[T]) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Pending reports whether a request is waiting for a reply.
func (m *Manual[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Aborts returns the abort reasons received so far.
func (m *Manual[T]) Aborts() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]error, len(m.aborts))
	copy(out, m.aborts)
	return out
}

// Reply answers the outstanding request with item.
func (m *Manual[T]) Reply(item T) {
	m.t.Helper()
	cb := m.take()
	if cb == nil {
		m.t.Fatalf("sourcetest: Reply(%v) without an outstanding request", item)
		return
	}
	cb(nil, item)
}

// ReplyAll answers len(items) consecutive requests. Each request must be
// issued before the next item is sent.
func (m *Manual[T]) ReplyAll(items ...T) {
	m.t.Helper()
	for _, item := range items {
		m.Reply(item)
	}
}

// End answers the outstanding request with a termination. A nil err is a
// clean end.
func (m *Manual[T]) End(err error) {
	m.t.Helper()
	if err == nil {
		err = source.ErrEnd
	}
	cb := m.take()
	if cb == nil {
		m.t.Fatalf("sourcetest: End(%v) without an outstanding request", err)
		return
	}
	var zero T
	cb(err, zero)
}

func (m *Manual[T]) take() source.Callback[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	cb := m.pending
	m.pending = nil
	return cb
}
