package source

import (
	"context"
	"sync"
	"time"
)

// FromSlice returns a source that replies synchronously with each element
// of items and then ends.
func FromSlice[T any](items []T) Source[T] {
	s := &sliceSource[T]{items: items}
	return s.read
}

type sliceSource[T any] struct {
	items []T
	index int
	ended error
}

func (s *sliceSource[T]) read(abort error, cb Callback[T]) {
	if abort != nil {
		if s.ended == nil {
			s.ended = abort
		}
		cb(ErrEnd, zero[T]())
		return
	}
	if s.ended != nil {
		cb(s.ended, zero[T]())
		return
	}
	if s.index >= len(s.items) {
		s.ended = ErrEnd
		cb(ErrEnd, zero[T]())
		return
	}
	item := s.items[s.index]
	s.index++
	cb(nil, item)
}

// Generate returns an infinite source that replies synchronously with
// fn(0), fn(1), ... until aborted.
func Generate[T any](fn func(i int) T) Source[T] {
	var (
		i     int
		ended error
	)
	return func(abort error, cb Callback[T]) {
		if abort != nil {
			ended = abort
			cb(ErrEnd, zero[T]())
			return
		}
		if ended != nil {
			cb(ended, zero[T]())
			return
		}
		item := fn(i)
		i++
		cb(nil, item)
	}
}

// Empty returns a source that ends immediately.
func Empty[T any]() Source[T] {
	return func(_ error, cb Callback[T]) {
		cb(ErrEnd, zero[T]())
	}
}

// Fail returns a source whose every reply is err.
func Fail[T any](err error) Source[T] {
	return func(abort error, cb Callback[T]) {
		if abort != nil {
			cb(ErrEnd, zero[T]())
			return
		}
		cb(err, zero[T]())
	}
}

// FromIterator adapts a blocking Iterator to the callback protocol. Each
// request runs Next on its own goroutine; an abort cancels the context
// passed to Next and closes the iterator.
func FromIterator[T any](ctx context.Context, it Iterator[T]) Source[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &iteratorSource[T]{it: it, ctx: ctx, cancel: cancel}
	return s.read
}

type iteratorSource[T any] struct {
	it     Iterator[T]
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	ended  error
	closed bool
}

func (s *iteratorSource[T]) read(abort error, cb Callback[T]) {
	if abort != nil {
		s.finish(abort)
		cb(ErrEnd, zero[T]())
		return
	}

	s.mu.Lock()
	ended := s.ended
	s.mu.Unlock()
	if ended != nil {
		cb(ended, zero[T]())
		return
	}

	go func() {
		val, ok, err := s.it.Next(s.ctx)
		switch {
		case err != nil:
			s.finish(err)
			cb(err, zero[T]())
		case !ok:
			s.finish(ErrEnd)
			cb(ErrEnd, zero[T]())
		default:
			cb(nil, val)
		}
	}()
}

func (s *iteratorSource[T]) finish(reason error) {
	s.mu.Lock()
	if s.ended == nil {
		s.ended = reason
	}
	closed := s.closed
	s.closed = true
	s.mu.Unlock()

	if !closed {
		s.cancel()
		_ = s.it.Close()
	}
}

// Async forwards every call to src on a new goroutine, optionally after
// delay. Calls into src are serialized.
func Async[T any](src Source[T], delay time.Duration) Source[T] {
	var mu sync.Mutex
	return func(abort error, cb Callback[T]) {
		go func() {
			if delay > 0 && abort == nil {
				time.Sleep(delay)
			}
			mu.Lock()
			defer mu.Unlock()
			src(abort, cb)
		}()
	}
}

// Guard wraps src so that a request issued while a previous one is still
// unanswered is rejected with ErrConcurrentRead instead of reaching src.
// Aborts always pass through.
func Guard[T any](src Source[T]) Source[T] {
	var (
		mu      sync.Mutex
		pending bool
	)
	return func(abort error, cb Callback[T]) {
		if abort != nil {
			src(abort, cb)
			return
		}
		mu.Lock()
		if pending {
			mu.Unlock()
			cb(ErrConcurrentRead, zero[T]())
			return
		}
		pending = true
		mu.Unlock()

		src(nil, func(end error, item T) {
			mu.Lock()
			pending = false
			mu.Unlock()
			cb(end, item)
		})
	}
}
