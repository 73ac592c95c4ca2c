package feed

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/pullfeed/errors"
	"github.com/kbukum/pullfeed/liststate"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/source"
)

// Prefix drains a second source continuously and puts each item at the
// head of the list as it arrives, regardless of scroll position or of the
// scroll source's state. It does not deduplicate.
type Prefix[T any, K comparable] struct {
	settings
	store *liststate.Store[T, K]

	// Owned by the scheduler.
	src  source.Source[T]
	loop *prefixLoop[T]

	running atomic.Bool
}

type prefixLoop[T any] struct {
	src      source.Source[T]
	received int
}

// NewPrefix creates a prefix controller writing into store.
func NewPrefix[T any, K comparable](store *liststate.Store[T, K], opts ...Option) *Prefix[T, K] {
	p := &Prefix[T, K]{
		settings: resolveSettings(opts),
		store:    store,
	}
	p.log = p.log.WithFields(logger.Fields(logger.FieldController, "prefix"))
	return p
}

// Start binds src and reads from it until it terminates. A loop started
// earlier is abandoned and its source aborted.
func (p *Prefix[T, K]) Start(src source.Source[T]) {
	p.sched.Schedule(func() { p.start(src) })
}

// Stop aborts the bound source. Items already prepended stay.
func (p *Prefix[T, K]) Stop() {
	p.sched.Schedule(p.stop)
}

// Running reports whether the read loop is active.
func (p *Prefix[T, K]) Running() bool { return p.running.Load() }

func (p *Prefix[T, K]) start(src source.Source[T]) {
	if p.src != nil {
		p.stop()
	}
	if src == nil {
		return
	}
	p.src = src
	loop := &prefixLoop[T]{src: src}
	p.loop = loop
	p.running.Store(true)
	p.log.Debug("Prefix source bound")
	p.read(loop)
}

func (p *Prefix[T, K]) read(loop *prefixLoop[T]) {
	loop.src(nil, func(end error, item T) {
		p.sched.Schedule(func() { p.onReply(loop, end, item) })
	})
}

func (p *Prefix[T, K]) onReply(loop *prefixLoop[T], end error, item T) {
	if p.loop != loop {
		return
	}

	if end != nil {
		reason := "end"
		if !source.IsEnd(end) {
			reason = "error"
			p.log.Warn("Prefix source failed, loop stopped", logger.ErrorFields("prefix_read", errors.SourceFailed("prefix", end)))
		}
		p.metrics.RecordTermination(context.Background(), p.name, "prefix", reason)
		p.log.Debug("Prefix loop finished", logger.Fields("received", loop.received))
		p.loop = nil
		p.running.Store(false)
		return
	}

	loop.received++
	p.store.Prepend(item)
	p.metrics.RecordItem(context.Background(), p.name, "prefixed")
	p.read(loop)
}

func (p *Prefix[T, K]) stop() {
	if p.src != nil {
		source.Abort(p.src, source.ErrEnd)
	}
	p.src = nil
	p.loop = nil
	p.running.Store(false)
}
