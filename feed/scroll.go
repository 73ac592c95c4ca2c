package feed

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pullfeed/errors"
	"github.com/kbukum/pullfeed/liststate"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/observability"
	"github.com/kbukum/pullfeed/source"
)

// Scroll turns "more items needed" signals into batched pulls against the
// scroll source. At most one pull session is in flight; a pull requested
// while busy is remembered (last amount wins) and started when the current
// session finalizes.
//
// All exported methods post to the scheduler and return immediately.
type Scroll[T any, K comparable] struct {
	settings
	cfg   Config
	store *liststate.Store[T, K]

	// Owned by the scheduler. gen counts Start calls so a reply can be
	// traced to the binding its request went to.
	src     source.Source[T]
	gen     uint64
	session *pullSession[T, K]
	queued  int

	// Mirrors for readers outside the scheduler.
	inFlight  atomic.Bool
	queuedAmt atomic.Int64
	bound     atomic.Bool
}

type pullSession[T any, K comparable] struct {
	amount  int
	reqGen  uint64 // binding the outstanding request went to
	buffer  []T
	index   map[K]int
	started time.Time
	span    trace.Span
}

// NewScroll creates a scroll controller writing into store.
func NewScroll[T any, K comparable](store *liststate.Store[T, K], cfg Config, opts ...Option) *Scroll[T, K] {
	cfg.ApplyDefaults()
	s := &Scroll[T, K]{
		settings: resolveSettings(opts),
		cfg:      cfg,
		store:    store,
	}
	s.log = s.log.WithFields(logger.Fields(logger.FieldController, "scroll"))
	return s
}

// Start binds src and, if more items may exist, begins an initial pull of
// InitialAmount. Binding while a pull is in flight redirects the session's
// remaining requests to src; items already buffered are kept, and the
// initial pull is queued behind the session. If the previous source then
// ends the session, the list is not marked exhausted: the queued pull runs
// against src instead.
func (s *Scroll[T, K]) Start(src source.Source[T]) {
	s.sched.Schedule(func() { s.start(src) })
}

// OnEndReached requests PullAmount more items if the source has not ended.
func (s *Scroll[T, K]) OnEndReached(info EndReachedInfo) {
	s.sched.Schedule(func() { s.onEndReached(info) })
}

// Pull requests up to amount items.
func (s *Scroll[T, K]) Pull(amount int) {
	s.sched.Schedule(func() { s.pull(amount) })
}

// Stop aborts the bound source, drops any session and resets the list to
// empty with moreAvailable set.
func (s *Scroll[T, K]) Stop() {
	s.sched.Schedule(s.stop)
}

// InFlight reports whether a pull session is active.
func (s *Scroll[T, K]) InFlight() bool { return s.inFlight.Load() }

// QueuedAmount returns the follow-up pull size, 0 if none is queued.
func (s *Scroll[T, K]) QueuedAmount() int { return int(s.queuedAmt.Load()) }

// Bound reports whether a source is bound.
func (s *Scroll[T, K]) Bound() bool { return s.bound.Load() }

func (s *Scroll[T, K]) start(src source.Source[T]) {
	s.src = src
	s.gen++
	s.bound.Store(src != nil)
	if src == nil {
		return
	}

	// A fresh source re-arms an exhausted list.
	if s.session == nil && !s.store.MoreAvailable() {
		s.store.SetMoreAvailable(true)
	}
	s.log.Debug("Scroll source bound", logger.Fields("in_flight", s.session != nil))

	if s.store.MoreAvailable() {
		s.pull(s.cfg.InitialAmount)
	}
}

func (s *Scroll[T, K]) onEndReached(info EndReachedInfo) {
	if !s.store.MoreAvailable() {
		s.log.Debug("End reached ignored, source exhausted", logger.Fields("distance_from_end", info.DistanceFromEnd))
		return
	}
	s.pull(s.cfg.PullAmount)
}

func (s *Scroll[T, K]) pull(amount int) {
	if s.src == nil || amount <= 0 {
		return
	}
	if s.session != nil {
		s.setQueued(amount)
		s.metrics.RecordPull(context.Background(), s.name, amount, true)
		s.log.Debug("Pull queued behind in-flight session", logger.Fields("amount", amount))
		return
	}

	_, span := s.tracer.Start(context.Background(), observability.SpanScrollPull,
		trace.WithAttributes(
			attribute.String(observability.AttrFeed, s.name),
			attribute.Int(observability.AttrAmount, amount),
		),
	)
	sess := &pullSession[T, K]{
		amount:  amount,
		index:   make(map[K]int),
		started: time.Now(),
		span:    span,
	}
	s.session = sess
	s.inFlight.Store(true)
	s.metrics.RecordPull(context.Background(), s.name, amount, false)
	s.log.Debug("Pull started", logger.Fields("amount", amount))

	s.request(sess)
}

func (s *Scroll[T, K]) request(sess *pullSession[T, K]) {
	if s.src == nil {
		// Unbound mid-session: commit what arrived, nothing says the list ended.
		s.finalize(sess, true)
		return
	}
	sess.reqGen = s.gen
	s.src(nil, func(end error, item T) {
		s.sched.Schedule(func() { s.onReply(sess, end, item) })
	})
}

func (s *Scroll[T, K]) onReply(sess *pullSession[T, K], end error, item T) {
	if s.session != sess {
		s.log.Debug("Reply for a closed session discarded")
		return
	}

	if end != nil && sess.reqGen != s.gen {
		s.log.Debug("Previous source ended after rebind, list stays open", logger.ErrorFields("pull", end))
		s.metrics.RecordTermination(context.Background(), s.name, "scroll", "rebound")
		s.finalize(sess, true)
		return
	}
	if end != nil {
		reason := "end"
		if !source.IsEnd(end) {
			reason = "error"
			err := errors.SourceFailed("scroll", end)
			sess.span.RecordError(err)
			sess.span.SetStatus(codes.Error, end.Error())
			s.log.Warn("Scroll source failed, treating as end of stream", logger.ErrorFields("pull", err))
		}
		s.metrics.RecordTermination(context.Background(), s.name, "scroll", reason)
		s.finalize(sess, false)
		return
	}

	k := s.store.Key(item)
	switch idx := s.store.IndexOf(k); {
	case idx >= 0:
		// Correction of an item the user can already see: commit it now.
		s.store.Replace(idx, item)
		s.metrics.RecordItem(context.Background(), s.name, "corrected")
	default:
		if bidx, ok := sess.index[k]; ok {
			sess.buffer[bidx] = item
			s.metrics.RecordItem(context.Background(), s.name, "rebuffered")
		} else {
			sess.index[k] = len(sess.buffer)
			sess.buffer = append(sess.buffer, item)
			s.metrics.RecordItem(context.Background(), s.name, "buffered")
		}
	}

	switch {
	case len(sess.buffer) >= sess.amount:
		s.finalize(sess, true)
	case s.store.MoreAvailable():
		s.request(sess)
	default:
		// Nothing should have marked the list exhausted mid-session; close
		// it rather than leave it in flight with no outstanding request.
		s.finalize(sess, false)
	}
}

func (s *Scroll[T, K]) finalize(sess *pullSession[T, K], more bool) {
	s.session = nil
	s.inFlight.Store(false)

	s.store.Append(sess.buffer, more)

	elapsed := time.Since(sess.started)
	s.metrics.RecordBatch(context.Background(), s.name, len(sess.buffer), more, elapsed)
	sess.span.SetAttributes(
		attribute.Int(observability.AttrCommitted, len(sess.buffer)),
		attribute.Bool(observability.AttrMoreAvailable, more),
	)
	sess.span.End()
	s.log.Debug("Pull committed", logger.MergeWithDuration(logger.Fields(
		"committed", len(sess.buffer),
		"amount", sess.amount,
		"more_available", more,
	), elapsed))

	// A queued pull always runs, even after a termination: a source that has
	// ended answers it with its end again.
	if queued := s.queued; queued > 0 {
		s.setQueued(0)
		s.pull(queued)
	}
}

func (s *Scroll[T, K]) stop() {
	if s.src != nil {
		source.Abort(s.src, source.ErrEnd)
	}
	s.src = nil
	s.bound.Store(false)

	if sess := s.session; sess != nil {
		sess.span.SetAttributes(attribute.Bool("stopped", true))
		sess.span.End()
		s.session = nil
		s.inFlight.Store(false)
	}
	s.setQueued(0)

	s.store.Reset()
	s.log.Debug("Scroll controller stopped")
}

func (s *Scroll[T, K]) setQueued(amount int) {
	s.queued = amount
	s.queuedAmt.Store(int64(amount))
}
