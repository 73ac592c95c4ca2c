package feed

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/observability"
	"github.com/kbukum/pullfeed/sched"
	"github.com/kbukum/pullfeed/source"
)

const instrumentationName = "github.com/kbukum/pullfeed/feed"

type settings struct {
	name         string
	sched        sched.Scheduler
	log          *logger.Logger
	metrics      *observability.FeedMetrics
	tracer       trace.Tracer
	presentation Presentation

	// Held untyped so Option stays non-generic; Feed asserts them to
	// source.Factory[T] at construction.
	scrollFactory any
	prefixFactory any
}

// Option configures a Feed or a standalone controller.
type Option func(*settings)

// WithName sets the name used in logs, metrics and component registration.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithScheduler sets the scheduler every callback runs on. Defaults to a
// fresh sched.Serial.
func WithScheduler(sc sched.Scheduler) Option {
	return func(s *settings) { s.sched = sc }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.FeedMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTracer sets the tracer used for pull-session spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithPresentation sets the opaque presentation config forwarded to surfaces.
func WithPresentation(p Presentation) Option {
	return func(s *settings) { s.presentation = p }
}

// WithScrollSource sets the initial scroll source factory of a Feed.
func WithScrollSource[T any](factory source.Factory[T]) Option {
	return func(s *settings) { s.scrollFactory = factory }
}

// WithPrefixSource sets the initial prefix source factory of a Feed.
func WithPrefixSource[T any](factory source.Factory[T]) Option {
	return func(s *settings) { s.prefixFactory = factory }
}

func resolveSettings(opts []Option) settings {
	s := settings{name: "feed"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.sched == nil {
		s.sched = sched.NewSerial()
	}
	if s.log == nil {
		s.log = logger.WithComponent(s.name)
	}
	if s.metrics == nil {
		m, err := observability.NewFeedMetrics(observability.Meter(instrumentationName))
		if err != nil {
			s.log.Warn("Feed metrics disabled", logger.ErrorFields("new_feed_metrics", err))
		}
		s.metrics = m
	}
	if s.tracer == nil {
		s.tracer = observability.Tracer(instrumentationName)
	}
	return s
}
