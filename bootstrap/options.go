package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/pullfeed/logger"
)

// Option adjusts how NewApp builds the App.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) appOptions {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o appOptions) timeoutOr(d time.Duration) time.Duration {
	if o.gracefulTimeout > 0 {
		return o.gracefulTimeout
	}
	return d
}

func (o appOptions) summaryOr(w io.Writer) io.Writer {
	if o.summaryOut != nil {
		return o.summaryOut
	}
	return w
}

// WithLogger makes the App log through l instead of initializing the
// global logger from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds how long shutdown may take. Non-positive
// values keep the 15s default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithSummaryOutput redirects the startup summary, which goes to stdout by
// default. Pass io.Discard when a terminal UI owns the screen.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
