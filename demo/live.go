package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/pullfeed/component"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/source"
)

// Live publishes a new post every interval to whichever prefix stream is
// currently bound. Each Factory call starts a fresh stream; posts published
// while no stream is bound are dropped.
type Live struct {
	interval time.Duration
	gen      *generator
	log      *logger.Logger

	mu        sync.Mutex
	current   *source.Pushable[Post]
	published int
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ component.Component = (*Live)(nil)

// NewLive creates a live post publisher.
func NewLive(cfg Config) *Live {
	cfg.ApplyDefaults()
	return &Live{
		interval: cfg.LiveInterval,
		gen:      newGenerator(cfg.Seed+1, time.Now),
		log:      logger.WithComponent("demo-live"),
	}
}

// Factory returns the prefix source factory.
func (l *Live) Factory() source.Factory[Post] {
	return func() source.Source[Post] {
		p := source.NewPushable[Post]()
		l.mu.Lock()
		prev := l.current
		l.current = p
		l.mu.Unlock()
		if prev != nil {
			prev.End(nil)
		}
		return p.Source()
	}
}

// Publish pushes one post now. It reports false when no stream accepted it.
func (l *Live) Publish() bool {
	post := l.gen.post()
	post.Live = true

	l.mu.Lock()
	cur := l.current
	l.mu.Unlock()
	if cur == nil || !cur.Push(post) {
		return false
	}

	l.mu.Lock()
	l.published++
	l.mu.Unlock()
	l.log.Debug("Live post published", logger.Fields("id", post.ID))
	return true
}

// Published returns how many posts were accepted by a stream.
func (l *Live) Published() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.published
}

func (l *Live) Name() string { return "demo-live" }

// Start begins publishing on a ticker.
func (l *Live) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return fmt.Errorf("demo-live already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Publish()
			}
		}
	}(l.done)
	return nil
}

// Stop halts publishing and ends the bound stream.
func (l *Live) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done, cur := l.cancel, l.done, l.current
	l.cancel, l.current = nil, nil
	l.mu.Unlock()

	if cur != nil {
		cur.End(nil)
	}
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Live) Health(_ context.Context) component.Health {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := component.Health{Name: l.Name(), Status: component.StatusHealthy,
		Message: fmt.Sprintf("%d published", l.published)}
	if l.cancel == nil {
		h.Status = component.StatusDegraded
		h.Message = "not publishing"
	}
	return h
}
