package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/pullfeed/component"
	"github.com/kbukum/pullfeed/errors"
	"github.com/kbukum/pullfeed/liststate"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/source"
)

// Feed owns one list store, a scroll controller and a prefix controller
// sharing one scheduler, and wires them to the host lifecycle: bind on
// mount, rebind on source change, unbind and reset on unmount.
type Feed[T any, K comparable] struct {
	settings
	cfg    Config
	store  *liststate.Store[T, K]
	scroll *Scroll[T, K]
	prefix *Prefix[T, K]

	mu            sync.Mutex
	mounted       bool
	scrollFactory source.Factory[T]
	prefixFactory source.Factory[T]
}

// ensure Feed satisfies component.Component.
var _ component.Component = (*Feed[struct{}, int])(nil)

// New creates an unmounted feed. key extracts item identity and is required.
func New[T any, K comparable](cfg Config, key liststate.KeyFunc[T, K], opts ...Option) (*Feed[T, K], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := liststate.New(key)
	if err != nil {
		return nil, err
	}

	s := resolveSettings(opts)
	scrollFactory, err := typedFactory[T]("scroll_source", s.scrollFactory)
	if err != nil {
		return nil, err
	}
	prefixFactory, err := typedFactory[T]("prefix_source", s.prefixFactory)
	if err != nil {
		return nil, err
	}
	s.scrollFactory, s.prefixFactory = nil, nil
	// Controllers share the resolved settings, scheduler included.
	shared := func(dst *settings) { *dst = s }

	return &Feed[T, K]{
		settings:      s,
		cfg:           cfg,
		store:         store,
		scroll:        NewScroll(store, cfg, shared),
		prefix:        NewPrefix(store, shared),
		scrollFactory: scrollFactory,
		prefixFactory: prefixFactory,
	}, nil
}

func typedFactory[T any](field string, f any) (source.Factory[T], error) {
	if f == nil {
		return nil, nil
	}
	typed, ok := f.(source.Factory[T])
	if !ok {
		return nil, errors.InvalidInput(field, fmt.Sprintf("factory type %T does not produce the feed's item type", f))
	}
	return typed, nil
}

// Store returns the list store.
func (f *Feed[T, K]) Store() *liststate.Store[T, K] { return f.store }

// Scroll returns the scroll controller.
func (f *Feed[T, K]) Scroll() *Scroll[T, K] { return f.scroll }

// Prefix returns the prefix controller.
func (f *Feed[T, K]) Prefix() *Prefix[T, K] { return f.prefix }

// Config returns the effective batch configuration.
func (f *Feed[T, K]) Config() Config { return f.cfg }

// Snapshot returns the current list state.
func (f *Feed[T, K]) Snapshot() liststate.Snapshot[T] { return f.store.Snapshot() }

// Mounted reports whether the feed is mounted.
func (f *Feed[T, K]) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

// SetScrollSource sets the scroll source factory. On a mounted feed the
// scroll controller is rebound to a fresh source immediately.
func (f *Feed[T, K]) SetScrollSource(factory source.Factory[T]) {
	f.mu.Lock()
	f.scrollFactory = factory
	mounted := f.mounted
	f.mu.Unlock()

	if mounted && factory != nil {
		f.log.Debug("Scroll source changed, rebinding")
		f.scroll.Start(factory())
	}
}

// SetPrefixSource sets the prefix source factory. On a mounted feed the
// previous prefix source is aborted and a fresh one bound.
func (f *Feed[T, K]) SetPrefixSource(factory source.Factory[T]) {
	f.mu.Lock()
	f.prefixFactory = factory
	mounted := f.mounted
	f.mu.Unlock()

	if !mounted {
		return
	}
	f.log.Debug("Prefix source changed, rebinding")
	if factory == nil {
		f.prefix.Stop()
		return
	}
	f.prefix.Start(factory())
}

// Mount binds the configured sources. Mounting twice is a no-op.
func (f *Feed[T, K]) Mount() {
	f.mu.Lock()
	if f.mounted {
		f.mu.Unlock()
		return
	}
	f.mounted = true
	scroll, prefix := f.scrollFactory, f.prefixFactory
	f.mu.Unlock()

	f.log.Info("Feed mounted", logger.Fields(
		"initial_amount", f.cfg.InitialAmount,
		"pull_amount", f.cfg.PullAmount,
		"prefix", prefix != nil,
	))
	if scroll != nil {
		f.scroll.Start(scroll())
	}
	if prefix != nil {
		f.prefix.Start(prefix())
	}
}

// Unmount stops both controllers and resets the list. The stops are posted
// to the scheduler; use Stop to wait for them.
func (f *Feed[T, K]) Unmount() {
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return
	}
	f.mounted = false
	f.mu.Unlock()

	f.scroll.Stop()
	f.prefix.Stop()
	f.log.Info("Feed unmounted")
}

// OnEndReached forwards an end-of-content signal to the scroll controller.
func (f *Feed[T, K]) OnEndReached(info EndReachedInfo) {
	f.scroll.OnEndReached(info)
}

// Attach renders the current state on s and re-renders after every
// change. The returned function detaches s.
func (f *Feed[T, K]) Attach(s Surface[T]) (detach func()) {
	var (
		mu       sync.Mutex
		cancel   func()
		detached bool
	)
	f.sched.Schedule(func() {
		mu.Lock()
		if detached {
			mu.Unlock()
			return
		}
		cancel = f.store.Subscribe(func(c liststate.Change[T], snap liststate.Snapshot[T]) {
			s.Render(f.props(snap, &c))
		})
		mu.Unlock()

		s.Render(f.props(f.store.Snapshot(), nil))
	})
	return func() {
		mu.Lock()
		defer mu.Unlock()
		detached = true
		if cancel != nil {
			cancel()
		}
	}
}

func (f *Feed[T, K]) props(snap liststate.Snapshot[T], c *liststate.Change[T]) RenderProps[T] {
	return RenderProps[T]{
		Items:        snap.Items,
		Token:        snap.Token,
		Version:      snap.Version,
		ShowFooter:   snap.MoreAvailable,
		Change:       c,
		OnEndReached: f.OnEndReached,
		Presentation: f.presentation,
	}
}

// Name returns the component name.
func (f *Feed[T, K]) Name() string { return f.name }

// Start mounts the feed.
func (f *Feed[T, K]) Start(_ context.Context) error {
	f.Mount()
	return nil
}

// Stop unmounts the feed and waits until both controllers have stopped on
// the scheduler, or until ctx ends. It must not be called from a task
// running on the feed's scheduler.
func (f *Feed[T, K]) Stop(ctx context.Context) error {
	f.Unmount()

	done := make(chan struct{})
	f.sched.Schedule(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("feed %s: unmount not finished: %w", f.name, ctx.Err())
	}
}

// Health reports the feed's pull state.
func (f *Feed[T, K]) Health(_ context.Context) component.Health {
	snap := f.store.Snapshot()
	h := component.Health{
		Name:   f.name,
		Status: component.StatusHealthy,
		Message: fmt.Sprintf("%d items, more_available=%v, in_flight=%v",
			snap.Len(), snap.MoreAvailable, f.scroll.InFlight()),
	}
	if !f.Mounted() {
		h.Status = component.StatusDegraded
		h.Message = "not mounted"
	}
	return h
}

// Describe returns summary info for startup output.
func (f *Feed[T, K]) Describe() component.Description {
	return component.Description{
		Name:    "Feed " + f.name,
		Type:    "feed",
		Details: fmt.Sprintf("initial=%d pull=%d", f.cfg.InitialAmount, f.cfg.PullAmount),
	}
}
