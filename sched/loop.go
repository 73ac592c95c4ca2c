package sched

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/pullfeed/component"
	"github.com/kbukum/pullfeed/logger"
)

// Loop runs tasks on a dedicated goroutine. Schedule never blocks: tasks
// are appended to an unbounded queue and the loop is woken up.
type Loop struct {
	name string
	log  *logger.Logger

	mu      sync.Mutex
	queue   []func()
	started bool
	stopped bool
	ran     uint64

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// ensure Loop satisfies component.Component.
var _ component.Component = (*Loop)(nil)

// NewLoop creates a loop. Tasks posted before Start are kept and run once
// the loop starts.
func NewLoop(name string) *Loop {
	return &Loop{
		name: name,
		log:  logger.WithComponent("sched." + name),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Name returns the component name.
func (l *Loop) Name() string { return l.name }

// Schedule queues task. Tasks posted after Stop are dropped, including
// those posted by tasks Stop is still draining.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return fmt.Errorf("loop %s already started", l.name)
	}
	l.started = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run()
	}()
	return nil
}

// Stop refuses further tasks, lets the loop finish the tasks already
// queued, and waits for it to exit or for ctx to end. A loop that was
// never started discards its queue.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	pending := len(l.queue)
	if !l.started {
		l.queue = nil
	}
	close(l.done)
	l.mu.Unlock()

	exited := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-ctx.Done():
		return fmt.Errorf("loop %s: %w with tasks still queued", l.name, ctx.Err())
	}
	l.log.Debug("Loop stopped", logger.Fields("pending_at_stop", pending))
	return nil
}

// Health reports whether the loop is running.
func (l *Loop) Health(_ context.Context) component.Health {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := component.Health{Name: l.name, Status: component.StatusHealthy}
	switch {
	case l.stopped:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	case !l.started:
		h.Status = component.StatusDegraded
		h.Message = "not started"
	default:
		h.Message = fmt.Sprintf("%d tasks run, %d queued", l.ran, len(l.queue))
	}
	return h
}

func (l *Loop) run() {
	for {
		select {
		case <-l.done:
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

// drain runs queued tasks until the queue is empty.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.ran++
		l.mu.Unlock()

		task()
	}
}
