// Package sched runs feed callbacks one at a time.
//
// Every controller entry point and every source reply is posted as a task
// to a Scheduler. Tasks never run concurrently with each other, and a task
// posted from inside another task runs after it returns, so a source that
// replies synchronously is driven by a loop instead of a growing call stack.
package sched

import "sync"

// Scheduler executes tasks serially.
type Scheduler interface {
	Schedule(task func())
}

// Func adapts a host-provided queue, such as a UI thread's update queue,
// to Scheduler. The host must run the posted functions serially.
type Func func(task func())

// Schedule posts task to the wrapped queue.
func (f Func) Schedule(task func()) { f(task) }

// Serial is a goroutine-safe trampoline. The first caller that finds it
// idle runs the task inline and keeps draining whatever gets posted while
// it works; callers that find it busy only enqueue.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// NewSerial creates an idle trampoline.
func NewSerial() *Serial {
	return &Serial{}
}

// Schedule runs task now if the trampoline is idle, otherwise queues it.
func (s *Serial) Schedule(task func()) {
	s.mu.Lock()
	s.queue = append(s.queue, task)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.drain()
}

func (s *Serial) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		task()
	}
}

// Pending returns the number of queued tasks.
func (s *Serial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
