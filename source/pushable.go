package source

import "sync"

// Pushable is a source fed from the outside. Items pushed while nobody is
// reading are queued; a read with an empty queue waits for the next Push
// or End.
type Pushable[T any] struct {
	mu      sync.Mutex
	queue   []T
	pending Callback[T]
	ended   error
}

// NewPushable creates an empty pushable source.
func NewPushable[T any]() *Pushable[T] {
	return &Pushable[T]{}
}

// Push delivers item to a waiting reader or queues it. Pushes after End
// are dropped and reported as false.
func (p *Pushable[T]) Push(item T) bool {
	p.mu.Lock()
	if p.ended != nil {
		p.mu.Unlock()
		return false
	}
	if cb := p.pending; cb != nil {
		p.pending = nil
		p.mu.Unlock()
		cb(nil, item)
		return true
	}
	p.queue = append(p.queue, item)
	p.mu.Unlock()
	return true
}

// End terminates the stream once the queue drains. A nil err is a clean end.
func (p *Pushable[T]) End(err error) {
	if err == nil {
		err = ErrEnd
	}
	p.mu.Lock()
	if p.ended != nil {
		p.mu.Unlock()
		return
	}
	p.ended = err
	cb := p.pending
	if len(p.queue) > 0 {
		cb = nil
	}
	if cb != nil {
		p.pending = nil
	}
	p.mu.Unlock()

	if cb != nil {
		cb(err, zero[T]())
	}
}

// Len returns the number of queued items.
func (p *Pushable[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Waiting reports whether a reader is blocked on this source.
func (p *Pushable[T]) Waiting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Source returns the read side.
func (p *Pushable[T]) Source() Source[T] {
	return p.read
}

func (p *Pushable[T]) read(abort error, cb Callback[T]) {
	p.mu.Lock()
	if abort != nil {
		if p.ended == nil {
			p.ended = abort
		}
		p.queue = nil
		waiting := p.pending
		p.pending = nil
		p.mu.Unlock()
		if waiting != nil {
			waiting(ErrEnd, zero[T]())
		}
		cb(ErrEnd, zero[T]())
		return
	}
	if len(p.queue) > 0 {
		item := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		cb(nil, item)
		return
	}
	if p.ended != nil {
		end := p.ended
		p.mu.Unlock()
		cb(end, zero[T]())
		return
	}
	p.pending = cb
	p.mu.Unlock()
}
