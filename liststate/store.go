package liststate

import (
	"sync"

	"github.com/kbukum/pullfeed/errors"
)

// KeyFunc extracts the identity key of an item. Two items are the same
// entity iff their keys are equal.
type KeyFunc[T any, K comparable] func(item T) K

// Listener is notified after every committed mutation.
type Listener[T any] func(change Change[T], snap Snapshot[T])

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// Store holds the ordered item list, the "more data may exist" flag and the
// change token. Writers are expected to be serialized by the caller (the
// feed scheduler); readers may call Snapshot from any goroutine.
//
// The items slice is copy-on-write: a snapshot handed out is never written
// to again, so surfaces comparing by reference stay correct.
type Store[T any, K comparable] struct {
	key KeyFunc[T, K]

	mu      sync.RWMutex
	items   []T
	more    bool
	token   Token
	version uint64

	subMu   sync.Mutex
	subs    []subscription[T]
	nextSub uint64
}

// New creates an empty store with moreAvailable set.
func New[T any, K comparable](key KeyFunc[T, K]) (*Store[T, K], error) {
	if key == nil {
		return nil, errors.MissingField("key")
	}
	return &Store[T, K]{key: key, more: true}, nil
}

// Key returns the identity key of item.
func (s *Store[T, K]) Key(item T) K {
	return s.key(item)
}

// Snapshot returns the current immutable view.
func (s *Store[T, K]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store[T, K]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:         s.items,
		MoreAvailable: s.more,
		Token:         s.token,
		Version:       s.version,
	}
}

// Len returns the number of committed items.
func (s *Store[T, K]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// MoreAvailable reports whether the scroll source may still have items.
func (s *Store[T, K]) MoreAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.more
}

// IndexOf returns the position of the first item whose key equals k, or -1.
func (s *Store[T, K]) IndexOf(k K) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, item := range s.items {
		if s.key(item) == k {
			return i
		}
	}
	return -1
}

// Contains reports whether an item with key k is committed.
func (s *Store[T, K]) Contains(k K) bool {
	return s.IndexOf(k) >= 0
}

// Replace overwrites the item at index. It reports false when index is out
// of range.
func (s *Store[T, K]) Replace(index int, item T) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return false
	}
	next := make([]T, len(s.items))
	copy(next, s.items)
	next[index] = item
	s.items = next
	change := s.commitLocked(ChangeUpdate, index, []T{item})
	s.mu.Unlock()

	s.notify(change)
	return true
}

// Append adds items to the tail in order and sets moreAvailable. An empty
// batch still commits the flag and flips the token.
func (s *Store[T, K]) Append(items []T, more bool) {
	s.mu.Lock()
	index := len(s.items)
	kind := ChangeAppend
	if len(items) > 0 {
		s.items = append(s.items[:index:index], items...)
	} else {
		kind = ChangeMore
	}
	s.more = more
	change := s.commitLocked(kind, index, items)
	s.mu.Unlock()

	s.notify(change)
}

// Prepend inserts item at position 0.
func (s *Store[T, K]) Prepend(item T) {
	s.mu.Lock()
	next := make([]T, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	s.items = next
	change := s.commitLocked(ChangePrepend, 0, []T{item})
	s.mu.Unlock()

	s.notify(change)
}

// SetMoreAvailable changes only the flag. It is a no-op when the flag
// already has that value.
func (s *Store[T, K]) SetMoreAvailable(more bool) {
	s.mu.Lock()
	if s.more == more {
		s.mu.Unlock()
		return
	}
	s.more = more
	change := s.commitLocked(ChangeMore, len(s.items), nil)
	s.mu.Unlock()

	s.notify(change)
}

// Reset empties the list and sets moreAvailable.
func (s *Store[T, K]) Reset() {
	s.mu.Lock()
	s.items = nil
	s.more = true
	change := s.commitLocked(ChangeReset, 0, nil)
	s.mu.Unlock()

	s.notify(change)
}

func (s *Store[T, K]) commitLocked(kind ChangeKind, index int, items []T) committed[T] {
	s.token = s.token.Next()
	s.version++
	return committed[T]{
		change: Change[T]{
			Kind:          kind,
			Index:         index,
			Items:         items,
			MoreAvailable: s.more,
			Token:         s.token,
			Version:       s.version,
		},
		snap: s.snapshotLocked(),
	}
}

type committed[T any] struct {
	change Change[T]
	snap   Snapshot[T]
}

// Subscribe registers fn for every subsequent change. The returned function
// removes the subscription.
func (s *Store[T, K]) Subscribe(fn Listener[T]) (cancel func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store[T, K]) notify(c committed[T]) {
	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(c.change, c.snap)
	}
}
