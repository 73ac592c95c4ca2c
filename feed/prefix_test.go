package feed

import (
	"fmt"
	"testing"

	"github.com/kbukum/pullfeed/source/sourcetest"
)

func TestPrefix_PrependsInReverseArrivalOrder(t *testing.T) {
	p, store := newPrefix(t)
	store.Append(items("s1", "s2"), true)

	src := sourcetest.NewManual[item](t)
	p.Start(src.Source())
	src.ReplyAll(items("x", "y", "z")...)

	if !equalIDs(store.Snapshot().Items, "z", "y", "x", "s1", "s2") {
		t.Errorf("items = %v, want [z y x s1 s2]", ids(store.Snapshot().Items))
	}
	if !src.Pending() || !p.Running() {
		t.Error("the loop should request the next item after each reply")
	}
}

func TestPrefix_IgnoresMoreAvailable(t *testing.T) {
	p, store := newPrefix(t)
	store.Append(nil, false)

	src := sourcetest.NewManual[item](t)
	p.Start(src.Source())
	src.Reply(item{ID: "live"})

	if !equalIDs(store.Snapshot().Items, "live") {
		t.Errorf("items = %v", ids(store.Snapshot().Items))
	}
	if store.MoreAvailable() {
		t.Error("prefix items must not touch moreAvailable")
	}
}

// Prefix items are not deduplicated against the list; a key already
// present appears twice.
func TestPrefix_NoDeduplication(t *testing.T) {
	p, store := newPrefix(t)
	store.Append(items("a", "b"), true)

	src := sourcetest.NewManual[item](t)
	p.Start(src.Source())
	src.Reply(item{ID: "a", Rev: 9})

	snap := store.Snapshot()
	if !equalIDs(snap.Items, "a", "a", "b") {
		t.Fatalf("items = %v, want [a a b]", ids(snap.Items))
	}
	if snap.Items[0].Rev != 9 || snap.Items[1].Rev != 0 {
		t.Errorf("revs = %d,%d", snap.Items[0].Rev, snap.Items[1].Rev)
	}
}

func TestPrefix_Termination(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean end", nil},
		{"error", fmt.Errorf("socket closed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store := newPrefix(t)
			src := sourcetest.NewManual[item](t)
			p.Start(src.Source())
			src.Reply(item{ID: "x"})
			src.End(tt.err)

			if p.Running() {
				t.Error("loop should stop on termination")
			}
			if src.Pending() || src.Requests() != 2 {
				t.Errorf("requests=%d pending=%v, want no retry", src.Requests(), src.Pending())
			}
			if !equalIDs(store.Snapshot().Items, "x") {
				t.Errorf("items = %v", ids(store.Snapshot().Items))
			}
		})
	}
}

func TestPrefix_StopKeepsItems(t *testing.T) {
	p, store := newPrefix(t)
	src := sourcetest.NewManual[item](t)
	p.Start(src.Source())
	src.Reply(item{ID: "x"})

	p.Stop()
	if p.Running() {
		t.Error("Running after Stop")
	}
	if len(src.Aborts()) != 1 {
		t.Errorf("aborts = %d, want 1", len(src.Aborts()))
	}

	src.Reply(item{ID: "late"})
	if !equalIDs(store.Snapshot().Items, "x") {
		t.Errorf("items = %v, want [x] with the late reply dropped", ids(store.Snapshot().Items))
	}
}

func TestPrefix_RestartAbandonsPreviousLoop(t *testing.T) {
	p, store := newPrefix(t)
	first := sourcetest.NewManual[item](t)
	second := sourcetest.NewManual[item](t)

	p.Start(first.Source())
	p.Start(second.Source())
	if len(first.Aborts()) != 1 {
		t.Errorf("first aborts = %d, want 1", len(first.Aborts()))
	}

	first.Reply(item{ID: "stale"})
	second.Reply(item{ID: "fresh"})
	if !equalIDs(store.Snapshot().Items, "fresh") {
		t.Errorf("items = %v, want [fresh]", ids(store.Snapshot().Items))
	}
}

func TestPrefix_AlongsideScroll(t *testing.T) {
	store := newStore(t)
	sc := NewScroll(store, Config{InitialAmount: 2, PullAmount: 2})
	p := NewPrefix(store)

	scroll := sourcetest.NewManual[item](t)
	live := sourcetest.NewManual[item](t)
	sc.Start(scroll.Source())
	p.Start(live.Source())

	scroll.Reply(item{ID: "a"})
	live.Reply(item{ID: "p1"})
	scroll.Reply(item{ID: "b"})
	live.Reply(item{ID: "p2"})

	if !equalIDs(store.Snapshot().Items, "p2", "p1", "a", "b") {
		t.Errorf("items = %v, want [p2 p1 a b]", ids(store.Snapshot().Items))
	}
}
