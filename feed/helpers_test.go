package feed

import (
	"testing"

	"github.com/kbukum/pullfeed/liststate"
	"github.com/kbukum/pullfeed/logger"
)

type item struct {
	ID  string
	Rev int
}

func itemKey(i item) string { return i.ID }

func items(ids ...string) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id}
	}
	return out
}

func ids(list []item) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

func equalIDs(got []item, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func newStore(t *testing.T) *liststate.Store[item, string] {
	t.Helper()
	s, err := liststate.New[item, string](itemKey)
	if err != nil {
		t.Fatalf("liststate.New: %v", err)
	}
	return s
}

func newScroll(t *testing.T, initial, pull int) (*Scroll[item, string], *liststate.Store[item, string]) {
	t.Helper()
	store := newStore(t)
	sc := NewScroll(store, Config{InitialAmount: initial, PullAmount: pull}, WithLogger(logger.Nop()))
	return sc, store
}

func newPrefix(t *testing.T) (*Prefix[item, string], *liststate.Store[item, string]) {
	t.Helper()
	store := newStore(t)
	return NewPrefix(store, WithLogger(logger.Nop())), store
}
