package feedhttp

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/kbukum/pullfeed/liststate"
	"github.com/kbukum/pullfeed/sse"
)

// EventTypeSnapshot is the first event on every stream: the full list at
// the moment the client subscribed. Change events carry their ChangeKind
// as the event type.
const EventTypeSnapshot = "snapshot"

// NewClientID returns a stream client ID for the named feed.
func NewClientID(feedName string) string {
	return "feed:" + feedName + ":" + uuid.NewString()
}

// ClientPattern matches every stream client of the named feed.
func ClientPattern(feedName string) string {
	return "feed:" + feedName + ":*"
}

// ChangeEvent encodes c. The event ID is the store version, so a client
// can drop change events at or below the version of its snapshot.
func ChangeEvent[T any](c liststate.Change[T]) (sse.Event, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return sse.Event{}, err
	}
	return sse.Event{
		ID:   strconv.FormatUint(c.Version, 10),
		Type: string(c.Kind),
		Data: data,
	}, nil
}

// SnapshotEvent encodes snap.
func SnapshotEvent[T any](snap liststate.Snapshot[T]) (sse.Event, error) {
	if snap.Items == nil {
		snap.Items = []T{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return sse.Event{}, err
	}
	return sse.Event{
		ID:   strconv.FormatUint(snap.Version, 10),
		Type: EventTypeSnapshot,
		Data: data,
	}, nil
}
