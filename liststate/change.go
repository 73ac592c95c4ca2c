package liststate

// Token is the alternating change marker handed to rendering surfaces. Its
// value carries no meaning; only a difference from the previously seen
// token does.
type Token uint8

// Next returns the other token value.
func (t Token) Next() Token { return t ^ 1 }

// ChangeKind names the mutation a Change describes.
type ChangeKind string

const (
	// ChangeAppend: Items were appended at Index (the previous length).
	ChangeAppend ChangeKind = "append"
	// ChangePrepend: Items[0] was inserted at position 0.
	ChangePrepend ChangeKind = "prepend"
	// ChangeUpdate: the item at Index was replaced by Items[0].
	ChangeUpdate ChangeKind = "update"
	// ChangeReset: the list was emptied and MoreAvailable set to true.
	ChangeReset ChangeKind = "reset"
	// ChangeMore: only MoreAvailable changed.
	ChangeMore ChangeKind = "more"
)

// Change describes a single committed mutation of the store.
type Change[T any] struct {
	Kind          ChangeKind `json:"kind"`
	Index         int        `json:"index"`
	Items         []T        `json:"items,omitempty"`
	MoreAvailable bool       `json:"more_available"`
	Token         Token      `json:"token"`
	Version       uint64     `json:"version"`
}

// Snapshot is an immutable view of the store. Items must not be modified.
type Snapshot[T any] struct {
	Items         []T    `json:"items"`
	MoreAvailable bool   `json:"more_available"`
	Token         Token  `json:"token"`
	Version       uint64 `json:"version"`
}

// Len returns the number of items in the snapshot.
func (s Snapshot[T]) Len() int { return len(s.Items) }
