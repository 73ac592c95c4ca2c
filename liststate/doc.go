// Package liststate holds the list a rendering surface draws: the ordered
// items, the "more data may exist" flag and an alternating change token.
//
// Every mutation produces a new immutable Snapshot and a Change that says
// exactly what happened (append, prepend, update at index, reset, flag
// change), so surfaces can invalidate precisely instead of diffing.
package liststate
