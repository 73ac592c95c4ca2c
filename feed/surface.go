package feed

import "github.com/kbukum/pullfeed/liststate"

// EndReachedInfo accompanies an end-of-content signal from a surface.
type EndReachedInfo struct {
	// DistanceFromEnd is how far, in surface units, the viewport was from
	// the last item when the signal fired.
	DistanceFromEnd int `json:"distance_from_end"`
}

// Presentation carries list configuration the feed does not interpret
// (item renderer, separators, column count, ...). It is forwarded to the
// surface untouched.
type Presentation map[string]any

// RenderProps is everything a surface receives on each state change.
type RenderProps[T any] struct {
	Items   []T
	Token   liststate.Token
	Version uint64
	// ShowFooter is true while the scroll source may still have items.
	ShowFooter bool
	// Change is the mutation that caused this render, nil for the initial one.
	Change       *liststate.Change[T]
	OnEndReached func(EndReachedInfo)
	Presentation Presentation
}

// Surface draws a feed. Render is called on the feed's scheduler, once when
// attached and after every committed change.
type Surface[T any] interface {
	Render(props RenderProps[T])
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc[T any] func(props RenderProps[T])

// Render calls f.
func (f SurfaceFunc[T]) Render(props RenderProps[T]) { f(props) }
