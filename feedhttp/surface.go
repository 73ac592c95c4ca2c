package feedhttp

import (
	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/sse"
)

// Surface renders a feed by broadcasting each committed change to the
// feed's event stream clients. The initial render carries no change and
// is skipped; streams open with their own snapshot.
type Surface[T any] struct {
	name string
	b    sse.Broadcaster
	log  *logger.Logger
}

var _ feed.Surface[struct{}] = (*Surface[struct{}])(nil)

// NewSurface creates a Surface for the named feed.
func NewSurface[T any](feedName string, b sse.Broadcaster, log *logger.Logger) *Surface[T] {
	if log == nil {
		log = logger.WithComponent("feedhttp")
	}
	return &Surface[T]{name: feedName, b: b, log: log}
}

// Render broadcasts props.Change.
func (s *Surface[T]) Render(props feed.RenderProps[T]) {
	if props.Change == nil {
		return
	}
	ev, err := ChangeEvent(*props.Change)
	if err != nil {
		s.log.Warn("Change not broadcast", logger.ErrorFields("encode_change", err))
		return
	}
	s.b.Broadcast(ClientPattern(s.name), ev)
}
