package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/liststate"
)

// Defaults for Options.
const (
	DefaultEndThreshold = 3
	DefaultMaxWidth     = 120
	FooterText          = "loading…"
)

// ItemText formats an item as the list's main and secondary lines.
type ItemText[T any] func(item T) (main, secondary string)

// Options configures a Surface.
type Options struct {
	// Title is shown in the list border. A "title" string in the feed's
	// presentation overrides it.
	Title string
	// EndThreshold is how many items from the end the selection may be
	// before end-reached fires.
	EndThreshold int
	// MaxWidth truncates item text to this many cells.
	MaxWidth int
}

func (o *Options) applyDefaults() {
	if o.EndThreshold <= 0 {
		o.EndThreshold = DefaultEndThreshold
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
}

// Surface draws a feed as a tview List with a loading footer. Render may
// be called from any goroutine; widget updates are queued onto the UI
// goroutine.
type Surface[T any] struct {
	opts   Options
	text   ItemText[T]
	queue  func(func())
	list   *tview.List
	footer *tview.TextView
	layout *tview.Flex

	// Touched only on the UI goroutine.
	items      []T
	showFooter bool
	onEnd      func(feed.EndReachedInfo)
	applying   bool

	mu       sync.Mutex
	token    liststate.Token
	rendered bool
	version  uint64
}

var _ feed.Surface[struct{}] = (*Surface[struct{}])(nil)

// NewSurface builds the widgets. queue runs a function on the UI
// goroutine; pass an Application's QueueUpdateDraw wrapper, or a direct
// call when no application loop is running.
func NewSurface[T any](text ItemText[T], queue func(func()), opts Options) *Surface[T] {
	opts.applyDefaults()
	s := &Surface[T]{
		opts:   opts,
		text:   text,
		queue:  queue,
		list:   tview.NewList(),
		footer: tview.NewTextView(),
	}

	s.list.ShowSecondaryText(true).
		SetSecondaryTextColor(tcell.ColorGray).
		SetWrapAround(false).
		SetChangedFunc(func(index int, _, _ string, _ rune) {
			if !s.applying {
				s.checkEnd(index)
			}
		})
	s.list.SetBorder(true).SetTitle(s.title(nil, 0))

	s.footer.SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorYellow)

	s.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.list, 0, 1, true).
		AddItem(s.footer, 0, 0, false)
	return s
}

// Primitive returns the root widget for an Application.
func (s *Surface[T]) Primitive() tview.Primitive { return s.layout }

// List returns the list widget.
func (s *Surface[T]) List() *tview.List { return s.list }

// Render queues props for display. Renders carrying a token already shown
// are dropped.
func (s *Surface[T]) Render(props feed.RenderProps[T]) {
	s.mu.Lock()
	if s.rendered && props.Token == s.token && props.Version == s.version {
		s.mu.Unlock()
		return
	}
	s.rendered = true
	s.token = props.Token
	s.version = props.Version
	s.mu.Unlock()

	s.queue(func() { s.apply(props) })
}

func (s *Surface[T]) apply(props feed.RenderProps[T]) {
	s.applying = true
	defer func() { s.applying = false }()

	current := s.list.GetCurrentItem()
	s.onEnd = props.OnEndReached
	s.showFooter = props.ShowFooter

	c := props.Change
	switch {
	case c == nil || c.Kind == liststate.ChangeReset:
		s.rebuild(props.Items)
	case c.Kind == liststate.ChangeAppend:
		for _, item := range c.Items {
			s.addItem(-1, item)
		}
	case c.Kind == liststate.ChangePrepend && len(c.Items) == 1:
		had := s.list.GetItemCount() > 0
		s.addItem(0, c.Items[0])
		if had {
			// Keep the selection on the item it was on.
			s.list.SetCurrentItem(current + 1)
		}
	case c.Kind == liststate.ChangeUpdate && len(c.Items) == 1 && c.Index < s.list.GetItemCount():
		main, secondary := s.format(c.Items[0])
		s.list.SetItemText(c.Index, main, secondary)
	}
	if s.list.GetItemCount() != len(props.Items) {
		s.rebuild(props.Items)
	}
	s.items = props.Items

	if props.ShowFooter {
		s.footer.SetText(FooterText)
		s.layout.ResizeItem(s.footer, 1, 0)
	} else {
		s.footer.SetText("")
		s.layout.ResizeItem(s.footer, 0, 0)
	}
	s.list.SetTitle(s.title(props.Presentation, len(props.Items)))

	// A list too short to scroll never moves its selection, so check here
	// as well as on selection changes.
	s.checkEnd(s.list.GetCurrentItem())
}

func (s *Surface[T]) rebuild(items []T) {
	current := s.list.GetCurrentItem()
	s.list.Clear()
	for _, item := range items {
		s.addItem(-1, item)
	}
	if n := len(items); n > 0 {
		s.list.SetCurrentItem(min(current, n-1))
	}
}

func (s *Surface[T]) addItem(index int, item T) {
	main, secondary := s.format(item)
	if index < 0 {
		s.list.AddItem(main, secondary, 0, nil)
		return
	}
	s.list.InsertItem(index, main, secondary, 0, nil)
}

func (s *Surface[T]) format(item T) (string, string) {
	main, secondary := s.text(item)
	return Truncate(singleLine(main), s.opts.MaxWidth), Truncate(singleLine(secondary), s.opts.MaxWidth)
}

func (s *Surface[T]) checkEnd(index int) {
	if !s.showFooter || s.onEnd == nil {
		return
	}
	distance := s.list.GetItemCount() - 1 - index
	if distance < 0 {
		distance = 0
	}
	if distance <= s.opts.EndThreshold {
		s.onEnd(feed.EndReachedInfo{DistanceFromEnd: distance})
	}
}

func (s *Surface[T]) title(p feed.Presentation, n int) string {
	title := s.opts.Title
	if t, ok := p["title"].(string); ok && t != "" {
		title = t
	}
	if title == "" {
		title = "feed"
	}
	return fmt.Sprintf(" %s (%d) ", title, n)
}
