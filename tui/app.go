package tui

import (
	"context"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/logger"
)

// Run shows f full-screen until the user quits (q, Esc, Ctrl-C) or ctx is
// cancelled. Nothing else may write to the terminal meanwhile; route logs
// to a file or discard them.
func Run[T any, K comparable](ctx context.Context, f *feed.Feed[T, K], text ItemText[T], opts Options) error {
	log := logger.WithComponent("tui")
	app := tview.NewApplication()

	var stopped atomic.Bool
	queue := func(fn func()) {
		if stopped.Load() {
			return
		}
		app.QueueUpdateDraw(fn)
	}
	surf := NewSurface(text, queue, opts)

	app.SetRoot(surf.Primitive(), true).
		SetFocus(surf.List()).
		EnableMouse(true).
		SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
				app.Stop()
				return nil
			}
			return ev
		})

	detach := f.Attach(surf)
	defer func() {
		stopped.Store(true)
		detach()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			app.Stop()
		case <-done:
		}
	}()

	log.Info("Terminal surface running", logger.Fields(logger.FieldFeed, f.Name()))
	if err := app.Run(); err != nil {
		log.Error("Terminal surface failed", logger.ErrorFields("run", err))
		return err
	}
	log.Info("Terminal surface closed")
	return nil
}
