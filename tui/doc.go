// Package tui renders a feed in the terminal with tview: a bordered list
// of items, a "loading…" footer while more items may exist, and
// end-reached signals when the selection nears the last item.
package tui
