package tui

import (
	"strings"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when cut. Grapheme clusters are never split. width <= 0 leaves
// s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 || uniseg.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}

	var b strings.Builder
	used := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		w := max(uniseg.StringWidth(cluster), 1)
		if used+w > width-1 {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// singleLine collapses line breaks so one item occupies one list row.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
