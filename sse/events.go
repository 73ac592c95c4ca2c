package sse

import (
	"bytes"
	"fmt"
	"io"
)

// Event types written by this package. Applications add their own.
const (
	EventTypeConnected = "connected"
	EventTypeMessage   = "message"
	EventTypeError     = "error"
)

// Event is one Server-Sent Event.
type Event struct {
	// ID is sent as the "id:" field; browsers echo the last one in
	// Last-Event-ID when reconnecting.
	ID string
	// Type is sent as the "event:" field. Empty means "message".
	Type string
	// Data is split on newlines into "data:" lines.
	Data []byte
}

// WriteTo writes e in wire format, terminated by a blank line.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if e.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", e.ID)
	}
	if e.Type != "" {
		fmt.Fprintf(&buf, "event: %s\n", e.Type)
	}
	for _, line := range bytes.Split(e.Data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.WriteTo(w)
}
