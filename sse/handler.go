package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/pullfeed/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments, below
// typical proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

// StreamOptions configures one ServeSSE call.
type StreamOptions struct {
	// KeepAlive overrides DefaultKeepAlive.
	KeepAlive time.Duration
	// Buffer overrides DefaultClientBuffer.
	Buffer int
	// Initial events are written right after the connected event, before
	// anything broadcast.
	Initial func() []Event
}

// ServeSSE streams hub events for clientID until the request context ends,
// the client lags, or the hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts StreamOptions) {
	log := hub.log.WithFields(logger.Fields("client_id", clientID))

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not clear write deadline", logger.ErrorFields("set_write_deadline", err))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	// Register before taking the initial snapshot so no broadcast falls
	// between them.
	client := NewClient(clientID, opts.Buffer)
	if !hub.Register(client) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.WriteHeader(http.StatusOK)
	connected := Event{Type: EventTypeConnected, Data: []byte(fmt.Sprintf(`{"client_id":%q}`, clientID))}
	if _, err := connected.WriteTo(w); err != nil {
		return
	}
	if opts.Initial != nil {
		for _, ev := range opts.Initial() {
			if _, err := ev.WriteTo(w); err != nil {
				return
			}
		}
	}
	flusher.Flush()
	log.Debug("Client connected", logger.Fields("remote_addr", r.RemoteAddr))

	interval := opts.KeepAlive
	if interval <= 0 {
		interval = DefaultKeepAlive
	}
	keepAlive := time.NewTicker(interval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Client disconnected", logger.Fields("reason", ctx.Err().Error()))
			return

		case ev, ok := <-client.Events():
			if !ok {
				if client.Lagged() {
					lagged := Event{Type: EventTypeError, Data: []byte(`{"code":"LAGGED"}`)}
					_, _ = lagged.WriteTo(w)
					flusher.Flush()
				}
				return
			}
			if _, err := ev.WriteTo(w); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
