// Package sse streams Server-Sent Events to HTTP clients.
//
// A Hub owns the connected clients and routes broadcasts to those whose ID
// matches a glob pattern. ServeSSE runs one stream: it registers a client,
// writes a connected event and any initial events, then forwards
// broadcasts with periodic keep-alive comments. A client that cannot keep
// up is disconnected with an error event so it can reconnect and resync.
//
//	hub := sse.NewHub(nil)
//	go hub.Run()
//	sse.ServeSSE(hub, w, r, "feed:home:"+uuid.NewString(), sse.StreamOptions{})
//	hub.Broadcast("feed:home:*", sse.Event{Type: "change", Data: payload})
package sse
