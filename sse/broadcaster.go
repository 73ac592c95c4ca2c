package sse

// Broadcaster sends events to connected clients. Handlers depend on it
// rather than on *Hub.
type Broadcaster interface {
	// Broadcast sends ev to every client whose ID matches pattern
	// (filepath.Match syntax, e.g. "feed:home:*").
	Broadcast(pattern string, ev Event)
}
