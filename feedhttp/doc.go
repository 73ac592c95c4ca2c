// Package feedhttp serves a feed over HTTP.
//
//	GET  /feed              current snapshot
//	POST /feed/end-reached  request the next batch (202)
//	GET  /feed/events       event stream: one snapshot, then one event per change
//
// Change events are typed by their kind (append, prepend, update, reset,
// more) and carry the store version as their ID.
package feedhttp
