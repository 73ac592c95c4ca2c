// Package source defines the demand-driven pull protocol consumed by the
// feed controllers.
//
// A Source is a function. The consumer calls it with a nil abort to ask
// for "end or next item", and the producer answers exactly once through
// the callback, either right away or later from another goroutine:
//
//	src(nil, func(end error, item Post) {
//	    if end != nil {
//	        // source.IsEnd(end) distinguishes a clean end from a failure
//	        return
//	    }
//	    // use item, then ask again
//	})
//
// Calling the source with a non-nil abort requests termination.
//
// # Adapters
//
//   - FromSlice, Generate, Empty, Fail: synchronous sources
//   - FromIterator: wraps a blocking Iterator (Next/Close)
//   - Async: moves replies onto another goroutine, with optional latency
//   - Guard: rejects overlapping requests with ErrConcurrentRead
//   - Pushable: a source fed by Push/End from the outside
//
// Drain, Collect and Iter consume a source in a loop rather than through
// callback recursion.
package source
