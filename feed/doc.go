// Package feed materializes an unbounded pull source into a finite list
// for a virtualized view.
//
// A Feed combines:
//
//   - Scroll: pulls batches from the scroll source when the surface reports
//     the end of content, merges them by key (corrections to visible items
//     are applied in place), and serializes overlapping pulls into one
//     in-flight session plus one queued follow-up.
//   - Prefix: drains an independent source and prepends every item as it
//     arrives.
//   - liststate.Store: the single list both controllers write to.
//
// All controller work runs on a sched.Scheduler, one task at a time. Source
// replies are posted back to the scheduler, so sources may answer
// synchronously or from any goroutine.
//
// # Usage
//
//	f, err := feed.New(feed.Config{}, func(p Post) string { return p.ID })
//	f.SetScrollSource(func() source.Source[Post] { return timeline() })
//	f.Attach(surface)
//	f.Mount()
//	// surface calls props.OnEndReached(...) near the bottom
//	f.Unmount()
package feed
