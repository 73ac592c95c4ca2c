// Package demo generates synthetic posts for trying a feed out: a finite,
// slow scroll stream that occasionally re-emits edited posts, and a live
// stream that publishes new posts on a timer for the prefix controller.
package demo
