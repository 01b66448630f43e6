// Package fx animates named properties of entities on a cooperative tick loop.
//
// A Manager owns the set of running animations and renders each of them at
// its own elapsed offset whenever its Clock ticks. The clock only runs while
// something is animating. Effects wraps a Manager together with a Registry of
// per-entity animations and exposes the operations callers normally want:
// AnimateProperty, Bounce, Cancel and Rewind.
//
// Nothing in this package is safe for concurrent use. Production code runs
// every call on a Loop goroutine; tick sources Post onto that loop rather
// than calling the Manager directly.
package fx
