// Package shape provides call-shaping controllers: debounce and throttle.
//
// Debounce collapses a burst of calls into one trailing invocation after a
// quiet period; only the last call's operation runs, and every superseded
// caller receives that run's result. Throttle bounds execution frequency:
// the first call in an interval runs, later calls in the same interval
// return the previously recorded outcome without executing.
//
// Both controllers key their state on a caller-supplied string and keep
// per-key entries independent.
package shape
