// Package complete implements the completion engine: it fans a query
// context out to a configurable set of candidate sources, scores and
// merges what they return, and keeps the resulting candidate set in step
// with further typing, deletion, and selection changes.
//
// The engine is single-threaded and cooperative. Its methods must be
// called from one goroutine (the host's event loop); sources run on their
// own goroutines and hand results back through an internal channel that
// the engine drains inside Sync. A source that never answers leaves its
// contribution pending forever without blocking anything else.
package complete
