package connectors

import "context"

// Watcher is an optional extension implemented by providers that can
// push change notifications instead of being polled. Callers should
// type-assert a StorageProvider to Watcher; currently only the
// filesystem provider implements it.
type Watcher interface {
	// Watch blocks until ctx is cancelled, invoking onChange whenever
	// the watched folder's contents change. Events are coalesced; the
	// callback signals "something changed", not what.
	Watch(ctx context.Context, onChange func()) error
}
