package chat

import "sync"

// Registry maps a user identity to its single live transport session.
// Last connect wins: a new Bind for an identity silently evicts the
// previous connection id. All methods are safe for concurrent use and
// never perform I/O under the lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]string),
	}
}

// Bind records connectionId as the live session for identity. It
// returns the evicted connection id, if any. The transport layer is
// responsible for tearing down the evicted connection.
func (r *Registry) Bind(identity, connectionId string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, evicted := r.conns[identity]
	r.conns[identity] = connectionId

	return prev, evicted
}

// Unbind removes the binding for identity if it still points at
// connectionId, and reports whether it did. A stale unbind, from a
// connection that has already been evicted by a newer one, leaves the
// current binding untouched.
func (r *Registry) Unbind(identity, connectionId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[identity]
	if !ok || current != connectionId {
		return false
	}
	delete(r.conns, identity)

	return true
}

// Lookup returns the live connection id for identity. A false result
// means the user is offline, which callers treat as a normal outcome.
func (r *Registry) Lookup(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionId, ok := r.conns[identity]
	return connectionId, ok
}
