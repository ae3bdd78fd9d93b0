package gateway

import "sync"

// Registry tracks every live connection regardless of room membership, so the
// heartbeat sweep and shutdown can reach connections that never joined a
// room.
type Registry struct {
	mu    sync.RWMutex
	conns map[*Connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[*Connection]struct{})}
}

func (r *Registry) Register(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// Snapshot copies the current connection set so callers can iterate without
// holding the registry lock.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*Connection, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll terminates every registered connection. Used on server shutdown
// so clients get a close frame instead of a dropped TCP stream.
func (r *Registry) CloseAll(reason string) {
	for _, c := range r.Snapshot() {
		c.Terminate(reason)
	}
}
