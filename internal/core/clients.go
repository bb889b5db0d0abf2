package core

import "sync"

// Sender delivers one outbound frame to a connection. Implementations must
// not block; a frame that cannot be queued is dropped.
type Sender interface {
	Send(payload []byte) error
}

// ClientRegistry maps live client ids to their delivery handles. A handle
// obtained from Lookup may go stale immediately after, the recipient having
// disconnected; delivery is best-effort by contract.
type ClientRegistry struct {
	mu    sync.RWMutex
	conns map[string]Sender
}

// NewClientRegistry constructs an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{conns: make(map[string]Sender)}
}

// Register inserts or overwrites the handle for id.
func (c *ClientRegistry) Register(id string, s Sender) {
	c.mu.Lock()
	c.conns[id] = s
	c.mu.Unlock()
}

// Unregister removes the entry for id. No-op if absent.
func (c *ClientRegistry) Unregister(id string) {
	c.mu.Lock()
	delete(c.conns, id)
	c.mu.Unlock()
}

// Lookup returns the delivery handle for id. A missing entry means the
// recipient is no longer reachable.
func (c *ClientRegistry) Lookup(id string) (Sender, bool) {
	c.mu.RLock()
	s, ok := c.conns[id]
	c.mu.RUnlock()
	return s, ok
}

// Len returns the number of live clients.
func (c *ClientRegistry) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.conns)
}
