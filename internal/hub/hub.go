// Package hub tracks live connections and their outbound queues.
package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the per-connection outbound buffer
const DefaultQueueSize = 256

// Conn is the outbound side of one client connection
type Conn struct {
	ID      string
	send    chan []byte
	dropped atomic.Uint64
	evicted atomic.Bool
}

// Outbound is drained by the connection's writer goroutine. It is closed
// when the connection is unregistered or evicted.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// Dropped returns how many messages were discarded because the queue was full
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

// Evicted reports whether the queue was closed because it overflowed. The
// client missed at least one event and must rejoin for a fresh snapshot.
func (c *Conn) Evicted() bool {
	return c.evicted.Load()
}

// Hub maps connection ids to their queues. Sends never block.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Conn
	queueSize int
}

// New creates a hub; queueSize <= 0 uses DefaultQueueSize
func New(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		conns:     make(map[string]*Conn),
		queueSize: queueSize,
	}
}

// Register opens a queue for id, replacing any previous one
func (h *Hub) Register(id string) *Conn {
	c := &Conn{ID: id, send: make(chan []byte, h.queueSize)}

	h.mu.Lock()
	if old, ok := h.conns[id]; ok {
		close(old.send)
	}
	h.conns[id] = c
	h.mu.Unlock()

	return c
}

// Unregister closes and forgets the queue for id
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[id]
	if !ok {
		return
	}
	close(c.send)
	delete(h.conns, id)
}

// Send enqueues msg for id. It reports false when the connection is gone or
// its queue is full. A full queue evicts the connection: its queue is closed
// so the writer can tell the client to reconnect.
func (h *Hub) Send(id string, msg []byte) bool {
	h.mu.RLock()
	c, ok := h.conns[id]
	if !ok {
		h.mu.RUnlock()
		return false
	}

	select {
	case c.send <- msg:
		h.mu.RUnlock()
		return true
	default:
	}
	h.mu.RUnlock()

	n := c.dropped.Add(1)
	h.evict(c)
	slog.Warn("Evicting slow connection",
		"connection_id", id,
		"queue_size", cap(c.send),
		"dropped_total", n,
	)
	return false
}

// evict closes c's queue unless it was already replaced or removed
func (h *Hub) evict(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[c.ID] != c {
		return
	}
	c.evicted.Store(true)
	close(c.send)
	delete(h.conns, c.ID)
}

// Len returns the number of registered connections
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
