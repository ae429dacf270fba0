package ws

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/crossfader-relay/crossfader/internal/fader"
)

// ErrTooManyConnections is returned by Add when the hub is full.
var ErrTooManyConnections = errors.New("too many connections")

// Handle is one registered client connection.
type Handle interface {
	Send(msg []byte) error
	Close() error
}

// Hub owns the set of connected clients and fans values out to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[Handle]struct{}
	maxConns int

	// deliverMu orders broadcasts against baseline sends so a client that
	// joins mid-broadcast never receives an older value last.
	deliverMu sync.Mutex
	value     *fader.Value
}

// NewHub creates a hub reading the live value from value. maxConns <= 0
// means unlimited.
func NewHub(value *fader.Value, maxConns int) *Hub {
	return &Hub{
		clients:  make(map[Handle]struct{}),
		maxConns: maxConns,
		value:    value,
	}
}

// Add registers c and immediately sends it the current value. If the
// baseline send fails the client is removed again.
func (h *Hub) Add(c Handle) error {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	h.mu.Lock()
	if h.maxConns > 0 && len(h.clients) >= h.maxConns {
		h.mu.Unlock()
		return ErrTooManyConnections
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	data, err := encodeFader(h.value.Load())
	if err == nil {
		err = c.Send(data)
	}
	if err != nil {
		h.Remove(c)
		return fmt.Errorf("sending baseline: %w", err)
	}
	return nil
}

// Remove unregisters c. Removing an unknown client is a no-op.
func (h *Hub) Remove(c Handle) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Broadcast sends value to every client. Clients whose send fails are
// collected during the scan and dropped together afterwards.
func (h *Hub) Broadcast(value int) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	clients := make([]Handle, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	data, err := encodeFader(value)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	var failed []Handle
	for _, c := range clients {
		if err := c.Send(data); err != nil {
			log.Printf("ws broadcast error, dropping client: %v", err)
			failed = append(failed, c)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range failed {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	for _, c := range failed {
		c.Close()
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) has(c Handle) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[c]
	return ok
}
