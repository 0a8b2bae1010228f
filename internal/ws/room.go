package ws

import "sync"

// Room is the set of clients subscribed to one meeting room.
type Room struct {
	mu      sync.Mutex
	clients map[Client]struct{}
}

// NewRoom creates an empty room
func NewRoom() *Room { return &Room{clients: map[Client]struct{}{}} }

// Join adds a client and reports whether it was new
func (r *Room) Join(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// Leave removes a client and reports whether it was present
func (r *Room) Leave(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast queues b to every client and returns how many refused it.
// The lock is held for the whole pass so two broadcasts to the same room
// never interleave; Send never blocks, so the hold is short.
func (r *Room) Broadcast(b []byte) (failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if err := c.Send(b); err != nil {
			failed++
		}
	}
	return failed
}
