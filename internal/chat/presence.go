package chat

import (
	"sort"
	"sync"
)

// PresenceRegistry tracks who is connected to this instance. A user with
// several sockets stays online until the last one closes.
type PresenceRegistry struct {
	mu    sync.Mutex
	conns map[string]int
	info  map[string]Presence
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		conns: make(map[string]int),
		info:  make(map[string]Presence),
	}
}

// Connect registers one more socket for p.UserID and returns the roster.
func (r *PresenceRegistry) Connect(p Presence) []Presence {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Online = true
	r.conns[p.UserID]++
	r.info[p.UserID] = p
	return r.rosterLocked()
}

// Update replaces the presence details of a connected user.
func (r *PresenceRegistry) Update(p Presence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[p.UserID] == 0 {
		return
	}
	p.Online = true
	r.info[p.UserID] = p
}

// Disconnect drops one socket of userID and reports whether it was the last.
func (r *PresenceRegistry) Disconnect(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.conns[userID]
	if n <= 1 {
		delete(r.conns, userID)
		delete(r.info, userID)
		return n == 1
	}
	r.conns[userID] = n - 1
	return false
}

func (r *PresenceRegistry) Online() []Presence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *PresenceRegistry) rosterLocked() []Presence {
	out := make([]Presence, 0, len(r.info))
	for _, p := range r.info {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
