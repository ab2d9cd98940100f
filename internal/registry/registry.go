// Package registry holds the server's two pieces of shared mutable
// state: which user has a live agent session, and which user has a wake
// call in flight. Both maps are guarded by short-held mutexes around
// pure map operations, never across I/O.
package registry

import (
	"sync"

	"wakemeup/internal/wire"
)

// Conns maps a user id to the outbound channel of that user's agent
// session. At most one session per user: registering a new one replaces
// the old entry (last-connect-wins).
type Conns struct {
	mu       sync.Mutex
	sessions map[int64]chan wire.WakeRequest
}

func NewConns() *Conns {
	return &Conns{sessions: make(map[int64]chan wire.WakeRequest)}
}

// Register installs out as userID's session channel, replacing any prior
// entry. The replaced session is not closed, only orphaned; its pumps
// fail on their own broken transport.
func (c *Conns) Register(userID int64, out chan wire.WakeRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[userID] = out
}

// Unregister removes userID's entry only while out is still the
// installed channel, so a slow-closing old session cannot evict the
// session that replaced it.
func (c *Conns) Unregister(userID int64, out chan wire.WakeRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[userID] == out {
		delete(c.sessions, userID)
	}
}

func (c *Conns) Lookup(userID int64) (chan wire.WakeRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.sessions[userID]
	return out, ok
}

// UserIDs lists the users with a connected agent.
func (c *Conns) UserIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Pending maps a user id to the one-shot acknowledgement channel of an
// in-flight wake call. At most one entry per user: a second wake call
// while one is outstanding overwrites the slot and the first caller
// times out. That is a documented limitation of the protocol, not a
// race to fix here.
type Pending struct {
	mu   sync.Mutex
	acks map[int64]chan bool
}

func NewPending() *Pending {
	return &Pending{acks: make(map[int64]chan bool)}
}

func (p *Pending) Register(userID int64, ack chan bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acks[userID] = ack
}

// Take removes and returns userID's ack channel atomically. A stale or
// duplicate acknowledgement finds nothing and is dropped by the caller.
func (p *Pending) Take(userID int64) (chan bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ack, ok := p.acks[userID]
	if ok {
		delete(p.acks, userID)
	}
	return ack, ok
}

// Cancel removes userID's entry only while ack is still the registered
// channel. The coordinator's timeout path uses this so it never evicts
// a newer wake call's slot.
func (p *Pending) Cancel(userID int64, ack chan bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acks[userID] == ack {
		delete(p.acks, userID)
	}
}
