// Package relay forwards wake commands to the matching agent session
// and waits for the acknowledgement coming back over the websocket.
package relay

import (
	"context"
	"errors"
	"time"

	"wakemeup/internal/registry"
	"wakemeup/internal/wire"
)

// DefaultTimeout is how long a wake call waits for the agent's
// acknowledgement. Policy, not protocol: override via
// Coordinator.Timeout (WAKE_TIMEOUT_SECONDS on the server).
const DefaultTimeout = 5 * time.Second

var (
	// ErrNoSession means the user has no connected agent.
	ErrNoSession = errors.New("relay: no session for user")
	// ErrSendFailed means the session's outbound queue would not accept
	// the request, typically a session torn down or wedged mid-send.
	ErrSendFailed = errors.New("relay: send to session failed")
)

type Coordinator struct {
	Conns   *registry.Conns
	Pending *registry.Pending
	Timeout time.Duration
}

// Wake submits req to userID's session and races the acknowledgement
// against the deadline. A deadline expiry is a soft outcome, not an
// error: the caller gets (false, nil) and a late acknowledgement finds
// no pending entry and is dropped.
func (c *Coordinator) Wake(ctx context.Context, userID int64, req wire.WakeRequest) (bool, error) {
	out, ok := c.Conns.Lookup(userID)
	if !ok {
		return false, ErrNoSession
	}

	ack := make(chan bool, 1)
	c.Pending.Register(userID, ack)

	select {
	case out <- req:
	default:
		c.Pending.Cancel(userID, ack)
		return false, ErrSendFailed
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case success := <-ack:
		return success, nil
	case <-timer.C:
		c.Pending.Cancel(userID, ack)
		return false, nil
	case <-ctx.Done():
		c.Pending.Cancel(userID, ack)
		return false, ctx.Err()
	}
}
