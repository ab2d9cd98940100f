// Package session drives one agent's websocket connection on the server
// side: it registers the session with the connection registry, pumps
// queued wake requests out, and routes decoded acknowledgements into
// the pending-wake registry.
package session

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/metrics"
	"wakemeup/internal/registry"
	"wakemeup/internal/wire"
)

const (
	// OutboundCap bounds the per-session wake queue; a full queue is
	// backpressure and fails the wake call instead of blocking it.
	OutboundCap = 64

	readLimit  = 64 * 1024
	pongWait   = 60 * time.Second
	writeWait  = 10 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Session struct {
	UserID  int64
	Conns   *registry.Conns
	Pending *registry.Pending
}

// Run owns conn until the session ends. It registers a fresh outbound
// channel for the user, runs the two pumps, and unregisters on the way
// out. Either pump failing tears the whole session down: the writer
// closes the connection, which errors the read loop; the read loop
// returning closes done, which stops the writer.
func (s *Session) Run(conn *websocket.Conn) {
	out := make(chan wire.WakeRequest, OutboundCap)
	s.Conns.Register(s.UserID, out)
	m := metrics.Init(nil)
	m.ConnectedAgents.Inc()

	done := make(chan struct{})
	defer func() {
		close(done)
		s.Conns.Unregister(s.UserID, out)
		m.ConnectedAgents.Dec()
		_ = conn.Close()
		log.Info().Int64("user_id", s.UserID).Msg("agent session closed")
	}()

	log.Info().Int64("user_id", s.UserID).Msg("agent session established")

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.writePump(conn, out, done)
	s.readPump(conn)
}

// writePump serializes queued wake requests onto the transport in
// submission order and keeps the connection alive with pings.
func (s *Session) writePump(conn *websocket.Conn, out <-chan wire.WakeRequest, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case req := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			payload := wire.Encode(wire.Envelope{Request: &req})
			if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				log.Error().Err(err).Int64("user_id", s.UserID).Msg("session write failed")
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// readPump decodes inbound frames and delivers acknowledgements. A
// malformed frame is logged and dropped; the connection stays open.
// Returning from here ends the session.
func (s *Session) readPump(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Int64("user_id", s.UserID).Msg("session read failed")
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		env, err := wire.Decode(data)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", s.UserID).Msg("dropping malformed frame")
			continue
		}
		if env.Response == nil {
			continue
		}

		ack, ok := s.Pending.Take(s.UserID)
		if !ok {
			// Late or duplicate acknowledgement; nobody is waiting.
			log.Debug().Int64("user_id", s.UserID).Msg("acknowledgement with no pending wake")
			continue
		}
		select {
		case ack <- env.Response.Success:
		default:
		}
	}
}
