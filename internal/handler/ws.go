package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/middleware"
	"wakemeup/internal/registry"
	"wakemeup/internal/session"
)

type WebSocketHandler struct {
	Conns   *registry.Conns
	Pending *registry.Pending
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Agents are not browsers; the cookie gate in front of this handler
	// is the real access control.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the connection and hands it to the session state
// machine. The peer's identity was already established by the auth
// middleware; it is a precondition here, not something negotiated on
// the socket.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, middleware.ErrorBody(c, "NO_AUTH"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	sess := &session.Session{UserID: userID, Conns: h.Conns, Pending: h.Pending}
	sess.Run(conn)
}
