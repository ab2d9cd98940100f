// Package agent is the far end of the relay: the process inside the
// target network that logs in, holds the websocket session open, and
// answers wake requests by broadcasting magic packets.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/token"
	"wakemeup/internal/wire"
	"wakemeup/internal/wol"
)

const userAgent = "wakemeup-agent/1.0"

type Agent struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Agent {
	return &Agent{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Run performs one authenticate-then-connect cycle and serves the
// session until it ends. Reconnecting is the caller's policy; every
// attempt starts again from login.
func (a *Agent) Run(ctx context.Context) error {
	cookie, err := a.login(ctx)
	if err != nil {
		return err
	}

	conn, err := a.connect(ctx, cookie)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("server", a.cfg.Server).Msg("session established")
	return a.serve(ctx, conn)
}

// login posts credentials and extracts the session cookie from the
// response.
func (a *Agent) login(ctx context.Context) (*http.Cookie, error) {
	body, err := json.Marshal(map[string]string{
		"username": a.cfg.Username,
		"password": a.cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.httpURL("/login"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent: login rejected with status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == token.CookieName {
			return cookie, nil
		}
	}
	return nil, fmt.Errorf("agent: login response carried no %s cookie", token.CookieName)
}

// connect opens the durable websocket, presenting the session cookie.
// The dialer generates a fresh random Sec-WebSocket-Key and the rest of
// the upgrade handshake per connection.
func (a *Agent) connect(ctx context.Context, cookie *http.Cookie) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Cookie", cookie.String())
	header.Set("User-Agent", userAgent)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, a.wsURL("/ws"), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("agent: websocket dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("agent: websocket dial: %w", err)
	}
	return conn, nil
}

// serve answers wake requests until the connection or the context ends.
func (a *Agent) serve(ctx context.Context, conn *websocket.Conn) error {
	// Unblock the read loop when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("agent: session ended: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		env, err := wire.Decode(data)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if env.Request == nil {
			continue
		}

		success := a.wake(env.Request.Device)
		payload := wire.Encode(wire.Envelope{Response: &wire.WakeResponse{Success: success}})
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			return fmt.Errorf("agent: write acknowledgement: %w", err)
		}
	}
}

// wake broadcasts the magic packet for the requested device. A MAC that
// does not parse is a negative acknowledgement, never a dropped
// connection.
func (a *Agent) wake(device wire.Device) bool {
	mac, err := wol.ParseMAC(device.MAC)
	if err != nil {
		log.Warn().Err(err).Str("device", device.Name).Msg("wake request with bad MAC")
		return false
	}
	if err := wol.Send(mac, a.cfg.BroadcastAddr); err != nil {
		log.Error().Err(err).Str("device", device.Name).Msg("magic packet send failed")
		return false
	}
	log.Info().Str("device", device.Name).Str("mac", mac.String()).Msg("magic packet sent")
	return true
}

func (a *Agent) httpURL(path string) string {
	scheme := "http"
	if a.cfg.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, a.cfg.Server, path)
}

func (a *Agent) wsURL(path string) string {
	scheme := "ws"
	if a.cfg.TLS {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s%s", scheme, a.cfg.Server, path)
}
