// Package control is the websocket adapter for the control channel:
// admission, presence and run-sync events. It owns the sockets and the
// JSON framing; every state decision is delegated to the session
// manager.
package control

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/app"
	"github.com/pairpad/pairpad/internal/auth"
	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller accepts control-channel connections handed over by the
// transport router.
type Controller struct {
	Sessions *app.SessionManager
	Auth     *auth.JWT
	// AuthRequired forces join_room to carry a token whose subject
	// matches the claimed identity.
	AuthRequired bool

	ReadLimit  int64
	PingPeriod time.Duration
}

// wsConn wraps one socket with a buffered outbound queue. Send never
// blocks; a full queue drops the event (best-effort fanout).
type wsConn struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) Send(v any) error {
	b, err := marshalEvent(v)
	if err != nil {
		log.Error().Err(err).Str("module", "control").Msg("event marshal")
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// ServeHTTP completes the websocket handshake and starts the pumps.
// Each connection gets a fresh id; ids are never reused.
func (ctl *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "control").Msg("ws upgrade")
		return
	}

	id := core.ConnID(uuid.NewString())
	conn := &wsConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	log.Info().Str("module", "control").Str("conn", string(id)).Msg("control connection open")
	metrics.ControlConnections.Inc()

	// The request context dies when this handler returns; the pumps
	// outlive it and are bound to the socket instead.
	ctx, cancel := context.WithCancel(context.Background())
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
		ctl.Sessions.Disconnect(id)
		metrics.ControlConnections.Dec()
	}()
}
