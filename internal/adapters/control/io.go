package control

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/core"
)

const writeWait = 5 * time.Second

func marshalEvent(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	return core.Frame(b), err
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	pingPeriod := ctl.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "control").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "control").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, c *wsConn) {
	defer func() {
		log.Info().Str("module", "control").Str("conn", string(c.id)).Msg("readPump closing")
		c.Close()
	}()

	if ctl.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.ReadLimit)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleMessage(ctx, c, data)
		}
	}
}

// handleMessage dispatches one decoded envelope. Handlers run to
// completion before the next message of this connection is read.
func (ctl *Controller) handleMessage(ctx context.Context, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad json")
		return
	}

	switch env.Type {
	case core.MsgJoinRoom:
		ctl.handleJoin(ctx, c, data)
	case core.MsgGrantAccess:
		ctl.handleGrant(ctx, c, data)
	case core.MsgDenyAccess:
		ctl.handleDeny(c, data)
	case core.MsgTyping:
		ctl.Sessions.Typing(c.id)
	case core.MsgRunTrigger:
		ctl.Sessions.TriggerRun(c.id)
	case core.MsgRunResult:
		ctl.handleRunResult(c, data)
	default:
		log.Warn().Str("module", "control").Str("type", env.Type).Msg("unknown control event")
	}
}
