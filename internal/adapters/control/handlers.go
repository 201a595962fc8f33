package control

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/domain"
)

func (ctl *Controller) handleJoin(ctx context.Context, c *wsConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Identity string `json:"identity"`
		Token    string `json:"token,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad join payload")
		_ = c.Send(core.StatusUpdate("error", "bad join payload"))
		return
	}

	if ctl.AuthRequired {
		sub, err := ctl.Auth.Verify(p.Token)
		if err != nil || sub != p.Identity {
			log.Warn().Str("module", "control").Str("conn", string(c.id)).
				Str("identity", p.Identity).Msg("join rejected: identity token mismatch")
			_ = c.Send(core.StatusUpdate("error", "invalid identity token"))
			return
		}
	}

	if err := ctl.Sessions.Join(ctx, c.id, domain.RoomID(p.RoomID), p.Identity, c); err != nil {
		// The requester was already notified; other connections are
		// unaffected and the client may simply re-attempt join_room.
		log.Error().Err(err).Str("module", "control").Str("conn", string(c.id)).Msg("join failed")
	}
}

func (ctl *Controller) handleGrant(ctx context.Context, c *wsConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		ConnID string `json:"connectionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad grant payload")
		return
	}
	if err := ctl.Sessions.Grant(ctx, c.id, core.ConnID(p.ConnID)); err != nil {
		log.Warn().Err(err).Str("module", "control").Str("target", p.ConnID).Msg("grant ignored")
	}
}

func (ctl *Controller) handleDeny(c *wsConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		ConnID string `json:"connectionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad deny payload")
		return
	}
	if err := ctl.Sessions.Deny(c.id, core.ConnID(p.ConnID)); err != nil {
		log.Warn().Err(err).Str("module", "control").Str("target", p.ConnID).Msg("deny ignored")
	}
}

func (ctl *Controller) handleRunResult(c *wsConn, data []byte) {
	var p struct {
		Type string   `json:"type"`
		Logs []string `json:"logs"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "control").Msg("bad run_result payload")
		return
	}
	ctl.Sessions.CompleteRun(c.id, p.Logs)
}
