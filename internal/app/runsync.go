package app

import (
	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/metrics"
)

// Run-sync fanout is best-effort: concurrent triggers from different
// members are relayed independently, in arrival order per sender, with
// no ordering guarantee across senders.

// TriggerRun relays a "run started" notice to the other ACTIVE members
// of the sender's room. Non-members are silently ignored.
func (m *SessionManager) TriggerRun(id core.ConnID) {
	e, ok := m.reg.Get(id)
	if !ok || e.State != domain.Active {
		return
	}
	metrics.RunEvents.WithLabelValues("start").Inc()
	m.broadcastOthers(e.RoomID, id, core.RunStart(e.Identity))
}

// CompleteRun relays captured output lines to the other ACTIVE members.
func (m *SessionManager) CompleteRun(id core.ConnID, logs []string) {
	e, ok := m.reg.Get(id)
	if !ok || e.State != domain.Active {
		return
	}
	metrics.RunEvents.WithLabelValues("complete").Inc()
	m.broadcastOthers(e.RoomID, id, core.RunComplete(logs))
}

// Typing relays a typing indicator to the other ACTIVE members.
func (m *SessionManager) Typing(id core.ConnID) {
	e, ok := m.reg.Get(id)
	if !ok || e.State != domain.Active {
		return
	}
	m.broadcastOthers(e.RoomID, id, core.Typing(e.Identity))
}

func (m *SessionManager) broadcastOthers(roomID domain.RoomID, from core.ConnID, ev any) {
	for _, c := range m.reg.ActiveOf(roomID) {
		if c.ID == from {
			continue
		}
		_ = c.Sender.Send(ev)
	}
}
