package app

import (
	"sort"

	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/metrics"
)

// PublishRoster recomputes the room's live roster and sends it to every
// ACTIVE connection, including the one whose transition triggered it.
// Always the full list; never diffed, never cached.
func (m *SessionManager) PublishRoster(roomID domain.RoomID) {
	active := m.reg.ActiveOf(roomID)
	roster := make([]core.RosterEntry, 0, len(active))
	for _, c := range active {
		roster = append(roster, core.RosterEntry{Identity: c.Identity, Role: c.Role})
	}
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].Role != roster[j].Role {
			return roster[i].Role == domain.RoleHost
		}
		return roster[i].Identity < roster[j].Identity
	})

	ev := core.RoomUsers(roster)
	for _, c := range active {
		_ = c.Sender.Send(ev)
	}
	metrics.RosterBroadcasts.Inc()
}
