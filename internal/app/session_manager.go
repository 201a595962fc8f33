package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/metrics"
)

// RoomStore is the persistent backing of the room registry. A store
// failure surfaces to the caller as domain.ErrStore: deny admission,
// never approve implicitly.
type RoomStore interface {
	GetOrCreate(ctx context.Context, roomID domain.RoomID, identity string) (*domain.Room, error)
	AddParticipant(ctx context.Context, roomID domain.RoomID, identity string) error
}

const waitingMessage = "Waiting for host to join..."

// SessionManager is the admission controller. It is the only writer of
// the connection registry and the room store; adapters route decoded
// control events here and fan nothing out on their own.
//
// Store lookups run outside the registry lock; the resulting mutation
// is applied atomically afterwards, so no partial admission state is
// ever visible to other connections.
type SessionManager struct {
	store RoomStore
	reg   *Registry

	// waitTimeout bounds PENDING_APPROVAL and WAITING_FOR_HOST.
	// Zero disables expiry.
	waitTimeout time.Duration
}

func NewSessionManager(store RoomStore, reg *Registry, waitTimeout time.Duration) *SessionManager {
	return &SessionManager{store: store, reg: reg, waitTimeout: waitTimeout}
}

// Join runs the admission transition for a new control connection.
//
//  1. Host or allow-listed participant: ACTIVE immediately, roster out.
//  2. Otherwise, with an ACTIVE host online: PENDING_APPROVAL, host
//     prompted, requester told to wait.
//  3. No host online: WAITING_FOR_HOST, parked and invisible.
func (m *SessionManager) Join(ctx context.Context, id core.ConnID, roomID domain.RoomID, identity string, s core.Sender) error {
	if roomID == "" || !domain.ValidIdentity(identity) {
		_ = s.Send(core.StatusUpdate("error", "roomId and identity are required"))
		metrics.Admissions.WithLabelValues("invalid").Inc()
		return fmt.Errorf("join %q: %w", identity, domain.ErrValidation)
	}

	room, err := m.store.GetOrCreate(ctx, roomID, identity)
	if err != nil {
		_ = s.Send(core.StatusUpdate("error", "room lookup failed, try again"))
		metrics.Admissions.WithLabelValues("store_error").Inc()
		return fmt.Errorf("join room %s: %w: %v", roomID, domain.ErrStore, err)
	}

	// A second join_room on a live connection re-keys it. Finalize the
	// old membership first (roster, leave notice, prompt retraction) so
	// the old room's roster stays exact.
	if _, ok := m.reg.Get(id); ok {
		m.Disconnect(id)
	}

	entry := &ConnEntry{
		ID:       id,
		Identity: identity,
		RoomID:   roomID,
		Role:     domain.RoleGuest,
		Sender:   s,
		JoinedAt: time.Now(),
	}

	if room.IsHost(identity) || room.IsParticipant(identity) {
		if room.IsHost(identity) {
			entry.Role = domain.RoleHost
		}
		m.reg.AddActive(entry)
		metrics.Admissions.WithLabelValues("auto").Inc()
		_ = s.Send(core.AccessGranted())
		m.PublishRoster(roomID)
		if entry.Role == domain.RoleHost {
			m.onHostOnline(roomID, s)
		}
		return nil
	}

	state, hosts := m.reg.AddGuest(entry)
	switch state {
	case domain.PendingApproval:
		metrics.Admissions.WithLabelValues("pending").Inc()
		for _, h := range hosts {
			_ = h.Sender.Send(core.RequestEntry(identity, id))
		}
		_ = s.Send(core.StatusUpdate("waiting", "Waiting for host approval..."))
	case domain.WaitingForHost:
		metrics.Admissions.WithLabelValues("parked").Inc()
		_ = s.Send(core.StatusUpdate("waiting", waitingMessage))
	}
	m.scheduleExpiry(id)
	return nil
}

// onHostOnline runs the host-rejoin policy: guests parked
// WAITING_FOR_HOST are promoted to PENDING_APPROVAL, and the freshly
// connected host is prompted for every outstanding request, promoted
// or left over from an earlier host connection. No silent auto-admit.
func (m *SessionManager) onHostOnline(roomID domain.RoomID, host core.Sender) {
	promoted := m.reg.PromoteWaiting(roomID)
	for _, req := range promoted {
		if e, ok := m.reg.Get(req.ConnID); ok {
			_ = e.Sender.Send(core.StatusUpdate("waiting", "Waiting for host approval..."))
		}
	}
	for _, req := range m.reg.PendingOf(roomID) {
		_ = host.Send(core.RequestEntry(req.Identity, req.ConnID))
	}
}

// Grant is the host decision to admit a pending requester. The grant
// is persisted to the room's participant list before the connection is
// activated; a store failure keeps the request pending.
func (m *SessionManager) Grant(ctx context.Context, hostID, target core.ConnID) error {
	host, ok := m.reg.Get(hostID)
	if !ok || host.Role != domain.RoleHost || host.State != domain.Active {
		return fmt.Errorf("grant by %s: %w", hostID, domain.ErrUnknownConnection)
	}
	guest, ok := m.reg.Get(target)
	if !ok || guest.RoomID != host.RoomID || guest.State != domain.PendingApproval {
		log.Warn().Str("module", "app.session").Str("conn", string(target)).Msg("grant for stale connection ignored")
		return domain.ErrUnknownConnection
	}

	if err := m.store.AddParticipant(ctx, guest.RoomID, guest.Identity); err != nil {
		_ = guest.Sender.Send(core.StatusUpdate("error", "could not persist access, ask the host to retry"))
		return fmt.Errorf("persist participant %s: %w: %v", guest.Identity, domain.ErrStore, err)
	}

	if !m.reg.Activate(target) {
		// Requester vanished between the check and the store write.
		return domain.ErrUnknownConnection
	}
	metrics.Admissions.WithLabelValues("granted").Inc()
	_ = guest.Sender.Send(core.AccessGranted())
	m.PublishRoster(guest.RoomID)
	return nil
}

// Deny is the host decision to reject a pending requester. The
// requester is notified and dropped from the registry.
func (m *SessionManager) Deny(hostID, target core.ConnID) error {
	host, ok := m.reg.Get(hostID)
	if !ok || host.Role != domain.RoleHost || host.State != domain.Active {
		return fmt.Errorf("deny by %s: %w", hostID, domain.ErrUnknownConnection)
	}
	guest, ok := m.reg.Get(target)
	if !ok || guest.RoomID != host.RoomID || guest.State != domain.PendingApproval {
		log.Warn().Str("module", "app.session").Str("conn", string(target)).Msg("deny for stale connection ignored")
		return domain.ErrUnknownConnection
	}

	// Re-checked under the registry lock: a grant racing this deny may
	// have activated the connection already, and then the deny loses.
	removed, ok := m.reg.RemoveIfPending(target)
	if !ok {
		return domain.ErrUnknownConnection
	}
	metrics.Admissions.WithLabelValues("denied").Inc()
	_ = removed.Sender.Send(core.AccessDenied())
	removed.Sender.Close()
	return nil
}

// Disconnect finalizes a closed connection: ACTIVE members produce a
// roster update and a leave notice, pending requesters retract their
// prompt from the host.
func (m *SessionManager) Disconnect(id core.ConnID) {
	entry, hadPending, ok := m.reg.Remove(id)
	if !ok {
		return
	}
	if hadPending {
		for _, h := range m.reg.ActiveHosts(entry.RoomID) {
			_ = h.Sender.Send(core.RequestCancelled(id))
		}
	}
	if entry.State == domain.Active {
		m.PublishRoster(entry.RoomID)
		m.broadcastOthers(entry.RoomID, id, core.UserLeft(entry.Identity))
	}
}

// scheduleExpiry bounds how long a connection may sit in
// PENDING_APPROVAL or WAITING_FOR_HOST. Connection ids are never
// reused, so a fired timer for an admitted or closed connection is a
// no-op.
func (m *SessionManager) scheduleExpiry(id core.ConnID) {
	if m.waitTimeout <= 0 {
		return
	}
	time.AfterFunc(m.waitTimeout, func() { m.expire(id) })
}

func (m *SessionManager) expire(id core.ConnID) {
	// The timer fires on its own goroutine; the state check and the
	// removal must share one critical section or a concurrent grant
	// gets its freshly-ACTIVE connection torn down.
	entry, hadPending, ok := m.reg.RemoveIfWaiting(id)
	if !ok {
		return
	}
	log.Info().Str("module", "app.session").Str("conn", string(id)).
		Str("room", string(entry.RoomID)).Msg("admission wait timed out")
	metrics.Admissions.WithLabelValues("expired").Inc()
	if hadPending {
		for _, h := range m.reg.ActiveHosts(entry.RoomID) {
			_ = h.Sender.Send(core.RequestCancelled(id))
		}
	}
	_ = entry.Sender.Send(core.StatusUpdate("timeout", "No decision from the host, please rejoin"))
	_ = entry.Sender.Send(core.AccessDenied())
	entry.Sender.Close()
}
