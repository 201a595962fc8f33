package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/core"
	"github.com/pairpad/pairpad/internal/domain"
)

// ConnEntry is the registry record for one live control connection.
// Identity, role and room are fixed at creation; only State moves.
type ConnEntry struct {
	ID       core.ConnID
	Identity string
	Role     domain.Role
	RoomID   domain.RoomID
	State    domain.AdmissionState
	Sender   core.Sender
	JoinedAt time.Time
}

// PendingRequest is an admission decision awaiting the host.
type PendingRequest struct {
	ConnID      core.ConnID
	Identity    string
	RoomID      domain.RoomID
	RequestedAt time.Time
}

type connSnap struct {
	ID       core.ConnID
	Identity string
	Role     domain.Role
	Sender   core.Sender
}

// Registry owns every live connection entry and pending request.
// All admission transitions go through it; other components only read.
type Registry struct {
	mu      sync.RWMutex
	conns   map[core.ConnID]*ConnEntry
	pending map[core.ConnID]*PendingRequest
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[core.ConnID]*ConnEntry),
		pending: make(map[core.ConnID]*PendingRequest),
	}
}

// AddActive registers an auto-admitted connection.
func (r *Registry) AddActive(e *ConnEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.State = domain.Active
	r.conns[e.ID] = e
	log.Info().Str("module", "app.registry").Str("conn", string(e.ID)).
		Str("room", string(e.RoomID)).Str("identity", e.Identity).
		Str("role", string(e.Role)).Msg("connection active")
}

// AddGuest registers a non-allow-listed guest. The host scan and the
// insert share one critical section so concurrent joins observe each
// other. Returns the resulting state and, when pending, the ACTIVE
// host connections to prompt.
func (r *Registry) AddGuest(e *ConnEntry) (domain.AdmissionState, []connSnap) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosts := r.activeHostsLocked(e.RoomID)
	if len(hosts) > 0 {
		e.State = domain.PendingApproval
		r.conns[e.ID] = e
		r.pending[e.ID] = &PendingRequest{
			ConnID:      e.ID,
			Identity:    e.Identity,
			RoomID:      e.RoomID,
			RequestedAt: time.Now(),
		}
		log.Info().Str("module", "app.registry").Str("conn", string(e.ID)).
			Str("room", string(e.RoomID)).Str("identity", e.Identity).Msg("pending approval")
		return domain.PendingApproval, hosts
	}

	e.State = domain.WaitingForHost
	r.conns[e.ID] = e
	log.Info().Str("module", "app.registry").Str("conn", string(e.ID)).
		Str("room", string(e.RoomID)).Str("identity", e.Identity).Msg("waiting for host")
	return domain.WaitingForHost, nil
}

// Get returns a copy of the entry so callers never mutate live state.
func (r *Registry) Get(id core.ConnID) (ConnEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return ConnEntry{}, false
	}
	return *e, true
}

// Activate moves a PENDING_APPROVAL connection to ACTIVE and removes
// its pending request. Returns false if the connection is gone or no
// longer pending (the requester may have disconnected concurrently).
func (r *Registry) Activate(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.State != domain.PendingApproval {
		return false
	}
	e.State = domain.Active
	delete(r.pending, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("granted")
	return true
}

// Remove drops the connection and any pending request. The returned
// entry reflects the state at removal; hadPending tells the caller to
// retract the host prompt.
func (r *Registry) Remove(id core.ConnID) (entry ConnEntry, hadPending bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.conns[id]
	if !found {
		return ConnEntry{}, false, false
	}
	_, hadPending = r.pending[id]
	delete(r.pending, id)
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).
		Str("state", e.State.String()).Msg("connection removed")
	return *e, hadPending, true
}

// RemoveIfPending removes the connection only while it is still
// PENDING_APPROVAL. The re-check shares the write lock, so a grant
// that already activated the connection wins and the entry stays.
func (r *Registry) RemoveIfPending(id core.ConnID) (ConnEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.State != domain.PendingApproval {
		return ConnEntry{}, false
	}
	delete(r.pending, id)
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("pending connection removed")
	return *e, true
}

// RemoveIfWaiting removes the connection only while it still awaits a
// decision (PENDING_APPROVAL or WAITING_FOR_HOST). Same locking rule
// as RemoveIfPending: an ACTIVE entry is never touched.
func (r *Registry) RemoveIfWaiting(id core.ConnID) (entry ConnEntry, hadPending bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.conns[id]
	if !found || (e.State != domain.PendingApproval && e.State != domain.WaitingForHost) {
		return ConnEntry{}, false, false
	}
	_, hadPending = r.pending[id]
	delete(r.pending, id)
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).
		Str("state", e.State.String()).Msg("waiting connection removed")
	return *e, hadPending, true
}

// PromoteWaiting turns every WAITING_FOR_HOST connection in the room
// into PENDING_APPROVAL and returns the new pending requests.
func (r *Registry) PromoteWaiting(roomID domain.RoomID) []PendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PendingRequest
	for id, e := range r.conns {
		if e.RoomID != roomID || e.State != domain.WaitingForHost {
			continue
		}
		e.State = domain.PendingApproval
		req := &PendingRequest{ConnID: id, Identity: e.Identity, RoomID: roomID, RequestedAt: time.Now()}
		r.pending[id] = req
		out = append(out, *req)
	}
	return out
}

// PendingOf lists outstanding requests for a room, oldest first.
func (r *Registry) PendingOf(roomID domain.RoomID) []PendingRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PendingRequest
	for _, p := range r.pending {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	sortPending(out)
	return out
}

// ActiveOf snapshots the ACTIVE connections of a room.
func (r *Registry) ActiveOf(roomID domain.RoomID) []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []connSnap
	for _, e := range r.conns {
		if e.RoomID == roomID && e.State == domain.Active {
			out = append(out, connSnap{ID: e.ID, Identity: e.Identity, Role: e.Role, Sender: e.Sender})
		}
	}
	return out
}

// ActiveHosts snapshots the ACTIVE host connections of a room.
func (r *Registry) ActiveHosts(roomID domain.RoomID) []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeHostsLocked(roomID)
}

func (r *Registry) activeHostsLocked(roomID domain.RoomID) []connSnap {
	var out []connSnap
	for _, e := range r.conns {
		if e.RoomID == roomID && e.Role == domain.RoleHost && e.State == domain.Active {
			out = append(out, connSnap{ID: e.ID, Identity: e.Identity, Role: e.Role, Sender: e.Sender})
		}
	}
	return out
}

func sortPending(reqs []PendingRequest) {
	for i := 1; i < len(reqs); i++ {
		for j := i; j > 0 && reqs[j].RequestedAt.Before(reqs[j-1].RequestedAt); j-- {
			reqs[j], reqs[j-1] = reqs[j-1], reqs[j]
		}
	}
}
