// Package domain contains plain entities and shared constants.
// No transport, storage or lifecycle logic here.
package domain

import "time"

type RoomID string

const MaxRoomIDLen = 64

// Participant is an identity on a room's persisted allow-list.
type Participant struct {
	Identity string    `json:"identity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Room is a named collaboration session. The host is fixed at creation
// and never reassigned; the participant list is append-only.
type Room struct {
	ID           RoomID        `json:"roomId"`
	HostIdentity string        `json:"host"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (r *Room) IsHost(identity string) bool {
	return identity != "" && identity == r.HostIdentity
}

func (r *Room) IsParticipant(identity string) bool {
	for _, p := range r.Participants {
		if p.Identity == identity {
			return true
		}
	}
	return false
}
