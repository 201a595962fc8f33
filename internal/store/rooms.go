package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pairpad/pairpad/internal/domain"
)

// GetOrCreate resolves a room, creating it with the requesting identity
// as host when absent. Idempotent: a concurrent insert loses the race
// and reads the winner's row.
func (p *Postgres) GetOrCreate(ctx context.Context, roomID domain.RoomID, identity string) (*domain.Room, error) {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, host_identity)
		VALUES ($1, $2)
		ON CONFLICT (room_id) DO NOTHING
	`, string(roomID), identity)
	if err != nil {
		return nil, fmt.Errorf("room upsert: %w", err)
	}
	return p.GetRoom(ctx, roomID)
}

// GetRoom loads a room with its full participant list.
func (p *Postgres) GetRoom(ctx context.Context, roomID domain.RoomID) (*domain.Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT room_id, host_identity, created_at
		FROM rooms
		WHERE room_id = $1
	`, string(roomID))

	var r domain.Room
	if err := row.Scan(&r.ID, &r.HostIdentity, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("room select: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT identity, added_at
		FROM room_participants
		WHERE room_id = $1
		ORDER BY added_at
	`, string(roomID))
	if err != nil {
		return nil, fmt.Errorf("participants select: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var part domain.Participant
		if err := rows.Scan(&part.Identity, &part.AddedAt); err != nil {
			return nil, err
		}
		r.Participants = append(r.Participants, part)
	}
	return &r, rows.Err()
}

// CreateRoom inserts a new room, failing when the id is taken.
func (p *Postgres) CreateRoom(ctx context.Context, roomID domain.RoomID, hostIdentity string) (*domain.Room, error) {
	ct, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, host_identity)
		VALUES ($1, $2)
		ON CONFLICT (room_id) DO NOTHING
	`, string(roomID), hostIdentity)
	if err != nil {
		return nil, fmt.Errorf("room insert: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrRoomTaken
	}
	return p.GetRoom(ctx, roomID)
}

// AddParticipant appends an identity to the room's allow-list.
// Idempotent set-union; an identity already present is left untouched.
func (p *Postgres) AddParticipant(ctx context.Context, roomID domain.RoomID, identity string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO room_participants (room_id, identity)
		VALUES ($1, $2)
		ON CONFLICT (room_id, identity) DO NOTHING
	`, string(roomID), identity)
	if err != nil {
		return fmt.Errorf("participant insert: %w", err)
	}
	return nil
}
