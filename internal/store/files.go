package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pairpad/pairpad/internal/domain"
)

// ListFiles returns a room's files ordered by folder then name.
func (p *Postgres) ListFiles(ctx context.Context, roomID domain.RoomID) ([]domain.File, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, room_id, name, language, folder, content, created_at, updated_at
		FROM files
		WHERE room_id = $1
		ORDER BY folder, name
	`, string(roomID))
	if err != nil {
		return nil, fmt.Errorf("files select: %w", err)
	}
	defer rows.Close()

	var out []domain.File
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.ID, &f.RoomID, &f.Name, &f.Language, &f.Folder, &f.Content, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFile inserts an empty workspace file.
func (p *Postgres) CreateFile(ctx context.Context, roomID domain.RoomID, name, language, folder string) (domain.File, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO files (room_id, name, language, folder, content)
		VALUES ($1, $2, $3, $4, '')
		RETURNING id, room_id, name, language, folder, content, created_at, updated_at
	`, string(roomID), name, language, folder)

	var f domain.File
	if err := row.Scan(&f.ID, &f.RoomID, &f.Name, &f.Language, &f.Folder, &f.Content, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.File{}, fmt.Errorf("file insert: %w", err)
	}
	return f, nil
}

// SaveFile replaces the file content (autosave path).
func (p *Postgres) SaveFile(ctx context.Context, id, content string) (domain.File, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE files
		SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, room_id, name, language, folder, content, created_at, updated_at
	`, id, content)

	var f domain.File
	if err := row.Scan(&f.ID, &f.RoomID, &f.Name, &f.Language, &f.Folder, &f.Content, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.File{}, domain.ErrNotFound
		}
		return domain.File{}, fmt.Errorf("file update: %w", err)
	}
	return f, nil
}

// DeleteFile removes a file by id.
func (p *Postgres) DeleteFile(ctx context.Context, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("file delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
