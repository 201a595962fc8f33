package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pairpad/pairpad/internal/domain"
)

// CreateSnippet stores a shared code link payload and returns it with
// its generated id.
func (p *Postgres) CreateSnippet(ctx context.Context, language, code, stdin string) (domain.Snippet, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO snippets (language, code, stdin)
		VALUES ($1, $2, $3)
		RETURNING id, language, code, stdin, created_at
	`, language, code, stdin)

	var s domain.Snippet
	if err := row.Scan(&s.ID, &s.Language, &s.Code, &s.Stdin, &s.CreatedAt); err != nil {
		return domain.Snippet{}, fmt.Errorf("snippet insert: %w", err)
	}
	return s, nil
}

// GetSnippet fetches a shared snippet by id.
func (p *Postgres) GetSnippet(ctx context.Context, id string) (domain.Snippet, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, language, code, stdin, created_at
		FROM snippets
		WHERE id = $1
	`, id)

	var s domain.Snippet
	if err := row.Scan(&s.ID, &s.Language, &s.Code, &s.Stdin, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Snippet{}, domain.ErrNotFound
		}
		return domain.Snippet{}, fmt.Errorf("snippet select: %w", err)
	}
	return s, nil
}
