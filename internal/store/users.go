package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pairpad/pairpad/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

func normUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// CreateUser inserts an account with a bcrypt password hash.
func (p *Postgres) CreateUser(ctx context.Context, username, email, password string) (domain.User, error) {
	username = normUsername(username)
	if !domain.ValidIdentity(username) || password == "" {
		return domain.User{}, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, created_at
	`, username, email, string(hash))

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetUser returns the account and its password hash for verification.
func (p *Postgres) GetUser(ctx context.Context, username string) (domain.User, string, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`, normUsername(username))

	var u domain.User
	var hash string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &hash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, "", domain.ErrNotFound
		}
		return domain.User{}, "", err
	}
	return u, hash, nil
}

// VerifyUser checks a username and password pair.
func (p *Postgres) VerifyUser(ctx context.Context, username, password string) (domain.User, error) {
	u, hash, err := p.GetUser(ctx, username)
	if err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}
