package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/monok8i/users-service/internal/session/domain"
)

const (
	uniqueViolation   = "23505"
	tokenUniqueIndex  = "refresh_sessions_refresh_token_key"
	userIDUniqueIndex = "refresh_sessions_user_id_key"
	sessionColumns    = `id, refresh_token, user_id, expires_in, created_at, updated_at`
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a session store that uses the given pool for persistence.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new session row. Returns ErrTokenConflict or
// ErrUserHasSession depending on which unique index rejected the insert.
func (s *PostgresStore) Create(ctx context.Context, userID int64, refreshToken string, expiresIn int64) (*domain.RefreshSession, error) {
	var sess domain.RefreshSession
	err := s.pool.QueryRow(ctx,
		`INSERT INTO refresh_sessions (refresh_token, user_id, expires_in)
		 VALUES ($1, $2, $3)
		 RETURNING `+sessionColumns,
		refreshToken, userID, expiresIn,
	).Scan(&sess.ID, &sess.RefreshToken, &sess.UserID, &sess.ExpiresIn, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case userIDUniqueIndex:
				return nil, ErrUserHasSession
			case tokenUniqueIndex:
				return nil, ErrTokenConflict
			}
		}
		return nil, err
	}
	return &sess, nil
}

// GetByToken returns the session for the token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (s *PostgresStore) GetByToken(ctx context.Context, refreshToken string) (*domain.RefreshSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM refresh_sessions WHERE refresh_token = $1`, refreshToken)
	return scanSession(row)
}

// GetByUserID returns the user's session, or nil if the user has none.
func (s *PostgresStore) GetByUserID(ctx context.Context, userID int64) (*domain.RefreshSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM refresh_sessions WHERE user_id = $1`, userID)
	return scanSession(row)
}

// Delete removes and returns the session for the token, or nil if absent.
func (s *PostgresStore) Delete(ctx context.Context, refreshToken string) (*domain.RefreshSession, error) {
	row := s.pool.QueryRow(ctx,
		`DELETE FROM refresh_sessions WHERE refresh_token = $1 RETURNING `+sessionColumns,
		refreshToken)
	return scanSession(row)
}

func scanSession(row pgx.Row) (*domain.RefreshSession, error) {
	var sess domain.RefreshSession
	err := row.Scan(&sess.ID, &sess.RefreshToken, &sess.UserID, &sess.ExpiresIn, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}
