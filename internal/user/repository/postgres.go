package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/monok8i/users-service/internal/user/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a user repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, hashed_password, is_active, is_superuser, is_activated, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// Lookup is case-insensitive. It returns an error only for database failures.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// List returns users ordered by id with limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive,
			&u.IsSuperuser, &u.IsActivated, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// Create inserts the user and sets its assigned ID, created_at, and updated_at.
// Returns ErrEmailTaken when the email unique index is violated.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, hashed_password, is_active, is_superuser, is_activated)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.HashedPassword, u.IsActive, u.IsSuperuser, u.IsActivated,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Update rewrites the mutable columns of the user row and bumps updated_at.
// Returns ErrEmailTaken when the new email collides with another user.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET email = $2, hashed_password = $3, is_active = $4, is_superuser = $5,
		     is_activated = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		u.ID, u.Email, u.HashedPassword, u.IsActive, u.IsSuperuser, u.IsActivated,
	).Scan(&u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// Delete removes the user. Deleting an absent user is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive,
		&u.IsSuperuser, &u.IsActivated, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
