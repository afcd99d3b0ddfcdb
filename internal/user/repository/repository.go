// Package repository persists users in Postgres.
package repository

import (
	"context"
	"errors"

	"github.com/monok8i/users-service/internal/user/domain"
)

// ErrEmailTaken is returned by Create and Update when the email is already
// registered to another user.
var ErrEmailTaken = errors.New("email already registered")

// Repository defines persistence for users.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail returns the user with the given email (case-insensitive), or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users ordered by id with limit and offset.
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)
	// Create inserts the user and sets its assigned ID and timestamps.
	Create(ctx context.Context, u *domain.User) error
	// Update rewrites the mutable columns of the user row.
	Update(ctx context.Context, u *domain.User) error
	// Delete removes the user. Deleting an absent user is not an error.
	Delete(ctx context.Context, id int64) error
}
