// Package repository persists refresh sessions, keyed by the opaque token.
package repository

import (
	"context"
	"errors"

	"github.com/monok8i/users-service/internal/session/domain"
)

var (
	// ErrTokenConflict is returned by Create when the refresh token already
	// exists. Practically unreachable with 64-byte random tokens, but callers
	// must handle it rather than retry blindly.
	ErrTokenConflict = errors.New("refresh token already exists")
	// ErrUserHasSession is returned by Create when the user already holds a
	// session (the storage-level at-most-one-session-per-user constraint).
	ErrUserHasSession = errors.New("user already has a refresh session")
)

// Store defines persistence for refresh sessions.
type Store interface {
	// Create inserts a new session row and returns it with ID and timestamps set.
	Create(ctx context.Context, userID int64, refreshToken string, expiresIn int64) (*domain.RefreshSession, error)
	// GetByToken returns the session for the token, or nil if absent. No side effects.
	GetByToken(ctx context.Context, refreshToken string) (*domain.RefreshSession, error)
	// GetByUserID returns the user's session, or nil if the user has none.
	GetByUserID(ctx context.Context, userID int64) (*domain.RefreshSession, error)
	// Delete removes and returns the session for the token, or nil if absent.
	// Deleting an absent token is not an error.
	Delete(ctx context.Context, refreshToken string) (*domain.RefreshSession, error)
}
