package domain

import "time"

// RefreshSession binds an opaque refresh token to a user and its expiry.
// The liveness window is [CreatedAt, CreatedAt+ExpiresIn).
type RefreshSession struct {
	ID           int64
	RefreshToken string
	UserID       int64
	ExpiresIn    int64 // seconds from CreatedAt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExpiresAt returns the instant the session stops being valid.
func (s *RefreshSession) ExpiresAt() time.Time {
	return s.CreatedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// Expired reports whether the session is past its liveness window at now.
func (s *RefreshSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}
