package repository

import (
	"context"
	"sync"
	"time"

	"github.com/monok8i/users-service/internal/session/domain"
)

// MemoryStore is an in-memory Store implementation for tests and local
// development without Postgres. It enforces the same uniqueness rules as the
// database schema.
type MemoryStore struct {
	mu      sync.Mutex
	byToken map[string]*domain.RefreshSession
	byUser  map[int64]*domain.RefreshSession
	nextID  int64
	nowF    func() time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]*domain.RefreshSession),
		byUser:  make(map[int64]*domain.RefreshSession),
		nowF:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the store's clock. For tests only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowF = now
}

// Create inserts a new session. Returns ErrTokenConflict or ErrUserHasSession
// under the same conditions as the Postgres schema.
func (s *MemoryStore) Create(ctx context.Context, userID int64, refreshToken string, expiresIn int64) (*domain.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byToken[refreshToken]; ok {
		return nil, ErrTokenConflict
	}
	if _, ok := s.byUser[userID]; ok {
		return nil, ErrUserHasSession
	}

	s.nextID++
	now := s.nowF()
	sess := &domain.RefreshSession{
		ID:           s.nextID,
		RefreshToken: refreshToken,
		UserID:       userID,
		ExpiresIn:    expiresIn,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byToken[refreshToken] = sess
	s.byUser[userID] = sess

	out := *sess
	return &out, nil
}

// GetByToken returns the session for the token, or nil if absent.
func (s *MemoryStore) GetByToken(ctx context.Context, refreshToken string) (*domain.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[refreshToken]
	if !ok {
		return nil, nil
	}
	out := *sess
	return &out, nil
}

// GetByUserID returns the user's session, or nil if the user has none.
func (s *MemoryStore) GetByUserID(ctx context.Context, userID int64) (*domain.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	out := *sess
	return &out, nil
}

// Delete removes and returns the session for the token, or nil if absent.
func (s *MemoryStore) Delete(ctx context.Context, refreshToken string) (*domain.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[refreshToken]
	if !ok {
		return nil, nil
	}
	delete(s.byToken, refreshToken)
	delete(s.byUser, sess.UserID)

	out := *sess
	return &out, nil
}
