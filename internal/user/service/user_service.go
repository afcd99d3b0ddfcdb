// Package service implements user registration and CRUD on top of the user
// repository.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/events"
	"github.com/monok8i/users-service/internal/security"
	"github.com/monok8i/users-service/internal/user/domain"
	"github.com/monok8i/users-service/internal/user/repository"
)

// Sentinel errors for the user service; the handler maps them to HTTP statuses.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = repository.ErrEmailTaken
)

// Repo is the minimal user repository needed by the user service.
type Repo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// UserService implements registration, lookup, update, activation, and deletion.
type UserService struct {
	repo     Repo
	hasher   *security.Hasher
	producer events.Producer
	logger   *zap.Logger
}

// NewUserService returns a UserService with the given dependencies.
// producer may be a NopProducer when notifications are disabled.
func NewUserService(repo Repo, hasher *security.Hasher, producer events.Producer, logger *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		producer: producer,
		logger:   logger.Named("user_service"),
	}
}

// Register creates a user with the given credentials and emits a
// user.registered event. The event is best-effort: a broker failure is logged
// and the registration still succeeds.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	event := &events.UserRegistered{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.Emit(ctx, event); err != nil {
		s.logger.Warn("registration event emit failed",
			zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns users ordered by id. limit is clamped to [1, 100].
func (s *UserService) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Email       *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// Update applies the non-nil fields of params to the user. A new password is
// re-hashed before storage.
func (s *UserService) Update(ctx context.Context, id int64, params UpdateParams) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil {
		email := domain.NormalizeEmail(*params.Email)
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if params.Password != nil {
		if err := domain.ValidatePassword(*params.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	if params.IsSuperuser != nil {
		user.IsSuperuser = *params.IsSuperuser
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Activate marks the user's email as confirmed.
func (s *UserService) Activate(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsActivated {
		return user, nil
	}
	user.IsActivated = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user. The refresh_sessions FK cascades, so any live
// session disappears with the account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(ctx, id)
}
