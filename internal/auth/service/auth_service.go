// Package service implements the access/refresh token lifecycle: credential
// authentication, access-token issuance, refresh-session reuse and expiry, and
// logout.
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/audit"
	auditdomain "github.com/monok8i/users-service/internal/audit/domain"
	"github.com/monok8i/users-service/internal/security"
	sessiondomain "github.com/monok8i/users-service/internal/session/domain"
	sessionrepo "github.com/monok8i/users-service/internal/session/repository"
	userdomain "github.com/monok8i/users-service/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response never reveals which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a refresh token is unknown to the store.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrTokenExpired is returned when a refresh session is past its liveness
	// window; the stale record is deleted before the error is raised.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrUserNotFound is returned on refresh when the owning user was deleted
	// after the session was created.
	ErrUserNotFound = errors.New("user not found")
)

// UserDirectory is the read-only user lookup needed by the auth service.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}

// TokenPair is the outcome of a successful Authenticate or Refresh. The
// transport sends AccessToken as a bearer header value and RefreshToken as an
// http-only cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// AuthService orchestrates credential verification, access-token issuance,
// refresh-session lifecycle, and logout. It holds no mutable state between
// requests.
type AuthService struct {
	users      UserDirectory
	sessions   sessionrepo.Store
	hasher     *security.Hasher
	codec      *security.TokenCodec
	refreshTTL time.Duration
	tokenType  string
	auditor    audit.Recorder
	logger     *zap.Logger
	now        func() time.Time

	logins    metric.Int64Counter
	refreshes metric.Int64Counter
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be nil to disable the audit trail.
func NewAuthService(
	users UserDirectory,
	sessions sessionrepo.Store,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	refreshTTL time.Duration,
	tokenType string,
	auditor audit.Recorder,
	logger *zap.Logger,
) *AuthService {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	meter := otel.Meter("users-service/auth")
	logins, _ := meter.Int64Counter("auth.logins",
		metric.WithDescription("Successful credential authentications"))
	refreshes, _ := meter.Int64Counter("auth.refreshes",
		metric.WithDescription("Successful access-token refreshes"))
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		codec:      codec,
		refreshTTL: refreshTTL,
		tokenType:  tokenType,
		auditor:    auditor,
		logger:     logger.Named("auth_service"),
		now:        func() time.Time { return time.Now().UTC() },
		logins:     logins,
		refreshes:  refreshes,
	}
}

// Authenticate verifies the credentials and returns an access token plus the
// user's refresh token. A live session is reused unrotated; an expired one is
// replaced; a missing one is created. Unknown email, wrong password, and an
// inactive account all collapse to ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	email = userdomain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.auditor.Record(ctx, 0, auditdomain.ActionLoginFailed, email)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.HashedPassword) || !user.IsActive {
		s.auditor.Record(ctx, user.ID, auditdomain.ActionLoginFailed, email)
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if sess != nil && sess.Expired(s.now()) {
		if _, err := s.sessions.Delete(ctx, sess.RefreshToken); err != nil {
			return nil, err
		}
		sess = nil
	}
	if sess == nil {
		sess, err = s.createSession(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}

	access, err := s.codec.Encode(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, err
	}

	s.logins.Add(ctx, 1)
	s.auditor.Record(ctx, user.ID, auditdomain.ActionLogin, "")
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: sess.RefreshToken,
		TokenType:    s.tokenType,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated. An expired session is deleted before
// ErrTokenExpired is returned, so the next call sees the token as absent.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	sess, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidToken
	}
	if sess.Expired(s.now()) {
		if _, err := s.sessions.Delete(ctx, refreshToken); err != nil {
			return nil, err
		}
		return nil, ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	access, err := s.codec.Encode(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, err
	}

	s.refreshes.Add(ctx, 1)
	s.auditor.Record(ctx, user.ID, auditdomain.ActionRefresh, "")
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    s.tokenType,
	}, nil
}

// Logout deletes the session for the token. Missing or unknown tokens are a
// no-op so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	deleted, err := s.sessions.Delete(ctx, refreshToken)
	if err != nil {
		return err
	}
	if deleted != nil {
		s.auditor.Record(ctx, deleted.UserID, auditdomain.ActionLogout, "")
	}
	return nil
}

// createSession mints a fresh refresh token and persists it. A token collision
// retries with a new token; losing the concurrent-login race on the user_id
// constraint reuses the winner's session instead of failing the login.
func (s *AuthService) createSession(ctx context.Context, userID int64) (*sessiondomain.RefreshSession, error) {
	expiresIn := int64(s.refreshTTL / time.Second)
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		token, err := security.NewRefreshToken()
		if err != nil {
			return nil, err
		}
		sess, err := s.sessions.Create(ctx, userID, token, expiresIn)
		if err == nil {
			return sess, nil
		}
		if errors.Is(err, sessionrepo.ErrUserHasSession) {
			existing, getErr := s.sessions.GetByUserID(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil && !existing.Expired(s.now()) {
				return existing, nil
			}
			// The racing session vanished or is stale; try again.
			lastErr = err
			continue
		}
		if errors.Is(err, sessionrepo.ErrTokenConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}
