package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authservice "github.com/monok8i/users-service/internal/auth/service"
	"github.com/monok8i/users-service/internal/events"
	"github.com/monok8i/users-service/internal/security"
	sessionrepo "github.com/monok8i/users-service/internal/session/repository"
	userdomain "github.com/monok8i/users-service/internal/user/domain"
	userservice "github.com/monok8i/users-service/internal/user/service"
)

type emptyDirectory struct{}

func (emptyDirectory) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return nil, nil
}

func (emptyDirectory) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	return nil, nil
}

type emptyRepo struct{}

func (emptyRepo) GetByID(ctx context.Context, id int64) (*userdomain.User, error) { return nil, nil }
func (emptyRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return nil, nil
}
func (emptyRepo) List(ctx context.Context, limit, offset int32) ([]*userdomain.User, error) {
	return nil, nil
}
func (emptyRepo) Create(ctx context.Context, u *userdomain.User) error { return nil }
func (emptyRepo) Update(ctx context.Context, u *userdomain.User) error { return nil }
func (emptyRepo) Delete(ctx context.Context, id int64) error           { return nil }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := security.NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	hasher := security.NewHasher(4)
	logger := zap.NewNop()

	return NewRouter(Deps{
		Auth: authservice.NewAuthService(emptyDirectory{}, sessionrepo.NewMemoryStore(),
			hasher, codec, time.Hour, "bearer", nil, logger),
		Users:      userservice.NewUserService(emptyRepo{}, hasher, events.NopProducer{}, logger),
		Codec:      codec,
		RefreshTTL: time.Hour,
		Logger:     logger,
	})
}

func TestRouterRoutes(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		code   int
	}{
		{name: "liveness", method: http.MethodGet, path: "/healthz", code: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/readyz", code: http.StatusOK},
		{name: "login mounted", method: http.MethodPost, path: "/api/v1/auth/login", code: http.StatusBadRequest},
		{name: "refresh mounted", method: http.MethodPost, path: "/api/v1/auth/refresh", code: http.StatusUnauthorized},
		{name: "logout mounted", method: http.MethodPost, path: "/api/v1/auth/logout", code: http.StatusNoContent},
		{name: "register mounted", method: http.MethodPost, path: "/api/v1/users", code: http.StatusBadRequest},
		{name: "users list requires auth", method: http.MethodGet, path: "/api/v1/users", code: http.StatusUnauthorized},
		{name: "me requires auth", method: http.MethodGet, path: "/api/v1/users/me", code: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/nope", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
