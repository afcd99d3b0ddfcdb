package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/events"
	"github.com/monok8i/users-service/internal/security"
	"github.com/monok8i/users-service/internal/server/middleware"
	"github.com/monok8i/users-service/internal/user/domain"
	"github.com/monok8i/users-service/internal/user/repository"
	"github.com/monok8i/users-service/internal/user/service"
)

type fakeRepo struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for id := int64(1); id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type env struct {
	router *gin.Engine
	repo   *fakeRepo
	codec  *security.TokenCodec
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := security.NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	repo := newFakeRepo()
	svc := service.NewUserService(repo, security.NewHasher(4), events.NopProducer{}, zap.NewNop())

	r := gin.New()
	public := r.Group("/api/v1/users")
	authed := r.Group("/api/v1/users", middleware.RequireAuth(codec, zap.NewNop()))
	NewUserHandler(svc, zap.NewNop()).Register(public, authed)

	return &env{router: r, repo: repo, codec: codec}
}

func (e *env) seed(t *testing.T, email string, superuser bool) *domain.User {
	t.Helper()
	hashed, err := security.NewHasher(4).Hash("pw123456")
	require.NoError(t, err)
	u := &domain.User{Email: email, HashedPassword: hashed, IsActive: true, IsSuperuser: superuser}
	require.NoError(t, e.repo.Create(context.Background(), u))
	return u
}

func (e *env) tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.codec.Encode(strconv.FormatInt(userID, 10))
	require.NoError(t, err)
	return token
}

func (e *env) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/v1/users",
		`{"email":"alice@example.com","password":"pw123456"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.True(t, resp.IsActive)
	assert.NotContains(t, w.Body.String(), "password", "response must not leak password material")
}

func TestCreateUser_Errors(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "taken@example.com", false)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "duplicate email", body: `{"email":"taken@example.com","password":"pw123456"}`, code: http.StatusConflict},
		{name: "bad email", body: `{"email":"nope","password":"pw123456"}`, code: http.StatusBadRequest},
		{name: "short password", body: `{"email":"new@example.com","password":"short"}`, code: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/v1/users", tt.body, "")
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)

	w := e.do(http.MethodGet, "/api/v1/users/me", "", e.tokenFor(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, alice.ID, resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)
}

func TestMe_Unauthenticated(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_DeletedUser(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	token := e.tokenFor(t, alice.ID)
	require.NoError(t, e.repo.Delete(context.Background(), alice.ID))

	w := e.do(http.MethodGet, "/api/v1/users/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code,
		"a valid token for a deleted user must not authenticate")
}

func TestGetUser_Authorization(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	bob := e.seed(t, "bob@example.com", false)
	admin := e.seed(t, "admin@example.com", true)

	// A user can read themselves.
	w := e.do(http.MethodGet, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10), "", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	// But not another user.
	w = e.do(http.MethodGet, "/api/v1/users/"+strconv.FormatInt(bob.ID, 10), "", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A superuser can read anyone.
	w = e.do(http.MethodGet, "/api/v1/users/"+strconv.FormatInt(bob.ID, 10), "", e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	// Unknown target is 404 for a superuser.
	w = e.do(http.MethodGet, "/api/v1/users/999", "", e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id is 400.
	w = e.do(http.MethodGet, "/api/v1/users/abc", "", e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	admin := e.seed(t, "admin@example.com", true)

	w := e.do(http.MethodGet, "/api/v1/users", "", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/v1/users", "", e.tokenFor(t, admin.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []userResponse `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)
}

func TestListUsers_QueryParams(t *testing.T) {
	e := newEnv(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		e.seed(t, email, false)
	}
	admin := e.seed(t, "admin@example.com", true)
	token := e.tokenFor(t, admin.ID)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "explicit limit", query: "?limit=2", want: 2},
		{name: "offset past some rows", query: "?limit=10&offset=3", want: 1},
		{name: "garbage limit falls back to default", query: "?limit=abc", want: 4},
		{name: "garbage offset falls back to zero", query: "?offset=nope", want: 4},
		{name: "no params", query: "", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodGet, "/api/v1/users"+tt.query, "", token)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Users []userResponse `json:"users"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Users, tt.want)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	admin := e.seed(t, "admin@example.com", true)

	// Self update of email.
	w := e.do(http.MethodPatch, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10),
		`{"email":"alice2@example.com"}`, e.tokenFor(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice2@example.com", resp.Email)

	// A regular user cannot grant themselves superuser.
	w = e.do(http.MethodPatch, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10),
		`{"is_superuser":true}`, e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A superuser can.
	w = e.do(http.MethodPatch, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10),
		`{"is_superuser":true}`, e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActivateUser(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	admin := e.seed(t, "admin@example.com", true)

	w := e.do(http.MethodPost, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10)+"/activate",
		"", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10)+"/activate",
		"", e.tokenFor(t, admin.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsActivated)
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	alice := e.seed(t, "alice@example.com", false)
	bob := e.seed(t, "bob@example.com", false)
	admin := e.seed(t, "admin@example.com", true)

	w := e.do(http.MethodDelete, "/api/v1/users/"+strconv.FormatInt(bob.ID, 10), "", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodDelete, "/api/v1/users/"+strconv.FormatInt(bob.ID, 10), "", e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodDelete, "/api/v1/users/"+strconv.FormatInt(bob.ID, 10), "", e.tokenFor(t, admin.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Self delete.
	w = e.do(http.MethodDelete, "/api/v1/users/"+strconv.FormatInt(alice.ID, 10), "", e.tokenFor(t, alice.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
