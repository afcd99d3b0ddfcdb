package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type mockPinger struct {
	pingErr error
}

func (m *mockPinger) Ping(context.Context) error {
	return m.pingErr
}

func probe(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLive(t *testing.T) {
	w := probe(NewHandler(nil), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady_NilPinger(t *testing.T) {
	w := probe(NewHandler(nil), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady_DatabaseUp(t *testing.T) {
	w := probe(NewHandler(&mockPinger{}), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady_DatabaseDown(t *testing.T) {
	w := probe(NewHandler(&mockPinger{pingErr: errors.New("connection refused")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database unreachable")
}
