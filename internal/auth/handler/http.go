// Package handler exposes the authentication service over HTTP. Access tokens
// travel in the response body, refresh tokens in an http-only cookie scoped to
// the auth routes.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/auth/service"
	"github.com/monok8i/users-service/internal/security"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler handles login, refresh, and logout requests.
type AuthHandler struct {
	auth       *service.AuthService
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthHandler returns an AuthHandler. refreshTTL sets the refresh cookie
// lifetime and must match the session TTL the service was built with.
func NewAuthHandler(auth *service.AuthService, refreshTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		refreshTTL: refreshTTL,
		logger:     logger.Named("auth_handler"),
	}
}

// Register mounts the auth routes on the given group.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates the credentials, sets the refresh cookie, and returns
// the access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	pair, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, int(h.refreshTTL/time.Second))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
	})
}

// Refresh exchanges the refresh cookie for a new access token. The cookie is
// not rotated. A stale or unknown cookie is cleared along with the error.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, security.ErrInvalidToken):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		case errors.Is(err, service.ErrTokenExpired), errors.Is(err, security.ErrTokenExpired):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
		case errors.Is(err, service.ErrUserNotFound):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("refresh failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
	})
}

// Logout deletes the refresh session and clears the cookie. It always
// succeeds, even without a cookie.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, "", false, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", false, true)
}
