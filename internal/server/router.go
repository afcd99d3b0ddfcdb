// Package server assembles the gin engine and runs the HTTP server.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authhandler "github.com/monok8i/users-service/internal/auth/handler"
	authservice "github.com/monok8i/users-service/internal/auth/service"
	healthhandler "github.com/monok8i/users-service/internal/health/handler"
	"github.com/monok8i/users-service/internal/security"
	"github.com/monok8i/users-service/internal/server/middleware"
	userhandler "github.com/monok8i/users-service/internal/user/handler"
	userservice "github.com/monok8i/users-service/internal/user/service"
)

// Deps holds the services the router exposes.
type Deps struct {
	Auth  *authservice.AuthService
	Users *userservice.UserService
	// Codec validates access tokens for the authenticated routes.
	Codec *security.TokenCodec
	// RefreshTTL sets the refresh cookie lifetime.
	RefreshTTL time.Duration
	// HealthPinger is used by the readiness probe (e.g. *pgxpool.Pool). May be nil.
	HealthPinger healthhandler.Pinger
	Logger       *zap.Logger
}

// NewRouter builds the gin engine with all routes mounted.
//
// Route → handler mapping:
//   - /healthz, /readyz       → internal/health/handler
//   - /api/v1/auth/*          → internal/auth/handler
//   - /api/v1/users*          → internal/user/handler
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.ClientInfo())

	healthhandler.NewHandler(deps.HealthPinger).Register(r)

	auth := r.Group("/api/v1/auth")
	authhandler.NewAuthHandler(deps.Auth, deps.RefreshTTL, deps.Logger).Register(auth)

	public := r.Group("/api/v1/users")
	authed := r.Group("/api/v1/users", middleware.RequireAuth(deps.Codec, deps.Logger))
	userhandler.NewUserHandler(deps.Users, deps.Logger).Register(public, authed)

	return r
}
