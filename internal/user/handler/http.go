// Package handler exposes user management over HTTP. Responses never include
// the hashed password.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/server/middleware"
	"github.com/monok8i/users-service/internal/user/domain"
	"github.com/monok8i/users-service/internal/user/service"
)

// UserHandler handles registration and user CRUD requests.
type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

// NewUserHandler returns a UserHandler.
func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.Named("user_handler"),
	}
}

// Register mounts the user routes. public carries no authentication;
// authed must already run the bearer-token middleware.
func (h *UserHandler) Register(public, authed *gin.RouterGroup) {
	public.POST("", h.Create)
	authed.GET("", h.List)
	authed.GET("/me", h.Me)
	authed.GET("/:id", h.Get)
	authed.PATCH("/:id", h.Update)
	authed.POST("/:id/activate", h.Activate)
	authed.DELETE("/:id", h.Delete)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActivated bool      `json:"is_activated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsActivated: u.IsActivated,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Create registers a new user.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, toResponse(user))
}

// List returns a page of users. Superusers only.
// GET /api/v1/users?limit=&offset=
func (h *UserHandler) List(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	if !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
		return
	}

	limit := queryInt32(c, "limit", 20)
	offset := queryInt32(c, "offset", 0)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Me returns the authenticated user.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponse(requester))
}

// Get returns one user. A user may read themselves; superusers may read
// anyone.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, requester, ok := h.target(c)
	if !ok {
		return
	}
	if requester.ID != id && !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(user))
}

// Update applies a partial update. Only superusers may change is_active or
// is_superuser.
// PATCH /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, requester, ok := h.target(c)
	if !ok {
		return
	}
	if requester.ID != id && !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if (req.IsActive != nil || req.IsSuperuser != nil) && !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, service.UpdateParams{
		Email:       req.Email,
		Password:    req.Password,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("update user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, toResponse(user))
}

// Activate marks the user's email as confirmed. Superusers only.
// POST /api/v1/users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	id, requester, ok := h.target(c)
	if !ok {
		return
	}
	if !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
		return
	}

	user, err := h.users.Activate(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(user))
}

// Delete removes a user and, via the FK cascade, their refresh session.
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, requester, ok := h.target(c)
	if !ok {
		return
	}
	if requester.ID != id && !requester.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requester loads the authenticated user; aborts with 401 when the token
// subject no longer exists.
func (h *UserHandler) requester(c *gin.Context) (*domain.User, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return nil, false
		}
		h.logger.Error("load requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return user, true
}

// target parses the :id path parameter and loads the requester.
func (h *UserHandler) target(c *gin.Context) (int64, *domain.User, bool) {
	requester, ok := h.requester(c)
	if !ok {
		return 0, nil, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, nil, false
	}
	return id, requester, true
}

func (h *UserHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	h.logger.Error("user lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrValidation)
}

// queryInt32 reads an int32 query parameter, falling back to def when the
// parameter is absent or not a number.
func queryInt32(c *gin.Context, name string, def int32) int32 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}
