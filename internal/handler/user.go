package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

// UserStore is the slice of the user repository the admin endpoints depend
// on. *repository.UserRepo satisfies it.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

// UserHandler implements the admin-facing users CRUD endpoints. The auth
// flows never touch these; account deletion and role changes live here.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{Users: users}
}

type userUpdateReq struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		c.Logger().Errorf("list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not list users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(users), "users": users})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "user not found"})
		}
		c.Logger().Errorf("get user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Update handles PATCH /v1/users/:id. Only supplied fields change; email and
// password are not updatable through this endpoint.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "user not found"})
		}
		c.Logger().Errorf("load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not load user"})
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if !validUsername(name) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "username must be 3-30 characters (letters, digits, . _ -)"})
		}
		u.Username = name
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !model.ValidRole(role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "role must be one of: customer, admin, vendor"})
		}
		u.Role = role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already_exists", "message": "username already exists"})
		}
		c.Logger().Errorf("update user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not update user"})
	}

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		updated = u
	}
	return c.JSON(http.StatusOK, echo.Map{"user": updated})
}

// Delete handles DELETE /v1/users/:id. Admins cannot delete their own
// account through this endpoint; that guard avoids locking out the last
// administrator mid-session.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}
	if me, ok := middleware.CurrentUser(c); ok && me.ID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "user not found"})
		}
		c.Logger().Errorf("delete user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not delete user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
