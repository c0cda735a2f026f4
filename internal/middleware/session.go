package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/session"
)

// userContextKey is where ResolveSession stores the authenticated user.
// Handlers and downstream middleware read it through CurrentUser.
const userContextKey = "user"

// UserLoader fetches the full user record behind a session. It is the only
// piece of the user repository this middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ResolveSession returns a middleware that reads the session cookie, resolves
// the token through the session store, and loads the full user record into
// the request context. Every failure path (no cookie, unknown token, user
// row gone, inactive account) leaves the request anonymous and continues;
// resolution itself never rejects a request. Rejection is the job of
// RequireAuth and friends.
func ResolveSession(cookieName string, store *session.Store, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			uid, err := store.Resolve(ctx, cookie.Value)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					c.Logger().Errorf("session resolve: %v", err)
				}
				return next(c)
			}

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				// The account behind the session no longer resolves. Drop the
				// stale session and treat the request as anonymous.
				if errors.Is(err, repository.ErrNotFound) {
					_ = store.Destroy(ctx, cookie.Value)
				} else {
					c.Logger().Errorf("session user load: %v", err)
				}
				return next(c)
			}
			if !u.IsActive {
				return next(c)
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved for this request, if any.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}
