package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuth rejects requests that did not resolve a user with 401. It
// assumes ResolveSession ran earlier in the chain.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "unauthenticated",
					"message": "authentication required, please log in",
				})
			}
			return next(c)
		}
	}
}

// RequireAnonymous rejects requests that already carry an authenticated
// session. Login and registration run behind it so that an active session
// cannot be silently replaced by a different identity.
func RequireAnonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); ok {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":   "already_authenticated",
					"message": "you are already logged in",
				})
			}
			return next(c)
		}
	}
}

// RequireRole passes only users whose role is in the allowed set. Requests
// without a resolved user get 401; authenticated users with a different
// role get 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "unauthenticated",
					"message": "authentication required, please log in",
				})
			}
			if !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":   "forbidden",
					"message": "insufficient role",
				})
			}
			return next(c)
		}
	}
}
