package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/model"
)

// Deps bundles everything route registration needs. The session resolver
// runs globally so that every handler, including the public ones, can see
// the current identity; the guards are applied per group.
type Deps struct {
	Auth     *handler.AuthHandler
	Items    *handler.ItemHandler
	Users    *handler.UserHandler
	Resolve  echo.MiddlewareFunc // session resolution (middleware.ResolveSession)
	AuthRate echo.MiddlewareFunc // rate limiter for the auth group, may be nil
}

// Register wires all application routes onto the Echo instance.
func Register(e *echo.Echo, d Deps) {
	// Health endpoint for load balancers and monitoring; no session needed.
	e.GET("/healthz", handler.Health)

	e.Use(d.Resolve)

	// Auth endpoints live under /v1/auth. Registration and local login are
	// guarded by RequireAnonymous so an active session cannot be replaced
	// by a different identity; logout, me and the OAuth callback work in
	// either state.
	authGroup := e.Group("/v1/auth")
	if d.AuthRate != nil {
		authGroup.Use(d.AuthRate)
	}
	authGroup.POST("/register", d.Auth.Register, middleware.RequireAnonymous())
	authGroup.POST("/login", d.Auth.Login, middleware.RequireAnonymous())
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.GET("/me", d.Auth.Me)
	authGroup.GET("/failure", d.Auth.OAuthFailure)
	authGroup.GET("/status", d.Auth.OAuthStatus)
	authGroup.GET("/:provider", d.Auth.OAuthStart, middleware.RequireAnonymous())
	authGroup.GET("/:provider/callback", d.Auth.OAuthCallback)

	// Item reads are public; writes require an admin or vendor session.
	e.GET("/v1/items", d.Items.List)
	e.GET("/v1/items/:id", d.Items.Get)

	itemWrites := e.Group("/v1/items")
	itemWrites.Use(middleware.RequireRole(model.RoleAdmin, model.RoleVendor))
	itemWrites.POST("", d.Items.Create)
	itemWrites.PUT("/:id", d.Items.Update)
	itemWrites.DELETE("/:id", d.Items.Delete)

	// User administration is admin-only.
	users := e.Group("/v1/users")
	users.Use(middleware.RequireRole(model.RoleAdmin))
	users.GET("", d.Users.List)
	users.GET("/:id", d.Users.Get)
	users.PATCH("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)
}
