package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/auth"
	"github.com/iliyamo/storefront/internal/config"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/service"
	"github.com/iliyamo/storefront/internal/session"
)

const stateCookieName = "oauth_state"

// AuthHandler bundles dependencies for the auth endpoints: registration,
// local login, OAuth start/callback, logout and identity introspection.
type AuthHandler struct {
	Cfg       config.Config
	Auth      *auth.Service
	Sessions  *session.Store
	Providers map[string]*auth.Provider

	// Publish emits audit events; defaults to the RabbitMQ publisher and is
	// replaceable in tests.
	Publish func(ctx context.Context, ev queue.AuthEvent) error
}

func NewAuthHandler(cfg config.Config, svc *auth.Service, sessions *session.Store, providers map[string]*auth.Provider) *AuthHandler {
	return &AuthHandler{
		Cfg:       cfg,
		Auth:      svc,
		Sessions:  sessions,
		Providers: providers,
		Publish:   service.PublishAuthEvent,
	}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register: create a local account, establish a session and return the
// identity. The password (and its hash) never appears in the response.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if !validUsername(req.Username) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "username must be 3-30 characters (letters, digits, . _ -)"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "a valid email is required"})
	}
	if !validPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "password must be at least 8 characters with a lowercase letter, an uppercase letter and a digit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already_exists", "message": "user already exists"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not create user"})
	}

	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("register session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not establish session"})
	}
	h.setSessionCookie(c, token)
	h.publishEvent(queue.EventUserRegistered, u.ID, u.Username, u.Email, "", c.RealIP())

	return c.JSON(http.StatusCreated, echo.Map{"message": "registration successful", "user": u})
}

// Login: verify email/password and establish a session. Unknown accounts and
// wrong passwords share one undifferentiated 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.VerifyLocal(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "invalid email or password"})
		case errors.Is(err, auth.ErrOAuthOnly):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "oauth_only_account", "message": "this account signs in with an oauth provider"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "login failed"})
	}

	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("login session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not establish session"})
	}
	h.setSessionCookie(c, token)
	h.publishEvent(queue.EventUserLoggedIn, u.ID, u.Username, u.Email, "", c.RealIP())

	return c.JSON(http.StatusOK, echo.Map{"message": "login successful", "user": u})
}

// Logout destroys the session. Logging out twice is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.Cfg.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Sessions.Destroy(ctx, cookie.Value); err != nil {
			c.Logger().Errorf("logout: %v", err)
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the resolved identity, or an explicit null for anonymous
// requests. Being unauthenticated is not an error here.
func (h *AuthHandler) Me(c echo.Context) error {
	if u, ok := middleware.CurrentUser(c); ok {
		return c.JSON(http.StatusOK, echo.Map{"user": u})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": nil})
}

// OAuthStart redirects to the provider's consent screen with a fresh state
// value stored in a short-lived cookie.
func (h *AuthHandler) OAuthStart(c echo.Context) error {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "unknown oauth provider"})
	}

	state := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode, // Lax so the cookie survives the provider redirect
		MaxAge:   300,
	})
	return c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

// OAuthCallback verifies the state, exchanges the code, links or creates the
// local account and establishes a session. All failures redirect to the
// configured failure destination rather than rendering an error page.
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "unknown oauth provider"})
	}

	// An established session is kept as-is: the callback never switches the
	// identity of a logged-in user.
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, h.Cfg.OAuthSuccessURL)
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || c.QueryParam("state") != stateCookie.Value {
		return c.Redirect(http.StatusFound, h.Cfg.OAuthFailureURL)
	}
	c.SetCookie(&http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := c.QueryParam("code")
	if code == "" || c.QueryParam("error") != "" {
		return c.Redirect(http.StatusFound, h.Cfg.OAuthFailureURL)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		c.Logger().Errorf("oauth %s exchange: %v", p.Name, err)
		return c.Redirect(http.StatusFound, h.Cfg.OAuthFailureURL)
	}

	u, outcome, err := h.Auth.LinkOrCreate(ctx, profile)
	if err != nil {
		c.Logger().Errorf("oauth %s link: %v", p.Name, err)
		return c.Redirect(http.StatusFound, h.Cfg.OAuthFailureURL)
	}

	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("oauth session: %v", err)
		return c.Redirect(http.StatusFound, h.Cfg.OAuthFailureURL)
	}
	h.setSessionCookie(c, token)
	h.publishEvent(oauthEventFor(outcome), u.ID, u.Username, u.Email, p.Name, c.RealIP())

	return c.Redirect(http.StatusFound, h.Cfg.OAuthSuccessURL)
}

// OAuthFailure is the landing route for failed provider flows.
func (h *AuthHandler) OAuthFailure(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "oauth_failed", "message": "oauth authentication failed"})
}

// OAuthStatus reports which providers are configured, so clients can hide
// the buttons for disabled ones.
func (h *AuthHandler) OAuthStatus(c echo.Context) error {
	status := echo.Map{}
	for _, name := range []string{"google", "github"} {
		_, enabled := h.Providers[name]
		status[name] = echo.Map{"enabled": enabled}
	}
	return c.JSON(http.StatusOK, status)
}

// ----- helpers -----

// oauthEventFor maps how the callback profile was resolved onto the audit
// event type: a fresh account is a registration, a newly attached identity a
// link, everything else a login.
func oauthEventFor(outcome auth.LinkOutcome) string {
	switch outcome {
	case auth.LinkCreated:
		return queue.EventUserRegistered
	case auth.LinkAttached:
		return queue.EventOAuthLinked
	}
	return queue.EventUserLoggedIn
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(h.Sessions.TTL() / time.Second),
	}
	// Mirrors the usual split: hardened cross-site settings in production,
	// relaxed for local development over plain http.
	if h.Cfg.Production() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}
	c.SetCookie(cookie)
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// publishEvent emits an audit event without blocking the request. Broker
// failures are already logged by the publisher and deliberately ignored.
func (h *AuthHandler) publishEvent(eventType string, userID uint64, username, email, provider, ip string) {
	ev := queue.AuthEvent{
		Type:     eventType,
		UserID:   userID,
		Username: username,
		Email:    email,
		Provider: provider,
		IP:       ip,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	publish := h.Publish
	if publish == nil {
		publish = service.PublishAuthEvent
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = publish(ctx, ev)
	}()
}
