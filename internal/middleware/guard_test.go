package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
)

func runGuard(t *testing.T, mw echo.MiddlewareFunc, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(userContextKey, *user)
	}

	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	code, _ := body["error"].(string)
	return code
}

func TestRequireAuth(t *testing.T) {
	rec := runGuard(t, RequireAuth(), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "unauthenticated" {
		t.Errorf("anonymous: error = %q", code)
	}

	rec = runGuard(t, RequireAuth(), &model.User{ID: 1, Role: model.RoleCustomer})
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated: status = %d, want 200", rec.Code)
	}
}

func TestRequireAnonymous(t *testing.T) {
	rec := runGuard(t, RequireAnonymous(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous: status = %d, want 200", rec.Code)
	}

	rec = runGuard(t, RequireAnonymous(), &model.User{ID: 1, Role: model.RoleCustomer})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("authenticated: status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "already_authenticated" {
		t.Errorf("authenticated: error = %q", code)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleAdmin, model.RoleVendor)

	rec := runGuard(t, mw, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = runGuard(t, mw, &model.User{ID: 1, Role: model.RoleCustomer})
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer: status = %d, want 403", rec.Code)
	}
	if code := errorCode(t, rec); code != "forbidden" {
		t.Errorf("customer: error = %q", code)
	}

	for _, role := range []string{model.RoleAdmin, model.RoleVendor} {
		rec = runGuard(t, mw, &model.User{ID: 1, Role: role})
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", role, rec.Code)
		}
	}
}
