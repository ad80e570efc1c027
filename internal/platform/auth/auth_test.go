package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func contextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, UserRoleKey, role)
}

func TestIssueAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret")

	tok, err := tm.Issue("user-1", "doctor", DefaultTokenTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected sub user-1, got %q", claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Fatalf("expected role doctor, got %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewTokenManager("secret-a").Issue("u", "nurse", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenManager("secret-b").Parse(tok); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret")
	tok, err := tm.Issue("u", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Parse(tok); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, path, authHeader string) (int, string, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var uid, role string
	h := mw(func(c echo.Context) error {
		uid = UserIDFromContext(c.Request().Context())
		role = RoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr.Code, uid, role
		}
		t.Fatalf("unexpected error type: %v", err)
	}
	return rec.Code, uid, role
}

func TestMiddlewareSetsIdentity(t *testing.T) {
	tm := NewTokenManager("test-secret")
	tok, _ := tm.Issue("user-9", "clerk", time.Hour)

	code, uid, role := doRequest(t, Middleware(tm, nil), "/api/patients", "Bearer "+tok)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if uid != "user-9" || role != "clerk" {
		t.Fatalf("context identity mismatch: uid=%q role=%q", uid, role)
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	tm := NewTokenManager("test-secret")
	code, _, _ := doRequest(t, Middleware(tm, nil), "/api/patients", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	tm := NewTokenManager("test-secret")
	code, _, _ := doRequest(t, Middleware(tm, nil), "/api/patients", "Token abc")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestMiddlewareSkipsPublicPaths(t *testing.T) {
	tm := NewTokenManager("test-secret")
	skip := PathSkipper("/health", "/api/auth/login")

	code, _, _ := doRequest(t, Middleware(tm, skip), "/health", "")
	if code != http.StatusOK {
		t.Fatalf("expected public path to pass unauthenticated, got %d", code)
	}

	code, _, _ = doRequest(t, Middleware(tm, skip), "/api/patients", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected protected path to 401, got %d", code)
	}
}

func requireRoleCode(t *testing.T, userRole string, allowed ...string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ctx := c.Request().Context()
	req = req.WithContext(contextWithRole(ctx, userRole))
	c.SetRequest(req)

	h := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr.Code
		}
		t.Fatalf("unexpected error: %v", err)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	if code := requireRoleCode(t, "doctor", "doctor", "nurse"); code != http.StatusOK {
		t.Fatalf("doctor should pass, got %d", code)
	}
	if code := requireRoleCode(t, "clerk", "doctor", "nurse"); code != http.StatusForbidden {
		t.Fatalf("clerk should be forbidden, got %d", code)
	}
}

func TestRequireRoleNoAdminOverride(t *testing.T) {
	if code := requireRoleCode(t, "admin", "clerk"); code != http.StatusForbidden {
		t.Fatalf("admin should not bypass a clerk-only gate, got %d", code)
	}
}
