package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/jwt"
)

func TestAuthMiddlewareAllowsValidAccessToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	token, err := jwtSvc.GenerateAccessToken(uuid.New(), "student")
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)

	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	refresh, err := jwtSvc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireRoleRanking(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)

	tests := []struct {
		role string
		min  user.Role
		want int
	}{
		{"student", user.RoleTeacher, http.StatusForbidden},
		{"teacher", user.RoleTeacher, http.StatusOK},
		{"operator", user.RoleTeacher, http.StatusOK},
		{"teacher", user.RoleOperator, http.StatusForbidden},
		{"operator", user.RoleOperator, http.StatusOK},
	}

	for _, tt := range tests {
		token, err := jwtSvc.GenerateAccessToken(uuid.New(), tt.role)
		if err != nil {
			t.Fatalf("token gen failed: %v", err)
		}

		handler := Auth(jwtSvc)(RequireRole(tt.min)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Fatalf("role %s min %s: expected %d, got %d", tt.role, tt.min, tt.want, w.Code)
		}
	}
}
