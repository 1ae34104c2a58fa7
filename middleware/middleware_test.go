package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

func TestJWTMiddleware(t *testing.T) {
	a := &Auth{Secret: []byte("secret")}
	student, _ := service.IssueToken(a.Secret, uuid.New(), database.RoleStudent, time.Hour, time.Now())
	admin, _ := service.IssueToken(a.Secret, uuid.New(), database.RoleAdmin, time.Hour, time.Now())

	var sawClaims bool
	h := a.JWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = service.OptionalClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, database.RoleAdmin)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + student, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sawClaims = false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(KeyAuthorizationHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && !sawClaims {
				t.Fatalf("expected claims on context")
			}
		})
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	a := &Auth{Secret: []byte("secret")}
	tok, _ := service.IssueToken(a.Secret, uuid.New(), database.RoleStudent, time.Hour, time.Now())

	var present bool
	h := a.OptionalJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		_, present = service.OptionalClaimsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h(httptest.NewRecorder(), req)
	if present {
		t.Fatalf("anonymous request should carry no claims")
	}

	req = httptest.NewRequest(http.MethodGet, "/?token="+tok, nil)
	h(httptest.NewRecorder(), req)
	if !present {
		t.Fatalf("expected claims from query token")
	}
}
