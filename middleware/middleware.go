package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

const (
	KeyAuthorizationHeader = "Authorization"
	KeyBearerPrefix        = "Bearer "
	// browsers cannot set headers on a websocket upgrade
	KeyTokenQueryParam = "token"
)

type Auth struct {
	Secret []byte
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(KeyAuthorizationHeader)
	if strings.HasPrefix(header, KeyBearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, KeyBearerPrefix))
	}
	return r.URL.Query().Get(KeyTokenQueryParam)
}

// JWTMiddleware rejects requests without a valid token, or whose role is not
// among roles when any are given.
func (a *Auth) JWTMiddleware(next http.HandlerFunc, roles ...database.UserRole) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := service.ParseToken(tok, a.Secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			log.Warnf("user %s with role %s denied access to %s", claims.Subject, claims.Role, r.URL.Path)
			writeError(w, http.StatusForbidden, app_errors.ErrUnAuthorized.Error())
			return
		}

		next(w, r.WithContext(service.WithClaims(r.Context(), claims)))
	}
}

// OptionalJWTMiddleware attaches claims when a valid token is present and
// otherwise serves the request anonymously.
func (a *Auth) OptionalJWTMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			next(w, r)
			return
		}
		claims, err := service.ParseToken(tok, a.Secret)
		if err != nil {
			if !errors.Is(err, app_errors.ErrInvalidRequestCredentials) {
				log.Warnf("optional auth: %v", err)
			}
			next(w, r)
			return
		}
		next(w, r.WithContext(service.WithClaims(r.Context(), claims)))
	}
}

func hasRole(role database.UserRole, roles []database.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
