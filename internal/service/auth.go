package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

// ParseToken verifies an HS256 bearer token and returns its claims.
func ParseToken(tokenString string, secret []byte) (UserCredentialClaims, error) {
	var claims UserCredentialClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, fmt.Errorf("%w, token expired", app_errors.ErrInvalidRequestCredentials)
		}
		log.Debugf("token rejected: %v", err)
		return claims, fmt.Errorf("%w, invalid token", app_errors.ErrInvalidRequestCredentials)
	}
	if !token.Valid {
		return claims, fmt.Errorf("%w, invalid token", app_errors.ErrInvalidRequestCredentials)
	}
	if _, err := claims.UserID(); err != nil {
		return claims, err
	}
	return claims, nil
}

// IssueToken mints a token the way the identity service does. It backs the
// token command and tests.
func IssueToken(secret []byte, userID uuid.UUID, role database.UserRole, ttl time.Duration, now time.Time) (string, error) {
	claims := UserCredentialClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		err = fmt.Errorf("%w, cannot sign token, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return "", err
	}
	return signed, nil
}
