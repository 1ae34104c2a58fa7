package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

// UserCredentialClaims is what the identity service puts in a bearer token.
// Subject holds the user id.
type UserCredentialClaims struct {
	Role database.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c UserCredentialClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w, token subject is not a user id", app_errors.ErrInvalidRequestCredentials)
	}
	return id, nil
}
