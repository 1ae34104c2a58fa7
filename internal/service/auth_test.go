package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	id := uuid.New()
	tok, err := IssueToken(secret, id, database.RoleAdmin, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, _ := claims.UserID()
	if got != id || claims.Role != database.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte("secret")
	expired, _ := IssueToken(secret, uuid.New(), database.RoleStudent, time.Minute, time.Now().Add(-time.Hour))
	wrongKey, _ := IssueToken([]byte("other"), uuid.New(), database.RoleStudent, time.Hour, time.Now())

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseToken(tok, secret); !errors.Is(err, app_errors.ErrInvalidRequestCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestValidateInputReturnsFirstFailure(t *testing.T) {
	type payload struct {
		Name  string  `json:"name" validate:"required"`
		Marks float64 `json:"marks" validate:"gt=0"`
	}
	err := ValidateInput(payload{Marks: 1})
	if !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err.Error() != app_errors.ErrInvalidInput.Error()+", name is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := ValidateInput(payload{Name: "x", Marks: 2}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateInputNamesNestedFields(t *testing.T) {
	type tier struct {
		Rank int32 `json:"rank" validate:"gte=1"`
	}
	type payload struct {
		Method string `json:"paymentMethod" validate:"oneof=upi bank"`
		UpiID  string `json:"upiId" validate:"required_if=Method upi"`
		Prizes []tier `json:"prizes" validate:"dive"`
	}

	tests := []struct {
		name string
		in   payload
		want string
	}{
		{"dive", payload{Method: "bank", Prizes: []tier{{Rank: 1}, {Rank: 0}}}, "prizes[1].rank must be greater than or equal to 1"},
		{"required_if", payload{Method: "upi"}, "upiId is required when method is upi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.in)
			if err == nil || err.Error() != app_errors.ErrInvalidInput.Error()+", "+tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}
