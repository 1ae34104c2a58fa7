package user_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

type UserService struct {
	DB database.Store
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeUniqueConstraint: {
			database.ConstraintUserEmail:        "email is already used by another account",
			database.ConstraintUserReferralCode: "referral code is already taken",
		},
	}
)

type User struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Role         database.UserRole `json:"role"`
	College      *string           `json:"college,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	UpiID        *string           `json:"upiId,omitempty"`
	ReferralCode *string           `json:"referralCode,omitempty"`
	ReferredBy   *uuid.UUID        `json:"referredBy,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type SyncUserRequest struct {
	ID         uuid.UUID         `json:"id" validate:"required"`
	Email      string            `json:"email" validate:"required,email"`
	Name       string            `json:"name" validate:"required,min=2,max=100"`
	Role       database.UserRole `json:"role" validate:"required,oneof=student creator admin"`
	College    *string           `json:"college" validate:"omitempty,max=200"`
	Phone      *string           `json:"phone" validate:"omitempty,min=7,max=20"`
	ReferredBy *string           `json:"referredBy"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	College *string `json:"college" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,min=7,max=20"`
	UpiID   *string `json:"upiId" validate:"omitempty,max=100"`
}

func ToUser(u database.User) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		College:      u.College,
		Phone:        u.Phone,
		UpiID:        u.UpiID,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		CreatedAt:    u.CreatedAt,
	}
}
