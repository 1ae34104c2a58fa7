package user_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
	"github.com/tcp_snm/deepshift/internal/service"
)

func ctxFor(id uuid.UUID, role database.UserRole) context.Context {
	return service.WithClaims(context.Background(), service.UserCredentialClaims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
}

func TestSyncCreatorGetsReferralCode(t *testing.T) {
	u := &UserService{DB: memstore.New()}
	id := uuid.New()
	got, err := u.SyncUser(context.Background(), SyncUserRequest{
		ID: id, Email: "Creator@Example.com", Name: "Creator", Role: database.RoleCreator,
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.ReferralCode == nil || *got.ReferralCode != CreatorReferralCode(id) {
		t.Fatalf("expected referral code, got %v", got.ReferralCode)
	}
	if got.Email != "creator@example.com" {
		t.Fatalf("expected normalized email, got %s", got.Email)
	}
	if len(*got.ReferralCode) != 10 {
		t.Fatalf("expected DS + 8 chars, got %s", *got.ReferralCode)
	}
}

func TestSyncStudentLinksReferrer(t *testing.T) {
	u := &UserService{DB: memstore.New()}
	creatorID := uuid.New()
	creator, err := u.SyncUser(context.Background(), SyncUserRequest{ID: creatorID, Email: "c@x.io", Name: "Creator", Role: database.RoleCreator})
	if err != nil {
		t.Fatalf("sync creator: %v", err)
	}

	student, err := u.SyncUser(context.Background(), SyncUserRequest{
		ID: uuid.New(), Email: "s@x.io", Name: "Student", Role: database.RoleStudent, ReferredBy: creator.ReferralCode,
	})
	if err != nil {
		t.Fatalf("sync student: %v", err)
	}
	if student.ReferredBy == nil || *student.ReferredBy != creatorID {
		t.Fatalf("expected student referred by creator, got %v", student.ReferredBy)
	}
}

func TestSyncDuplicateEmail(t *testing.T) {
	u := &UserService{DB: memstore.New()}
	ctx := context.Background()
	if _, err := u.SyncUser(ctx, SyncUserRequest{ID: uuid.New(), Email: "a@x.io", Name: "Alpha", Role: database.RoleStudent}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	_, err := u.SyncUser(ctx, SyncUserRequest{ID: uuid.New(), Email: "a@x.io", Name: "Beta", Role: database.RoleStudent})
	if !errors.Is(err, app_errors.ErrEntityAlreadyExist) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	u := &UserService{DB: memstore.New()}
	id := uuid.New()
	if _, err := u.SyncUser(context.Background(), SyncUserRequest{ID: id, Email: "a@x.io", Name: "Alpha", Role: database.RoleStudent}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	college := "IIT"
	got, err := u.UpdateProfile(ctxFor(id, database.RoleStudent), UpdateProfileRequest{College: &college})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.College == nil || *got.College != "IIT" || got.Name != "Alpha" {
		t.Fatalf("unexpected profile %+v", got)
	}

	_, err = u.UpdateProfile(ctxFor(uuid.New(), database.RoleStudent), UpdateProfileRequest{College: &college})
	if !errors.Is(err, app_errors.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}
