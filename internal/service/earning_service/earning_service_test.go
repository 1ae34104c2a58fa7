package earning_service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc     *EarningService
	store   *memstore.Store
	creator database.User
	contest database.Contest
}

func newFixture(t *testing.T, commission float64) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	f := &fixture{
		store: store,
		svc: &EarningService{
			DB:                store,
			UserServiceConfig: &user_service.UserService{DB: store},
			Now:               func() time.Time { return now },
		},
	}

	id := uuid.New()
	creator, err := store.UpsertUser(ctx, database.UpsertUserParams{
		ID:           id,
		Email:        "creator@example.com",
		Name:         "Creator",
		Role:         database.RoleCreator,
		ReferralCode: ptr(user_service.CreatorReferralCode(id)),
	})
	if err != nil {
		t.Fatalf("creator: %v", err)
	}
	f.creator = creator

	contest, err := store.CreateContest(ctx, database.CreateContestParams{
		Title:                     "quiz",
		StartTime:                 now,
		EndTime:                   now.Add(time.Hour),
		CommissionPerRegistration: commission,
	})
	if err != nil {
		t.Fatalf("contest: %v", err)
	}
	f.contest = contest
	return f
}

func (f *fixture) register(t *testing.T, code *string) database.Registration {
	t.Helper()
	reg, err := f.store.CreateRegistration(context.Background(), database.CreateRegistrationParams{
		ContestID:    f.contest.ID,
		UserID:       uuid.New(),
		ReferralCode: code,
		RegisteredAt: now,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func creatorCtx(id uuid.UUID) context.Context {
	return service.WithClaims(context.Background(), service.UserCredentialClaims{
		Role:             database.RoleCreator,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	})
}

func TestTriggerCommission(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	code := *f.creator.ReferralCode
	tests := []struct {
		name    string
		code    *string
		wantNil bool
	}{
		{"no code", nil, true},
		{"blank code", ptr("  "), true},
		{"unknown code", ptr("DSNOBODY"), true},
		{"matching code", &code, false},
		{"lowercase padded code", ptr(" " + strings.ToLower(code) + " "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := f.register(t, tt.code)
			earning, err := TriggerCommission(ctx, f.store, reg, f.contest, now)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if (earning == nil) != tt.wantNil {
				t.Fatalf("expected nil earning %v, got %+v", tt.wantNil, earning)
			}
			if earning != nil && (earning.Amount != 50 || earning.CreatorID != f.creator.ID) {
				t.Fatalf("unexpected earning %+v", earning)
			}
		})
	}
}

func TestTriggerCommissionZeroCommission(t *testing.T) {
	f := newFixture(t, 0)
	reg := f.register(t, f.creator.ReferralCode)
	earning, err := TriggerCommission(context.Background(), f.store, reg, f.contest, now)
	if err != nil || earning != nil {
		t.Fatalf("expected no-op, got %+v, %v", earning, err)
	}
}

func TestTriggerCommissionOncePerRegistration(t *testing.T) {
	f := newFixture(t, 50)
	reg := f.register(t, f.creator.ReferralCode)
	if _, err := TriggerCommission(context.Background(), f.store, reg, f.contest, now); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := TriggerCommission(context.Background(), f.store, reg, f.contest, now); !errors.Is(err, app_errors.ErrEntityAlreadyExist) {
		t.Fatalf("expected already exist, got %v", err)
	}
}

func (f *fixture) earn(t *testing.T, n int) {
	t.Helper()
	for range n {
		reg := f.register(t, f.creator.ReferralCode)
		if _, err := TriggerCommission(context.Background(), f.store, reg, f.contest, now); err != nil {
			t.Fatalf("commission: %v", err)
		}
	}
}

func TestWithdrawalRules(t *testing.T) {
	f := newFixture(t, 100)
	ctx := creatorCtx(f.creator.ID)
	upi := WithdrawalRequest{Amount: 200, PaymentMethod: "upi", UpiID: ptr("creator@upi")}

	f.earn(t, 2)
	if _, err := f.svc.RequestWithdrawal(ctx, upi); !errors.Is(err, app_errors.ErrInsufficientBalance) {
		t.Fatalf("balance below minimum must be refused, got %v", err)
	}

	f.earn(t, 2)
	tooMuch := upi
	tooMuch.Amount = 500
	if _, err := f.svc.RequestWithdrawal(ctx, tooMuch); !errors.Is(err, app_errors.ErrInsufficientBalance) {
		t.Fatalf("amount above balance must be refused, got %v", err)
	}

	w, err := f.svc.RequestWithdrawal(ctx, upi)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if w.Status != database.WithdrawalStatusPending {
		t.Fatalf("expected pending, got %s", w.Status)
	}

	stats, err := f.svc.GetCreatorStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEarnings != 400 || stats.PendingWithdrawals != 200 || stats.AvailableBalance != 200 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	// the pending request is reserved, so 200 is now below the minimum
	if _, err := f.svc.RequestWithdrawal(ctx, upi); !errors.Is(err, app_errors.ErrInsufficientBalance) {
		t.Fatalf("expected reserved balance to block, got %v", err)
	}
}

func TestWithdrawalValidation(t *testing.T) {
	f := newFixture(t, 100)
	ctx := creatorCtx(f.creator.ID)
	if _, err := f.svc.RequestWithdrawal(ctx, WithdrawalRequest{Amount: 300, PaymentMethod: "upi"}); !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("upi without id must be invalid, got %v", err)
	}
}

func TestDecideWithdrawalOnlyFromPending(t *testing.T) {
	f := newFixture(t, 100)
	f.earn(t, 4)
	ctx := creatorCtx(f.creator.ID)

	w, err := f.svc.RequestWithdrawal(ctx, WithdrawalRequest{Amount: 300, PaymentMethod: "upi", UpiID: ptr("c@upi")})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	approved, err := f.svc.ApproveWithdrawal(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ProcessedAt == nil || !approved.ProcessedAt.Equal(now) {
		t.Fatalf("processedAt not set: %+v", approved)
	}
	if _, err := f.svc.RejectWithdrawal(context.Background(), w.ID); !errors.Is(err, app_errors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}

	all, err := f.svc.ListAllWithdrawals(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].CreatorName != "Creator" || all[0].CreatorEmail != "creator@example.com" {
		t.Fatalf("unexpected admin list %+v", all)
	}
}
