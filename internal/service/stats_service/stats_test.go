package stats_service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustContest(t *testing.T, store *memstore.Store, start time.Time, fee float64) database.Contest {
	t.Helper()
	c, err := store.CreateContest(context.Background(), database.CreateContestParams{
		Title: "c", Fee: fee, StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("contest: %v", err)
	}
	return c
}

func approve(t *testing.T, store *memstore.Store, userID, contestID uuid.UUID) {
	t.Helper()
	reg, err := store.CreateRegistration(context.Background(), database.CreateRegistrationParams{
		ContestID: contestID, UserID: userID, RegisteredAt: now,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	at := now
	if _, err := store.SetRegistrationStatus(context.Background(), database.SetRegistrationStatusParams{
		ID: reg.ID, PaymentStatus: database.PaymentStatusApproved, ApprovedAt: &at,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestStudentStats(t *testing.T) {
	store := memstore.New()
	svc := &StatsService{DB: store, ContestServiceConfig: &contest_service.ContestService{DB: store, Now: func() time.Time { return now }}}
	ctx := context.Background()
	userID := uuid.New()

	past := mustContest(t, store, now.Add(-3*time.Hour), 50)
	future := mustContest(t, store, now.Add(time.Hour), 50)
	pending := mustContest(t, store, now.Add(2*time.Hour), 50)
	approve(t, store, userID, past.ID)
	approve(t, store, userID, future.ID)
	if _, err := store.CreateRegistration(ctx, database.CreateRegistrationParams{ContestID: pending.ID, UserID: userID, RegisteredAt: now}); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := store.CreateResult(ctx, database.CreateResultParams{ContestID: past.ID, UserID: userID, Score: 10, CreatedAt: now})
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	studentCtx := service.WithClaims(ctx, service.UserCredentialClaims{
		Role:             database.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	})

	stats, err := svc.StudentStats(studentCtx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ContestsJoined != 2 || stats.UpcomingContests != 1 || stats.TotalWinnings != 0 || stats.BestRank != nil {
		t.Fatalf("unexpected stats before publication %+v", stats)
	}

	prize := 300.0
	if _, err := store.UpdateResultPublication(ctx, database.UpdateResultPublicationParams{
		ID: res.ID, Rank: 2, Prize: &prize, IsWinner: true, PublishedAt: now,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	stats, _ = svc.StudentStats(studentCtx)
	if stats.TotalWinnings != 300 || stats.BestRank == nil || *stats.BestRank != 2 {
		t.Fatalf("unexpected stats after publication %+v", stats)
	}
}

func TestAdminStats(t *testing.T) {
	store := memstore.New()
	svc := &StatsService{DB: store, ContestServiceConfig: &contest_service.ContestService{DB: store, Now: func() time.Time { return now }}}
	ctx := context.Background()

	for _, role := range []database.UserRole{database.RoleStudent, database.RoleStudent, database.RoleCreator} {
		if _, err := store.UpsertUser(ctx, database.UpsertUserParams{ID: uuid.New(), Email: uuid.NewString() + "@x.io", Name: "u", Role: role}); err != nil {
			t.Fatalf("user: %v", err)
		}
	}
	live := mustContest(t, store, now.Add(-10*time.Minute), 100)
	mustContest(t, store, now.Add(time.Hour), 100)
	approve(t, store, uuid.New(), live.ID)
	if _, err := store.CreateRegistration(ctx, database.CreateRegistrationParams{ContestID: live.ID, UserID: uuid.New(), RegisteredAt: now}); err != nil {
		t.Fatalf("register: %v", err)
	}

	stats, err := svc.AdminStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := AdminStats{TotalStudents: 2, TotalCreators: 1, TotalContests: 2, ActiveContests: 1, PendingPayments: 1, TotalRevenue: 100}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}
