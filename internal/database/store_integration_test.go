package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tcp_snm/deepshift/internal/app_errors"
)

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "deepshift", "POSTGRES_PASSWORD": "deepshift", "POSTGRES_DB": "deepshift"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://deepshift:deepshift@%s:%s/deepshift?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func TestSQLStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if n, err := Migrate(ctx, dsn); err != nil || n != 1 {
		t.Fatalf("migrate: n=%d err=%v", n, err)
	}
	// second run is a no-op
	if n, err := Migrate(ctx, dsn); err != nil || n != 0 {
		t.Fatalf("expected idempotent migrate, got n=%d err=%v", n, err)
	}

	store := NewStore(pool)
	start := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	contest, err := store.CreateContest(ctx, CreateContestParams{
		Title:      "weekly",
		Type:       QuestionTypeMCQ,
		Category:   "aptitude",
		Prizes:     []PrizeTier{{Rank: 1, Prize: 500}},
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Duration:   60,
		TotalMarks: 10,
	})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}
	if len(contest.Prizes) != 1 || contest.Prizes[0].Prize != 500 {
		t.Fatalf("prizes not round tripped: %+v", contest.Prizes)
	}

	user := uuid.New()
	reg := CreateRegistrationParams{ContestID: contest.ID, UserID: user, RegisteredAt: time.Now()}
	if _, err := store.CreateRegistration(ctx, reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = store.CreateRegistration(ctx, reg)
	if !app_errors.IsUniqueViolation(err, ConstraintRegistrationUserContest) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	pending := PaymentStatusPending
	regs, err := store.ListRegistrations(ctx, ListRegistrationsParams{PaymentStatus: &pending})
	if err != nil || len(regs) != 1 {
		t.Fatalf("list registrations: %d %v", len(regs), err)
	}

	err = store.ExecTx(ctx, func(q Querier) error {
		if err := q.LockContest(ctx, contest.ID); err != nil {
			return err
		}
		_, err := q.SetContestStatus(ctx, contest.ID, ContestStatusCompleted)
		return err
	})
	if err != nil {
		t.Fatalf("exec tx: %v", err)
	}

	live, err := store.CountLiveContests(ctx, time.Now())
	if err != nil || live != 1 {
		t.Fatalf("expected one live contest, got %d %v", live, err)
	}
}
