package contest_service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	os.Exit(m.Run())
}

func window() database.Contest {
	return database.Contest{
		ID:        uuid.New(),
		Title:     "weekly",
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		Status:    database.ContestStatusUpcoming,
	}
}

func TestComputeStatus(t *testing.T) {
	c := window()
	tests := []struct {
		name string
		now  time.Time
		want database.ContestStatus
	}{
		{"before start", base.Add(-time.Second), database.ContestStatusUpcoming},
		{"at start", base, database.ContestStatusLive},
		{"middle", base.Add(30 * time.Minute), database.ContestStatusLive},
		{"at end", base.Add(time.Hour), database.ContestStatusLive},
		{"after end", base.Add(time.Hour + time.Nanosecond), database.ContestStatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStatus(c, tt.now); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestComputeStatusIgnoresStoredStatus(t *testing.T) {
	c := window()
	c.Status = database.ContestStatusCompleted
	if got := ComputeStatus(c, base.Add(time.Minute)); got != database.ContestStatusLive {
		t.Fatalf("expected live from window, got %s", got)
	}
}

func TestComputeStatusFallsBackOnMissingWindow(t *testing.T) {
	c := window()
	c.EndTime = time.Time{}
	c.Status = database.ContestStatusCompleted
	if got := ComputeStatus(c, base); got != database.ContestStatusCompleted {
		t.Fatalf("expected stored status, got %s", got)
	}
	c.Status = ""
	if got := ComputeStatus(c, base); got != database.ContestStatusUpcoming {
		t.Fatalf("expected upcoming default, got %s", got)
	}
}

func TestCanAccessQuestionsReasons(t *testing.T) {
	c := window()
	approved := &database.Registration{UserID: uuid.New(), PaymentStatus: database.PaymentStatusApproved}
	pending := &database.Registration{UserID: uuid.New(), PaymentStatus: database.PaymentStatusPending}

	tests := []struct {
		name string
		reg  *database.Registration
		now  time.Time
		want error
	}{
		{"not registered", nil, base.Add(time.Minute), app_errors.ErrNotRegistered},
		{"pending payment", pending, base.Add(time.Minute), app_errors.ErrNotRegistered},
		{"too early", approved, base.Add(-time.Minute), app_errors.ErrContestNotStarted},
		{"too late", approved, base.Add(2 * time.Hour), app_errors.ErrContestEnded},
		{"live", approved, base.Add(time.Minute), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAccessQuestions(tt.reg, c, tt.now)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCanSubmitGraceOnlyForAutoSubmit(t *testing.T) {
	c := window()
	reg := &database.Registration{PaymentStatus: database.PaymentStatusApproved}
	late := c.EndTime.Add(3 * time.Second)

	if err := CanSubmit(reg, c, late, false, 5*time.Second); !errors.Is(err, app_errors.ErrContestEnded) {
		t.Fatalf("manual late submit should be rejected, got %v", err)
	}
	if err := CanSubmit(reg, c, late, true, 5*time.Second); err != nil {
		t.Fatalf("auto submit within grace should pass, got %v", err)
	}
	if err := CanSubmit(reg, c, c.EndTime.Add(6*time.Second), true, 5*time.Second); !errors.Is(err, app_errors.ErrContestEnded) {
		t.Fatalf("auto submit past grace should be rejected, got %v", err)
	}
	if err := CanSubmit(nil, c, late, true, 5*time.Second); !errors.Is(err, app_errors.ErrNotRegistered) {
		t.Fatalf("grace never bypasses registration, got %v", err)
	}
}

func newService(now time.Time) (*ContestService, *memstore.Store) {
	store := memstore.New()
	store.Now = func() time.Time { return now }
	return &ContestService{DB: store, Now: func() time.Time { return now }}, store
}

func validRequest() ContestRequest {
	return ContestRequest{
		Title:       "Weekly aptitude",
		Description: "numbers and logic",
		Type:        database.QuestionTypeMCQ,
		Category:    "aptitude",
		Prizes:      []PrizeTier{{Rank: 1, Prize: 5000}},
		StartTime:   base,
		EndTime:     base.Add(time.Hour),
		Duration:    60,
		TotalMarks:  100,
	}
}

func TestCreateAndPatchContest(t *testing.T) {
	svc, _ := newService(base.Add(-time.Hour))
	ctx := context.Background()

	created, err := svc.CreateContest(ctx, validRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != database.ContestStatusUpcoming {
		t.Fatalf("expected upcoming, got %s", created.Status)
	}

	title := "Renamed"
	updated, err := svc.UpdateContest(ctx, created.ID, ContestPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" || len(updated.Prizes) != 1 {
		t.Fatalf("patch lost fields: %+v", updated)
	}

	// merged contest is re-validated
	end := base.Add(-time.Hour)
	if _, err := svc.UpdateContest(ctx, created.ID, ContestPatch{EndTime: &end}); !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for end before start, got %v", err)
	}
}

func TestCreateContestValidation(t *testing.T) {
	svc, _ := newService(base)
	req := validRequest()
	req.NegativeMarkValue = 1.5
	if _, err := svc.CreateContest(context.Background(), req); !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListContestsFiltersByComputedStatus(t *testing.T) {
	svc, store := newService(base.Add(30 * time.Minute))
	ctx := context.Background()

	live, _ := svc.CreateContest(ctx, validRequest())
	later := validRequest()
	later.StartTime = base.Add(24 * time.Hour)
	later.EndTime = base.Add(25 * time.Hour)
	if _, err := svc.CreateContest(ctx, later); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateRegistration(ctx, database.CreateRegistrationParams{ContestID: live.ID, UserID: uuid.New(), RegisteredAt: base}); err != nil {
		t.Fatalf("register: %v", err)
	}

	status := database.ContestStatusLive
	got, err := svc.ListContests(ctx, &status)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != live.ID || got[0].ParticipantCount != 1 {
		t.Fatalf("unexpected live list %+v", got)
	}

	all, _ := svc.ListContests(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 contests, got %d", len(all))
	}
}

func TestDeleteMissingContest(t *testing.T) {
	svc, _ := newService(base)
	if err := svc.DeleteContest(context.Background(), uuid.New()); !errors.Is(err, app_errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
