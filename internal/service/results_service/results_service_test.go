package results_service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *ResultsService
	store   *memstore.Store
	contest database.Contest
	users   []database.User
	results []database.Result
}

func newFixture(t *testing.T, resultsCache cache.ResultsCache) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	f := &fixture{store: store}
	f.svc = &ResultsService{
		DB:                   store,
		ContestServiceConfig: &contest_service.ContestService{DB: store, Now: func() time.Time { return now }},
		UserServiceConfig:    &user_service.UserService{DB: store},
		Cache:                resultsCache,
	}

	var err error
	f.contest, err = store.CreateContest(ctx, database.CreateContestParams{
		Title:     "quiz",
		Category:  "aptitude",
		StartTime: now.Add(-2 * time.Hour),
		EndTime:   now.Add(-time.Hour),
		Prizes:    []database.PrizeTier{{Rank: 1, Prize: 5000}},
	})
	if err != nil {
		t.Fatalf("contest: %v", err)
	}

	scores := []float64{80, 80, 60}
	times := []int64{120, 90, 200}
	for i := range scores {
		user, err := store.UpsertUser(ctx, database.UpsertUserParams{
			ID: uuid.New(), Email: uuid.NewString() + "@example.com", Name: "student", Role: database.RoleStudent,
			College: ptr("NIT"),
		})
		if err != nil {
			t.Fatalf("user: %v", err)
		}
		tt := times[i]
		res, err := store.CreateResult(ctx, database.CreateResultParams{
			ContestID: f.contest.ID, UserID: user.ID, Score: scores[i], TimeTakenSeconds: &tt,
			Answers: map[string]string{"q": "a"}, CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("result: %v", err)
		}
		f.users = append(f.users, user)
		f.results = append(f.results, res)
	}
	return f
}

func TestResultsHiddenUntilPublished(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	public, err := f.svc.PublicResults(ctx, f.contest.ID)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(public) != 0 {
		t.Fatalf("unpublished results leaked: %+v", public)
	}

	studentCtx := service.WithClaims(ctx, service.UserCredentialClaims{
		Role:             database.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Subject: f.users[0].ID.String()},
	})
	mine, err := f.svc.StudentResults(studentCtx)
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("unpublished result visible to student")
	}

	admin, err := f.svc.AdminResults(ctx, f.contest.ID)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if len(admin) != 3 {
		t.Fatalf("admin should see all results, got %d", len(admin))
	}

	if _, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	mine, _ = f.svc.StudentResults(studentCtx)
	if len(mine) != 1 || mine[0].ContestTitle != "quiz" || mine[0].ContestCategory != "aptitude" {
		t.Fatalf("unexpected student results %+v", mine)
	}
}

func TestPublishRanksAndIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !first.Success || first.Contest.Status != database.ContestStatusCompleted {
		t.Fatalf("unexpected response %+v", first.Contest)
	}
	stored, _ := f.store.GetContestByID(ctx, f.contest.ID)
	if stored.Status != database.ContestStatusCompleted {
		t.Fatalf("stored status not completed: %s", stored.Status)
	}

	wantRank := map[uuid.UUID]int32{f.results[1].ID: 1, f.results[0].ID: 2, f.results[2].ID: 3}
	check := func(results []AdminResult) {
		t.Helper()
		for _, r := range results {
			if r.Rank != wantRank[r.ID] {
				t.Fatalf("result %v: expected rank %d, got %d", r.ID, wantRank[r.ID], r.Rank)
			}
			if r.Rank == 1 && (r.Prize == nil || *r.Prize != 5000 || !r.IsWinner) {
				t.Fatalf("rank 1 should win 5000: %+v", r)
			}
			if r.Rank != 1 && (r.Prize != nil || r.IsWinner) {
				t.Fatalf("rank %d should not win: %+v", r.Rank, r)
			}
			if r.PublishedAt == nil || r.UserEmail == "" {
				t.Fatalf("result not published or enriched: %+v", r)
			}
		}
	}
	check(first.Results)

	second, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	check(second.Results)
}

func TestPublishManualPrizeAndCarryForward(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	third := f.users[2].ID
	if _, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{
		Prizes: []ManualPrize{{UserID: third, Prize: 250}},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// without the override the stored prize is carried forward
	resp, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	for _, r := range resp.Results {
		if r.UserID == third && (r.Prize == nil || *r.Prize != 250 || !r.IsWinner || r.Rank != 3) {
			t.Fatalf("manual prize lost: %+v", r)
		}
	}
}

func TestPublicResultsAreCachedAndInvalidated(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newFixture(t, cache.NewRedisResultsCache(client, time.Minute, nil))
	ctx := context.Background()

	empty, err := f.svc.PublicResults(ctx, f.contest.ID)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty leaderboard")
	}

	if _, err := f.svc.PublishResults(ctx, f.contest.ID, PublishRequest{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	public, err := f.svc.PublicResults(ctx, f.contest.ID)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(public) != 3 || public[0].Rank != 1 || public[0].UserName != "student" || public[0].UserCollege == nil {
		t.Fatalf("stale or unenriched leaderboard %+v", public)
	}
}
