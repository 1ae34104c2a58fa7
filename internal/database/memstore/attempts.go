package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func copyAnswers(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) CreateAttempt(ctx context.Context, arg database.CreateAttemptParams) (database.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.contests[arg.ContestID]; !ok {
		return database.Attempt{}, foreignKeyViolation("attempts_contest_id_fkey")
	}
	for _, a := range s.data.attempts {
		if a.UserID == arg.UserID && a.ContestID == arg.ContestID {
			return database.Attempt{}, uniqueViolation(database.ConstraintAttemptUserContest)
		}
	}
	a := database.Attempt{
		ID:        uuid.New(),
		ContestID: arg.ContestID,
		UserID:    arg.UserID,
		Answers:   map[string]string{},
		StartedAt: arg.StartedAt,
	}
	s.data.attempts[a.ID] = a
	return a, nil
}

func (s *Store) GetAttemptByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (database.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.attempts {
		if a.UserID == userID && a.ContestID == contestID {
			return a, nil
		}
	}
	return database.Attempt{}, errNoRows()
}

func (s *Store) SubmitAttempt(ctx context.Context, arg database.SubmitAttemptParams) (database.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.attempts[arg.ID]
	if !ok || a.SubmittedAt != nil {
		return database.Attempt{}, errNoRows()
	}
	submittedAt := arg.SubmittedAt
	score := arg.Score
	a.Answers = copyAnswers(arg.Answers)
	a.SubmittedAt = &submittedAt
	a.AutoSubmitted = arg.AutoSubmitted
	a.TabSwitchCount = arg.TabSwitchCount
	a.Score = &score
	s.data.attempts[a.ID] = a
	return a, nil
}

func (s *Store) CreateResult(ctx context.Context, arg database.CreateResultParams) (database.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.contests[arg.ContestID]; !ok {
		return database.Result{}, foreignKeyViolation("results_contest_id_fkey")
	}
	for _, r := range s.data.results {
		if r.UserID == arg.UserID && r.ContestID == arg.ContestID {
			return database.Result{}, uniqueViolation(database.ConstraintResultUserContest)
		}
	}
	r := database.Result{
		ID:               uuid.New(),
		ContestID:        arg.ContestID,
		UserID:           arg.UserID,
		Score:            arg.Score,
		TotalQuestions:   arg.TotalQuestions,
		CorrectAnswers:   arg.CorrectAnswers,
		WrongAnswers:     arg.WrongAnswers,
		Unanswered:       arg.Unanswered,
		TimeTakenSeconds: arg.TimeTakenSeconds,
		Answers:          copyAnswers(arg.Answers),
		TabSwitchCount:   arg.TabSwitchCount,
		CreatedAt:        arg.CreatedAt,
	}
	s.data.results[r.ID] = r
	return r, nil
}

func (s *Store) GetResultByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (database.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.data.results {
		if r.UserID == userID && r.ContestID == contestID {
			return r, nil
		}
	}
	return database.Result{}, errNoRows()
}

func (s *Store) ListResultsByContest(ctx context.Context, contestID uuid.UUID) ([]database.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Result
	for _, r := range s.data.results {
		if r.ContestID == contestID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]database.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Result
	for _, r := range s.data.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateResultPublication(ctx context.Context, arg database.UpdateResultPublicationParams) (database.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.results[arg.ID]
	if !ok {
		return database.Result{}, errNoRows()
	}
	publishedAt := arg.PublishedAt
	r.Rank = arg.Rank
	r.Prize = arg.Prize
	r.IsWinner = arg.IsWinner
	r.PublishedAt = &publishedAt
	s.data.results[r.ID] = r
	return r, nil
}
