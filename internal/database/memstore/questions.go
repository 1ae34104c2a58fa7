package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func (s *Store) orderTaken(contestID, except uuid.UUID, order int32) bool {
	for id, q := range s.data.questions {
		if id != except && q.ContestID == contestID && q.Order == order {
			return true
		}
	}
	return false
}

func (s *Store) CreateQuestion(ctx context.Context, arg database.CreateQuestionParams) (database.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.contests[arg.ContestID]; !ok {
		return database.Question{}, foreignKeyViolation("questions_contest_id_fkey")
	}
	if s.orderTaken(arg.ContestID, uuid.Nil, arg.Order) {
		return database.Question{}, uniqueViolation(database.ConstraintQuestionContestOrder)
	}
	q := database.Question{
		ID:            uuid.New(),
		ContestID:     arg.ContestID,
		Type:          arg.Type,
		QuestionText:  arg.QuestionText,
		Options:       append([]string(nil), arg.Options...),
		CorrectAnswer: arg.CorrectAnswer,
		Marks:         arg.Marks,
		Explanation:   arg.Explanation,
		Order:         arg.Order,
	}
	s.data.questions[q.ID] = q
	return q, nil
}

func (s *Store) GetQuestionByID(ctx context.Context, id uuid.UUID) (database.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.data.questions[id]
	if !ok {
		return database.Question{}, errNoRows()
	}
	return q, nil
}

func (s *Store) ListQuestionsByContest(ctx context.Context, contestID uuid.UUID) ([]database.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Question
	for _, q := range s.data.questions {
		if q.ContestID == contestID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) CountQuestionsByContest(ctx context.Context, contestID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, q := range s.data.questions {
		if q.ContestID == contestID {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, arg database.UpdateQuestionParams) (database.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.data.questions[arg.ID]
	if !ok {
		return database.Question{}, errNoRows()
	}
	if s.orderTaken(q.ContestID, q.ID, arg.Order) {
		return database.Question{}, uniqueViolation(database.ConstraintQuestionContestOrder)
	}
	q.Type = arg.Type
	q.QuestionText = arg.QuestionText
	q.Options = append([]string(nil), arg.Options...)
	q.CorrectAnswer = arg.CorrectAnswer
	q.Marks = arg.Marks
	q.Explanation = arg.Explanation
	q.Order = arg.Order
	s.data.questions[q.ID] = q
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.questions[id]; !ok {
		return 0, nil
	}
	delete(s.data.questions, id)
	return 1, nil
}
