package question_service

import (
	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

type QuestionService struct {
	DB                   database.Store
	Cache                *cache.QuestionCache
	ContestServiceConfig *contest_service.ContestService
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeUniqueConstraint: {
			database.ConstraintQuestionContestOrder: "a question with this order already exists in the contest",
		},
		app_errors.CodeForeignKeyConstraint: {
			"questions_contest_id_fkey": "contest does not exist",
		},
	}
)

type QuestionRequest struct {
	Type          database.QuestionType `json:"type" validate:"required,oneof=mcq fill_blank short_answer integer coding"`
	QuestionText  string                `json:"questionText" validate:"required"`
	Options       []string              `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswer *string               `json:"correctAnswer"`
	Marks         float64               `json:"marks" validate:"gt=0"`
	Explanation   *string               `json:"explanation"`
	Order         int32                 `json:"order" validate:"gte=0"`
}

type QuestionPatch struct {
	Type          *database.QuestionType `json:"type"`
	QuestionText  *string                `json:"questionText"`
	Options       *[]string              `json:"options"`
	CorrectAnswer *string                `json:"correctAnswer"`
	Marks         *float64               `json:"marks"`
	Explanation   *string                `json:"explanation"`
	Order         *int32                 `json:"order"`
}

// Question is the admin view, answers included.
type Question struct {
	ID            uuid.UUID             `json:"id"`
	ContestID     uuid.UUID             `json:"contestId"`
	Type          database.QuestionType `json:"type"`
	QuestionText  string                `json:"questionText"`
	Options       []string              `json:"options"`
	CorrectAnswer *string               `json:"correctAnswer,omitempty"`
	Marks         float64               `json:"marks"`
	Explanation   *string               `json:"explanation,omitempty"`
	Order         int32                 `json:"order"`
}

// StudentQuestion never carries the answer or explanation.
type StudentQuestion struct {
	ID           uuid.UUID             `json:"id"`
	ContestID    uuid.UUID             `json:"contestId"`
	Type         database.QuestionType `json:"type"`
	QuestionText string                `json:"questionText"`
	Options      []string              `json:"options"`
	Marks        float64               `json:"marks"`
	Order        int32                 `json:"order"`
}

type StudentQuestionSet struct {
	Contest      contest_service.Contest      `json:"contest"`
	Questions    []StudentQuestion            `json:"questions"`
	Registration contest_service.Registration `json:"registration"`
}

func ToQuestion(q database.Question) Question {
	return Question{
		ID:            q.ID,
		ContestID:     q.ContestID,
		Type:          q.Type,
		QuestionText:  q.QuestionText,
		Options:       nonNil(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		Marks:         q.Marks,
		Explanation:   q.Explanation,
		Order:         q.Order,
	}
}

func ToStudentQuestion(q database.Question) StudentQuestion {
	return StudentQuestion{
		ID:           q.ID,
		ContestID:    q.ContestID,
		Type:         q.Type,
		QuestionText: q.QuestionText,
		Options:      nonNil(q.Options),
		Marks:        q.Marks,
		Order:        q.Order,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
