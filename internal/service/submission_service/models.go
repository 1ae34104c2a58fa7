package submission_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/question_service"
)

const (
	DefaultSubmitGrace = 5 * time.Second

	msgSubmitted        = "Submission successful"
	msgAlreadySubmitted = "Already submitted"

	outcomeGraded    = "graded"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
)

type SubmissionService struct {
	DB                    database.Store
	ContestServiceConfig  *contest_service.ContestService
	QuestionServiceConfig *question_service.QuestionService
	Events                events.Publisher
	Metrics               *metrics.Metrics

	// SubmitGrace is how long after the end a timer driven submit is still
	// accepted.
	SubmitGrace time.Duration
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeUniqueConstraint: {
			database.ConstraintResultUserContest:  "answers already submitted for this contest",
			database.ConstraintAttemptUserContest: "attempt already started",
		},
		app_errors.CodeForeignKeyConstraint: {
			"results_contest_id_fkey":  "contest does not exist",
			"attempts_contest_id_fkey": "contest does not exist",
		},
	}
)

type SubmissionRequest struct {
	Answers        map[string]string `json:"answers"`
	TabSwitchCount int32             `json:"tabSwitchCount" validate:"gte=0"`
	AutoSubmitted  bool              `json:"autoSubmitted"`
}

type Result struct {
	ID               uuid.UUID         `json:"id"`
	ContestID        uuid.UUID         `json:"contestId"`
	UserID           uuid.UUID         `json:"userId"`
	Score            float64           `json:"score"`
	Rank             int32             `json:"rank"`
	TotalQuestions   int32             `json:"totalQuestions"`
	CorrectAnswers   int32             `json:"correctAnswers"`
	WrongAnswers     int32             `json:"wrongAnswers"`
	Unanswered       int32             `json:"unanswered"`
	Prize            *float64          `json:"prize,omitempty"`
	IsWinner         bool              `json:"isWinner"`
	PublishedAt      *time.Time        `json:"publishedAt,omitempty"`
	TimeTakenSeconds *int64            `json:"timeTakenSeconds,omitempty"`
	Answers          map[string]string `json:"answers"`
	TabSwitchCount   int32             `json:"tabSwitchCount"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type SubmissionResponse struct {
	Result          Result                    `json:"result"`
	QuestionResults map[string]QuestionResult `json:"questionResults"`
	Message         string                    `json:"message"`
}

type Attempt struct {
	ID             uuid.UUID  `json:"id"`
	ContestID      uuid.UUID  `json:"contestId"`
	UserID         uuid.UUID  `json:"userId"`
	StartedAt      time.Time  `json:"startedAt"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	AutoSubmitted  bool       `json:"autoSubmitted"`
	TabSwitchCount int32      `json:"tabSwitchCount"`
	Score          *float64   `json:"score,omitempty"`
}

func ToResult(r database.Result) Result {
	answers := r.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return Result{
		ID:               r.ID,
		ContestID:        r.ContestID,
		UserID:           r.UserID,
		Score:            r.Score,
		Rank:             r.Rank,
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		WrongAnswers:     r.WrongAnswers,
		Unanswered:       r.Unanswered,
		Prize:            r.Prize,
		IsWinner:         r.IsWinner,
		PublishedAt:      r.PublishedAt,
		TimeTakenSeconds: r.TimeTakenSeconds,
		Answers:          answers,
		TabSwitchCount:   r.TabSwitchCount,
		CreatedAt:        r.CreatedAt,
	}
}

func ToAttempt(a database.Attempt) Attempt {
	return Attempt{
		ID:             a.ID,
		ContestID:      a.ContestID,
		UserID:         a.UserID,
		StartedAt:      a.StartedAt,
		SubmittedAt:    a.SubmittedAt,
		AutoSubmitted:  a.AutoSubmitted,
		TabSwitchCount: a.TabSwitchCount,
		Score:          a.Score,
	}
}
