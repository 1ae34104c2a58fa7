package results_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/email"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

type ResultsService struct {
	DB                   database.Store
	ContestServiceConfig *contest_service.ContestService
	UserServiceConfig    *user_service.UserService
	Cache                cache.ResultsCache
	Events               events.Publisher
	Mailer               email.Mailer
	Metrics              *metrics.Metrics
}

var (
	errMsgs = map[string]map[string]string{}
)

type ManualPrize struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Prize  float64   `json:"prize" validate:"gte=0"`
}

type PublishRequest struct {
	Prizes []ManualPrize `json:"prizes" validate:"omitempty,dive"`
}

// PublicResult is a leaderboard row. Answers stay private.
type PublicResult struct {
	ID               uuid.UUID  `json:"id"`
	ContestID        uuid.UUID  `json:"contestId"`
	UserID           uuid.UUID  `json:"userId"`
	UserName         string     `json:"userName"`
	UserCollege      *string    `json:"userCollege,omitempty"`
	Score            float64    `json:"score"`
	Rank             int32      `json:"rank"`
	TotalQuestions   int32      `json:"totalQuestions"`
	CorrectAnswers   int32      `json:"correctAnswers"`
	WrongAnswers     int32      `json:"wrongAnswers"`
	Unanswered       int32      `json:"unanswered"`
	Prize            *float64   `json:"prize,omitempty"`
	IsWinner         bool       `json:"isWinner"`
	PublishedAt      *time.Time `json:"publishedAt"`
	TimeTakenSeconds *int64     `json:"timeTakenSeconds,omitempty"`
}

type StudentResult struct {
	submission_service.Result
	ContestTitle    string `json:"contestTitle"`
	ContestCategory string `json:"contestCategory"`
}

type AdminResult struct {
	submission_service.Result
	UserName    string  `json:"userName"`
	UserEmail   string  `json:"userEmail"`
	UserCollege *string `json:"userCollege,omitempty"`
}

type PublishResponse struct {
	Success bool                    `json:"success"`
	Contest contest_service.Contest `json:"contest"`
	Results []AdminResult           `json:"results"`
}

func toPublicResult(r database.Result, user *database.User) PublicResult {
	out := PublicResult{
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
	}
	if user != nil {
		out.UserName = user.Name
		out.UserCollege = user.College
	}
	return out
}
