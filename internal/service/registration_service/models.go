package registration_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/email"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

const pendingPaymentsLimit = 5

type RegistrationService struct {
	DB                   database.Store
	ContestServiceConfig *contest_service.ContestService
	UserServiceConfig    *user_service.UserService
	Events               events.Publisher
	Mailer               email.Mailer
	Metrics              *metrics.Metrics
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeUniqueConstraint: {
			database.ConstraintRegistrationUserContest: "already registered for this contest",
		},
		app_errors.CodeForeignKeyConstraint: {
			"registrations_contest_id_fkey": "contest does not exist",
		},
	}
)

type RegisterRequest struct {
	ReferralCode      *string `json:"referralCode" validate:"omitempty,max=32"`
	PaymentScreenshot *string `json:"paymentScreenshot" validate:"omitempty,max=2048"`
}

type UploadPaymentRequest struct {
	PaymentScreenshot string `json:"paymentScreenshot" validate:"required,max=2048"`
}

type AttemptSummary struct {
	ID            uuid.UUID  `json:"id"`
	StartedAt     time.Time  `json:"startedAt"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	AutoSubmitted bool       `json:"autoSubmitted"`
	Score         *float64   `json:"score,omitempty"`
}

// MyRegistration is a student's registration with its contest and attempt.
type MyRegistration struct {
	contest_service.Registration
	Contest *contest_service.Contest `json:"contest"`
	Attempt *AttemptSummary          `json:"attempt"`
}

// Payment is a registration as the admin payments desk sees it.
type Payment struct {
	contest_service.Registration
	UserName     string  `json:"userName"`
	UserEmail    string  `json:"userEmail"`
	ContestTitle string  `json:"contestTitle"`
	ContestFee   float64 `json:"contestFee"`
}

func toAttemptSummary(a database.Attempt) *AttemptSummary {
	return &AttemptSummary{
		ID:            a.ID,
		StartedAt:     a.StartedAt,
		SubmittedAt:   a.SubmittedAt,
		AutoSubmitted: a.AutoSubmitted,
		Score:         a.Score,
	}
}
