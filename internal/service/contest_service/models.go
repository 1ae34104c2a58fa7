package contest_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

type ContestService struct {
	DB  database.Store
	Now func() time.Time
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeForeignKeyConstraint: {},
	}
)

type PrizeTier struct {
	Rank  int32   `json:"rank" validate:"gte=1"`
	Prize float64 `json:"prize" validate:"gte=0"`
	Title *string `json:"title,omitempty"`
}

// ContestRequest is the admin payload for creating a contest, and the merged
// value re-validated on update.
type ContestRequest struct {
	Title                     string                `json:"title" validate:"required,min=3,max=200"`
	Description               string                `json:"description" validate:"required"`
	Type                      database.QuestionType `json:"type" validate:"required,oneof=mcq fill_blank short_answer integer coding"`
	Category                  string                `json:"category" validate:"required"`
	Prize                     float64               `json:"prize" validate:"gte=0"`
	Prizes                    []PrizeTier           `json:"prizes" validate:"omitempty,dive"`
	Fee                       float64               `json:"fee" validate:"gte=0"`
	StartTime                 time.Time             `json:"startTime" validate:"required"`
	EndTime                   time.Time             `json:"endTime" validate:"required,gtfield=StartTime"`
	Duration                  int32                 `json:"duration" validate:"gt=0"`
	MaxParticipants           *int32                `json:"maxParticipants" validate:"omitempty,gt=0"`
	QrCodeUrl                 *string               `json:"qrCodeUrl" validate:"omitempty,url"`
	CommissionPerRegistration float64               `json:"commissionPerRegistration" validate:"gte=0"`
	NegativeMarking           bool                  `json:"negativeMarking"`
	NegativeMarkValue         float64               `json:"negativeMarkValue" validate:"gte=0,lte=1"`
	TotalMarks                float64               `json:"totalMarks" validate:"gt=0"`
	PassingMarks              *float64              `json:"passingMarks" validate:"omitempty,gte=0"`
}

// ContestPatch carries the fields of a partial update; nil means unchanged.
type ContestPatch struct {
	Title                     *string                `json:"title"`
	Description               *string                `json:"description"`
	Type                      *database.QuestionType `json:"type"`
	Category                  *string                `json:"category"`
	Prize                     *float64               `json:"prize"`
	Prizes                    *[]PrizeTier           `json:"prizes"`
	Fee                       *float64               `json:"fee"`
	StartTime                 *time.Time             `json:"startTime"`
	EndTime                   *time.Time             `json:"endTime"`
	Duration                  *int32                 `json:"duration"`
	MaxParticipants           *int32                 `json:"maxParticipants"`
	QrCodeUrl                 *string                `json:"qrCodeUrl"`
	CommissionPerRegistration *float64               `json:"commissionPerRegistration"`
	NegativeMarking           *bool                  `json:"negativeMarking"`
	NegativeMarkValue         *float64               `json:"negativeMarkValue"`
	TotalMarks                *float64               `json:"totalMarks"`
	PassingMarks              *float64               `json:"passingMarks"`
}

// Contest is the wire form. Status is always the computed phase.
type Contest struct {
	ID                        uuid.UUID              `json:"id"`
	Title                     string                 `json:"title"`
	Description               string                 `json:"description"`
	Type                      database.QuestionType  `json:"type"`
	Category                  string                 `json:"category"`
	Prize                     float64                `json:"prize"`
	Prizes                    []PrizeTier            `json:"prizes"`
	Fee                       float64                `json:"fee"`
	StartTime                 time.Time              `json:"startTime"`
	EndTime                   time.Time              `json:"endTime"`
	Duration                  int32                  `json:"duration"`
	MaxParticipants           *int32                 `json:"maxParticipants,omitempty"`
	Status                    database.ContestStatus `json:"status"`
	QrCodeUrl                 *string                `json:"qrCodeUrl,omitempty"`
	CommissionPerRegistration float64                `json:"commissionPerRegistration"`
	NegativeMarking           bool                   `json:"negativeMarking"`
	NegativeMarkValue         float64                `json:"negativeMarkValue"`
	TotalMarks                float64                `json:"totalMarks"`
	PassingMarks              *float64               `json:"passingMarks,omitempty"`
	CreatedAt                 time.Time              `json:"createdAt"`
}

type ContestSummary struct {
	Contest
	ParticipantCount int64 `json:"participantCount"`
}

type ContestDetails struct {
	Contest
	QuestionsCount int64         `json:"questionsCount"`
	Registration   *Registration `json:"registration"`
}

type Registration struct {
	ID                uuid.UUID              `json:"id"`
	ContestID         uuid.UUID              `json:"contestId"`
	UserID            uuid.UUID              `json:"userId"`
	PaymentScreenshot *string                `json:"paymentScreenshot,omitempty"`
	PaymentStatus     database.PaymentStatus `json:"paymentStatus"`
	ReferralCode      *string                `json:"referralCode,omitempty"`
	RegisteredAt      time.Time              `json:"registeredAt"`
	ApprovedAt        *time.Time             `json:"approvedAt,omitempty"`
}

func ToRegistration(r database.Registration) Registration {
	return Registration{
		ID:                r.ID,
		ContestID:         r.ContestID,
		UserID:            r.UserID,
		PaymentScreenshot: r.PaymentScreenshot,
		PaymentStatus:     r.PaymentStatus,
		ReferralCode:      r.ReferralCode,
		RegisteredAt:      r.RegisteredAt,
		ApprovedAt:        r.ApprovedAt,
	}
}

// ToContest converts a stored contest, resolving its phase at now.
func ToContest(c database.Contest, now time.Time) Contest {
	prizes := make([]PrizeTier, 0, len(c.Prizes))
	for _, p := range c.Prizes {
		prizes = append(prizes, PrizeTier{Rank: p.Rank, Prize: p.Prize, Title: p.Title})
	}
	return Contest{
		ID:                        c.ID,
		Title:                     c.Title,
		Description:               c.Description,
		Type:                      c.Type,
		Category:                  c.Category,
		Prize:                     c.Prize,
		Prizes:                    prizes,
		Fee:                       c.Fee,
		StartTime:                 c.StartTime,
		EndTime:                   c.EndTime,
		Duration:                  c.Duration,
		MaxParticipants:           c.MaxParticipants,
		Status:                    ComputeStatus(c, now),
		QrCodeUrl:                 c.QrCodeUrl,
		CommissionPerRegistration: c.CommissionPerRegistration,
		NegativeMarking:           c.NegativeMarking,
		NegativeMarkValue:         c.NegativeMarkValue,
		TotalMarks:                c.TotalMarks,
		PassingMarks:              c.PassingMarks,
		CreatedAt:                 c.CreatedAt,
	}
}
