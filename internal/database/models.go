package database

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

type ContestStatus string

const (
	ContestStatusUpcoming  ContestStatus = "upcoming"
	ContestStatusLive      ContestStatus = "live"
	ContestStatusCompleted ContestStatus = "completed"
)

type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeFillBlank   QuestionType = "fill_blank"
	QuestionTypeShortAnswer QuestionType = "short_answer"
	QuestionTypeInteger     QuestionType = "integer"
	QuestionTypeCoding      QuestionType = "coding"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// unique constraint names, shared by the postgres schema and memstore
const (
	ConstraintUserEmail               = "users_email_key"
	ConstraintUserReferralCode        = "users_referral_code_key"
	ConstraintQuestionContestOrder    = "questions_contest_order_key"
	ConstraintRegistrationUserContest = "registrations_user_contest_key"
	ConstraintAttemptUserContest      = "attempts_user_contest_key"
	ConstraintResultUserContest       = "results_user_contest_key"
	ConstraintEarningRegistration     = "earnings_registration_key"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         UserRole
	College      *string
	Phone        *string
	UpiID        *string
	ReferralCode *string
	ReferredBy   *uuid.UUID
	CreatedAt    time.Time
}

type PrizeTier struct {
	Rank  int32   `json:"rank"`
	Prize float64 `json:"prize"`
	Title *string `json:"title,omitempty"`
}

type Contest struct {
	ID                        uuid.UUID
	Title                     string
	Description               string
	Type                      QuestionType
	Category                  string
	Prize                     float64
	Prizes                    []PrizeTier
	Fee                       float64
	StartTime                 time.Time
	EndTime                   time.Time
	Duration                  int32
	MaxParticipants           *int32
	Status                    ContestStatus
	QrCodeUrl                 *string
	CommissionPerRegistration float64
	NegativeMarking           bool
	NegativeMarkValue         float64
	TotalMarks                float64
	PassingMarks              *float64
	CreatedAt                 time.Time
}

type Question struct {
	ID            uuid.UUID
	ContestID     uuid.UUID
	Type          QuestionType
	QuestionText  string
	Options       []string
	CorrectAnswer *string
	Marks         float64
	Explanation   *string
	Order         int32
}

type Registration struct {
	ID                uuid.UUID
	ContestID         uuid.UUID
	UserID            uuid.UUID
	PaymentScreenshot *string
	PaymentStatus     PaymentStatus
	ReferralCode      *string
	RegisteredAt      time.Time
	ApprovedAt        *time.Time
}

type Attempt struct {
	ID             uuid.UUID
	ContestID      uuid.UUID
	UserID         uuid.UUID
	Answers        map[string]string
	StartedAt      time.Time
	SubmittedAt    *time.Time
	AutoSubmitted  bool
	TabSwitchCount int32
	Score          *float64
	Rank           *int32
}

type Result struct {
	ID               uuid.UUID
	ContestID        uuid.UUID
	UserID           uuid.UUID
	Score            float64
	Rank             int32
	TotalQuestions   int32
	CorrectAnswers   int32
	WrongAnswers     int32
	Unanswered       int32
	Prize            *float64
	IsWinner         bool
	PublishedAt      *time.Time
	TimeTakenSeconds *int64
	Answers          map[string]string
	TabSwitchCount   int32
	CreatedAt        time.Time
}

type Earning struct {
	ID             uuid.UUID
	CreatorID      uuid.UUID
	RegistrationID uuid.UUID
	ContestID      uuid.UUID
	Amount         float64
	EarnedAt       time.Time
}

type Withdrawal struct {
	ID            uuid.UUID
	CreatorID     uuid.UUID
	Amount        float64
	PaymentMethod string
	UpiID         *string
	BankDetails   map[string]string
	Status        WithdrawalStatus
	RequestedAt   time.Time
	ProcessedAt   *time.Time
}

type ContestRegistrationCount struct {
	ContestID uuid.UUID
	Count     int64
}
