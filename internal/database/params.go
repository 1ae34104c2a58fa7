package database

import (
	"time"

	"github.com/google/uuid"
)

type UpsertUserParams struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         UserRole
	College      *string
	Phone        *string
	ReferralCode *string
	ReferredBy   *uuid.UUID
}

type UpdateUserProfileParams struct {
	ID      uuid.UUID
	Name    *string
	College *string
	Phone   *string
	UpiID   *string
}

type CreateContestParams struct {
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
	QrCodeUrl                 *string
	CommissionPerRegistration float64
	NegativeMarking           bool
	NegativeMarkValue         float64
	TotalMarks                float64
	PassingMarks              *float64
}

type UpdateContestParams struct {
	ID uuid.UUID
	CreateContestParams
}

type CreateQuestionParams struct {
	ContestID     uuid.UUID
	Type          QuestionType
	QuestionText  string
	Options       []string
	CorrectAnswer *string
	Marks         float64
	Explanation   *string
	Order         int32
}

type UpdateQuestionParams struct {
	ID            uuid.UUID
	Type          QuestionType
	QuestionText  string
	Options       []string
	CorrectAnswer *string
	Marks         float64
	Explanation   *string
	Order         int32
}

type CreateRegistrationParams struct {
	ContestID         uuid.UUID
	UserID            uuid.UUID
	PaymentScreenshot *string
	ReferralCode      *string
	RegisteredAt      time.Time
}

// nil fields are not filtered on
type ListRegistrationsParams struct {
	UserID        *uuid.UUID
	ContestID     *uuid.UUID
	PaymentStatus *PaymentStatus
	Limit         *int32
}

type SetRegistrationStatusParams struct {
	ID            uuid.UUID
	PaymentStatus PaymentStatus
	ApprovedAt    *time.Time
}

type CreateAttemptParams struct {
	ContestID uuid.UUID
	UserID    uuid.UUID
	StartedAt time.Time
}

type SubmitAttemptParams struct {
	ID             uuid.UUID
	Answers        map[string]string
	SubmittedAt    time.Time
	AutoSubmitted  bool
	TabSwitchCount int32
	Score          float64
}

type CreateResultParams struct {
	ContestID        uuid.UUID
	UserID           uuid.UUID
	Score            float64
	TotalQuestions   int32
	CorrectAnswers   int32
	WrongAnswers     int32
	Unanswered       int32
	TimeTakenSeconds *int64
	Answers          map[string]string
	TabSwitchCount   int32
	CreatedAt        time.Time
}

type UpdateResultPublicationParams struct {
	ID          uuid.UUID
	Rank        int32
	Prize       *float64
	IsWinner    bool
	PublishedAt time.Time
}

type CreateEarningParams struct {
	CreatorID      uuid.UUID
	RegistrationID uuid.UUID
	ContestID      uuid.UUID
	Amount         float64
	EarnedAt       time.Time
}

type CreateWithdrawalParams struct {
	CreatorID     uuid.UUID
	Amount        float64
	PaymentMethod string
	UpiID         *string
	BankDetails   map[string]string
	RequestedAt   time.Time
}

type ListWithdrawalsParams struct {
	CreatorID *uuid.UUID
	Status    *WithdrawalStatus
}

type SetWithdrawalStatusParams struct {
	ID          uuid.UUID
	Status      WithdrawalStatus
	ProcessedAt time.Time
}
