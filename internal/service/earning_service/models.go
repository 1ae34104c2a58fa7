package earning_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

const (
	DefaultMinWithdrawal = 300
	recentEarningsLimit  = 10
)

type EarningService struct {
	DB                database.Store
	UserServiceConfig *user_service.UserService
	Now               func() time.Time
	MinWithdrawal     float64
}

var (
	errMsgs = map[string]map[string]string{
		app_errors.CodeUniqueConstraint: {
			database.ConstraintEarningRegistration: "commission already recorded for this registration",
		},
		app_errors.CodeForeignKeyConstraint: {
			"earnings_registration_id_fkey": "registration does not exist",
		},
	}
)

type Earning struct {
	ID             uuid.UUID `json:"id"`
	CreatorID      uuid.UUID `json:"creatorId"`
	RegistrationID uuid.UUID `json:"registrationId"`
	ContestID      uuid.UUID `json:"contestId"`
	Amount         float64   `json:"amount"`
	EarnedAt       time.Time `json:"earnedAt"`
}

type CreatorStats struct {
	TotalEarnings      float64 `json:"totalEarnings"`
	PendingWithdrawals float64 `json:"pendingWithdrawals"`
	TotalReferrals     int64   `json:"totalReferrals"`
	AvailableBalance   float64 `json:"availableBalance"`
}

type WithdrawalRequest struct {
	Amount        float64           `json:"amount" validate:"gt=0"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=upi bank"`
	UpiID         *string           `json:"upiId" validate:"required_if=PaymentMethod upi"`
	BankDetails   map[string]string `json:"bankDetails" validate:"required_if=PaymentMethod bank"`
}

type Withdrawal struct {
	ID            uuid.UUID                 `json:"id"`
	CreatorID     uuid.UUID                 `json:"creatorId"`
	CreatorName   string                    `json:"creatorName,omitempty"`
	CreatorEmail  string                    `json:"creatorEmail,omitempty"`
	Amount        float64                   `json:"amount"`
	PaymentMethod string                    `json:"paymentMethod"`
	UpiID         *string                   `json:"upiId,omitempty"`
	BankDetails   map[string]string         `json:"bankDetails,omitempty"`
	Status        database.WithdrawalStatus `json:"status"`
	RequestedAt   time.Time                 `json:"requestedAt"`
	ProcessedAt   *time.Time                `json:"processedAt,omitempty"`
}

func ToEarning(e database.Earning) Earning {
	return Earning{
		ID:             e.ID,
		CreatorID:      e.CreatorID,
		RegistrationID: e.RegistrationID,
		ContestID:      e.ContestID,
		Amount:         e.Amount,
		EarnedAt:       e.EarnedAt,
	}
}

func ToWithdrawal(w database.Withdrawal) Withdrawal {
	return Withdrawal{
		ID:            w.ID,
		CreatorID:     w.CreatorID,
		Amount:        w.Amount,
		PaymentMethod: w.PaymentMethod,
		UpiID:         w.UpiID,
		BankDetails:   w.BankDetails,
		Status:        w.Status,
		RequestedAt:   w.RequestedAt,
		ProcessedAt:   w.ProcessedAt,
	}
}
