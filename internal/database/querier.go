package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Querier interface {
	// users
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	GetCreatorByReferralCode(ctx context.Context, referralCode string) (User, error)
	UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error)
	UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error)
	CountUsersByRole(ctx context.Context, role UserRole) (int64, error)
	CountReferredUsers(ctx context.Context, creatorID uuid.UUID) (int64, error)

	// contests
	CreateContest(ctx context.Context, arg CreateContestParams) (Contest, error)
	GetContestByID(ctx context.Context, id uuid.UUID) (Contest, error)
	ListContests(ctx context.Context, limit *int32) ([]Contest, error)
	UpdateContest(ctx context.Context, arg UpdateContestParams) (Contest, error)
	SetContestStatus(ctx context.Context, id uuid.UUID, status ContestStatus) (Contest, error)
	DeleteContest(ctx context.Context, id uuid.UUID) (int64, error)
	CountContests(ctx context.Context) (int64, error)
	CountLiveContests(ctx context.Context, now time.Time) (int64, error)
	LockContest(ctx context.Context, id uuid.UUID) error

	// questions
	CreateQuestion(ctx context.Context, arg CreateQuestionParams) (Question, error)
	GetQuestionByID(ctx context.Context, id uuid.UUID) (Question, error)
	ListQuestionsByContest(ctx context.Context, contestID uuid.UUID) ([]Question, error)
	CountQuestionsByContest(ctx context.Context, contestID uuid.UUID) (int64, error)
	UpdateQuestion(ctx context.Context, arg UpdateQuestionParams) (Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) (int64, error)

	// registrations
	CreateRegistration(ctx context.Context, arg CreateRegistrationParams) (Registration, error)
	GetRegistrationByID(ctx context.Context, id uuid.UUID) (Registration, error)
	GetRegistrationByIDForUpdate(ctx context.Context, id uuid.UUID) (Registration, error)
	GetRegistrationByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Registration, error)
	ListRegistrations(ctx context.Context, arg ListRegistrationsParams) ([]Registration, error)
	CountRegistrationsByContests(ctx context.Context, contestIDs []uuid.UUID) ([]ContestRegistrationCount, error)
	CountRegistrationsByStatus(ctx context.Context, status PaymentStatus) (int64, error)
	UpdateRegistrationScreenshot(ctx context.Context, id uuid.UUID, screenshot string) (Registration, error)
	SetRegistrationStatus(ctx context.Context, arg SetRegistrationStatusParams) (Registration, error)
	SumApprovedRevenue(ctx context.Context) (float64, error)

	// attempts
	CreateAttempt(ctx context.Context, arg CreateAttemptParams) (Attempt, error)
	GetAttemptByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Attempt, error)
	SubmitAttempt(ctx context.Context, arg SubmitAttemptParams) (Attempt, error)

	// results
	CreateResult(ctx context.Context, arg CreateResultParams) (Result, error)
	GetResultByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Result, error)
	ListResultsByContest(ctx context.Context, contestID uuid.UUID) ([]Result, error)
	ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]Result, error)
	UpdateResultPublication(ctx context.Context, arg UpdateResultPublicationParams) (Result, error)

	// earnings
	CreateEarning(ctx context.Context, arg CreateEarningParams) (Earning, error)
	ListEarningsByCreator(ctx context.Context, creatorID uuid.UUID, limit *int32) ([]Earning, error)
	SumEarningsByCreator(ctx context.Context, creatorID uuid.UUID) (float64, error)

	// withdrawals
	CreateWithdrawal(ctx context.Context, arg CreateWithdrawalParams) (Withdrawal, error)
	GetWithdrawalByIDForUpdate(ctx context.Context, id uuid.UUID) (Withdrawal, error)
	ListWithdrawals(ctx context.Context, arg ListWithdrawalsParams) ([]Withdrawal, error)
	SetWithdrawalStatus(ctx context.Context, arg SetWithdrawalStatusParams) (Withdrawal, error)
	SumWithdrawalsByCreator(ctx context.Context, creatorID uuid.UUID, status WithdrawalStatus) (float64, error)
	LockCreatorBalance(ctx context.Context, creatorID uuid.UUID) error
}

// Store is a Querier that can also run a group of queries atomically.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

var _ Querier = (*Queries)(nil)
