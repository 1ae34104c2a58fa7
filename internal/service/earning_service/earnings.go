package earning_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

func creatorFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

func (e *EarningService) GetCreatorStats(ctx context.Context) (CreatorStats, error) {
	creatorID, err := creatorFromContext(ctx)
	if err != nil {
		return CreatorStats{}, err
	}

	stats, err := creatorStats(ctx, e.DB, creatorID)
	if err != nil {
		return CreatorStats{}, err
	}

	referrals, err := e.DB.CountReferredUsers(ctx, creatorID)
	if err != nil {
		err = fmt.Errorf("%w, cannot count referrals of %v, %w", app_errors.ErrInternal, creatorID, err)
		log.Error(err)
		return CreatorStats{}, err
	}
	stats.TotalReferrals = referrals
	return stats, nil
}

// creatorStats fills the money fields. Pending withdrawals are reserved, so
// they reduce the available balance the same as approved ones.
func creatorStats(ctx context.Context, q database.Querier, creatorID uuid.UUID) (CreatorStats, error) {
	wrap := func(what string, err error) error {
		err = fmt.Errorf("%w, cannot sum %s of creator %v, %w", app_errors.ErrInternal, what, creatorID, err)
		log.Error(err)
		return err
	}

	total, err := q.SumEarningsByCreator(ctx, creatorID)
	if err != nil {
		return CreatorStats{}, wrap("earnings", err)
	}
	approved, err := q.SumWithdrawalsByCreator(ctx, creatorID, database.WithdrawalStatusApproved)
	if err != nil {
		return CreatorStats{}, wrap("approved withdrawals", err)
	}
	pending, err := q.SumWithdrawalsByCreator(ctx, creatorID, database.WithdrawalStatusPending)
	if err != nil {
		return CreatorStats{}, wrap("pending withdrawals", err)
	}

	return CreatorStats{
		TotalEarnings:      total,
		PendingWithdrawals: pending,
		AvailableBalance:   total - approved - pending,
	}, nil
}

func (e *EarningService) RecentEarnings(ctx context.Context) ([]Earning, error) {
	creatorID, err := creatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	limit := int32(recentEarningsLimit)
	dbEarnings, err := e.DB.ListEarningsByCreator(ctx, creatorID, &limit)
	if err != nil {
		err = fmt.Errorf("%w, cannot list earnings of %v, %w", app_errors.ErrInternal, creatorID, err)
		log.Error(err)
		return nil, err
	}

	earnings := make([]Earning, 0, len(dbEarnings))
	for _, dbEarning := range dbEarnings {
		earnings = append(earnings, ToEarning(dbEarning))
	}
	return earnings, nil
}
