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

func (e *EarningService) minWithdrawal() float64 {
	if e.MinWithdrawal > 0 {
		return e.MinWithdrawal
	}
	return DefaultMinWithdrawal
}

// RequestWithdrawal reserves amount from the caller's available balance.
// The balance check and insert run under a per-creator lock.
func (e *EarningService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (Withdrawal, error) {
	if err := service.ValidateInput(req); err != nil {
		return Withdrawal{}, err
	}
	creatorID, err := creatorFromContext(ctx)
	if err != nil {
		return Withdrawal{}, err
	}

	var created database.Withdrawal
	err = e.DB.ExecTx(ctx, func(q database.Querier) error {
		if err := q.LockCreatorBalance(ctx, creatorID); err != nil {
			err = fmt.Errorf("%w, cannot lock balance of %v, %w", app_errors.ErrInternal, creatorID, err)
			log.Error(err)
			return err
		}

		stats, err := creatorStats(ctx, q, creatorID)
		if err != nil {
			return err
		}
		if stats.AvailableBalance < e.minWithdrawal() {
			err := fmt.Errorf(
				"%w, minimum balance for withdrawal is %.2f",
				app_errors.ErrInsufficientBalance,
				e.minWithdrawal(),
			)
			log.Warnf("creator %s: %v", creatorID, err)
			return err
		}
		if req.Amount > stats.AvailableBalance {
			err := fmt.Errorf(
				"%w, requested %.2f but only %.2f is available",
				app_errors.ErrInsufficientBalance,
				req.Amount,
				stats.AvailableBalance,
			)
			log.Warnf("creator %s: %v", creatorID, err)
			return err
		}

		created, err = q.CreateWithdrawal(ctx, database.CreateWithdrawalParams{
			CreatorID:     creatorID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			UpiID:         req.UpiID,
			BankDetails:   req.BankDetails,
			RequestedAt:   e.Now(),
		})
		if err != nil {
			return app_errors.HandleDBErrors(err, errMsgs, "cannot create withdrawal")
		}
		return nil
	})
	if err != nil {
		return Withdrawal{}, err
	}

	log.Infof("creator %s requested withdrawal %s of %.2f", creatorID, created.ID, created.Amount)
	return ToWithdrawal(created), nil
}

func (e *EarningService) MyWithdrawals(ctx context.Context) ([]Withdrawal, error) {
	creatorID, err := creatorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return e.listWithdrawals(ctx, database.ListWithdrawalsParams{CreatorID: &creatorID}, false)
}

// ListAllWithdrawals is the admin view, enriched with the creator's name and
// email.
func (e *EarningService) ListAllWithdrawals(
	ctx context.Context,
	status *database.WithdrawalStatus,
) ([]Withdrawal, error) {
	return e.listWithdrawals(ctx, database.ListWithdrawalsParams{Status: status}, true)
}

func (e *EarningService) listWithdrawals(
	ctx context.Context,
	params database.ListWithdrawalsParams,
	enrich bool,
) ([]Withdrawal, error) {
	dbWithdrawals, err := e.DB.ListWithdrawals(ctx, params)
	if err != nil {
		err = fmt.Errorf("%w, cannot list withdrawals, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}

	withdrawals := make([]Withdrawal, 0, len(dbWithdrawals))
	for _, dbWithdrawal := range dbWithdrawals {
		withdrawals = append(withdrawals, ToWithdrawal(dbWithdrawal))
	}
	if !enrich || len(withdrawals) == 0 {
		return withdrawals, nil
	}

	ids := make([]uuid.UUID, 0, len(withdrawals))
	for _, w := range withdrawals {
		ids = append(ids, w.CreatorID)
	}
	users, err := e.UserServiceConfig.GetUsersMap(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range withdrawals {
		if user, ok := users[withdrawals[i].CreatorID]; ok {
			withdrawals[i].CreatorName = user.Name
			withdrawals[i].CreatorEmail = user.Email
		}
	}
	return withdrawals, nil
}

func (e *EarningService) ApproveWithdrawal(ctx context.Context, id uuid.UUID) (Withdrawal, error) {
	return e.decideWithdrawal(ctx, id, database.WithdrawalStatusApproved)
}

func (e *EarningService) RejectWithdrawal(ctx context.Context, id uuid.UUID) (Withdrawal, error) {
	return e.decideWithdrawal(ctx, id, database.WithdrawalStatusRejected)
}

func (e *EarningService) decideWithdrawal(
	ctx context.Context,
	id uuid.UUID,
	status database.WithdrawalStatus,
) (Withdrawal, error) {
	var updated database.Withdrawal
	err := e.DB.ExecTx(ctx, func(q database.Querier) error {
		w, err := q.GetWithdrawalByIDForUpdate(ctx, id)
		if err != nil {
			return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch withdrawal %v", id))
		}
		if w.Status != database.WithdrawalStatusPending {
			err := fmt.Errorf("%w, withdrawal is already %s", app_errors.ErrInvalidRequest, w.Status)
			log.Warnf("withdrawal %s: %v", id, err)
			return err
		}
		updated, err = q.SetWithdrawalStatus(ctx, database.SetWithdrawalStatusParams{
			ID:          id,
			Status:      status,
			ProcessedAt: e.Now(),
		})
		if err != nil {
			return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update withdrawal %v", id))
		}
		return nil
	})
	if err != nil {
		return Withdrawal{}, err
	}
	log.Infof("withdrawal %s %s", id, status)
	return ToWithdrawal(updated), nil
}
