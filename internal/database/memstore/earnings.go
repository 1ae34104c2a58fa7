package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func (s *Store) CreateEarning(ctx context.Context, arg database.CreateEarningParams) (database.Earning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.registrations[arg.RegistrationID]; !ok {
		return database.Earning{}, foreignKeyViolation("earnings_registration_id_fkey")
	}
	for _, e := range s.data.earnings {
		if e.RegistrationID == arg.RegistrationID {
			return database.Earning{}, uniqueViolation(database.ConstraintEarningRegistration)
		}
	}
	e := database.Earning{
		ID:             uuid.New(),
		CreatorID:      arg.CreatorID,
		RegistrationID: arg.RegistrationID,
		ContestID:      arg.ContestID,
		Amount:         arg.Amount,
		EarnedAt:       arg.EarnedAt,
	}
	s.data.earnings[e.ID] = e
	return e, nil
}

func (s *Store) ListEarningsByCreator(ctx context.Context, creatorID uuid.UUID, limit *int32) ([]database.Earning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Earning
	for _, e := range s.data.earnings {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return applyLimit(out, limit), nil
}

func (s *Store) SumEarningsByCreator(ctx context.Context, creatorID uuid.UUID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.data.earnings {
		if e.CreatorID == creatorID {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) CreateWithdrawal(ctx context.Context, arg database.CreateWithdrawalParams) (database.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := database.Withdrawal{
		ID:            uuid.New(),
		CreatorID:     arg.CreatorID,
		Amount:        arg.Amount,
		PaymentMethod: arg.PaymentMethod,
		UpiID:         arg.UpiID,
		BankDetails:   arg.BankDetails,
		Status:        database.WithdrawalStatusPending,
		RequestedAt:   arg.RequestedAt,
	}
	s.data.withdrawals[w.ID] = w
	return w, nil
}

func (s *Store) GetWithdrawalByIDForUpdate(ctx context.Context, id uuid.UUID) (database.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.data.withdrawals[id]
	if !ok {
		return database.Withdrawal{}, errNoRows()
	}
	return w, nil
}

func (s *Store) ListWithdrawals(ctx context.Context, arg database.ListWithdrawalsParams) ([]database.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Withdrawal
	for _, w := range s.data.withdrawals {
		if arg.CreatorID != nil && w.CreatorID != *arg.CreatorID {
			continue
		}
		if arg.Status != nil && w.Status != *arg.Status {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (s *Store) SetWithdrawalStatus(ctx context.Context, arg database.SetWithdrawalStatusParams) (database.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.withdrawals[arg.ID]
	if !ok {
		return database.Withdrawal{}, errNoRows()
	}
	processedAt := arg.ProcessedAt
	w.Status = arg.Status
	w.ProcessedAt = &processedAt
	s.data.withdrawals[w.ID] = w
	return w, nil
}

func (s *Store) SumWithdrawalsByCreator(ctx context.Context, creatorID uuid.UUID, status database.WithdrawalStatus) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, w := range s.data.withdrawals {
		if w.CreatorID == creatorID && w.Status == status {
			total += w.Amount
		}
	}
	return total, nil
}

// LockCreatorBalance is a no-op; ExecTx already serializes transactions.
func (s *Store) LockCreatorBalance(ctx context.Context, creatorID uuid.UUID) error {
	return nil
}
