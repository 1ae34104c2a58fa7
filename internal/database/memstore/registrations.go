package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func (s *Store) CreateRegistration(ctx context.Context, arg database.CreateRegistrationParams) (database.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.contests[arg.ContestID]; !ok {
		return database.Registration{}, foreignKeyViolation("registrations_contest_id_fkey")
	}
	for _, r := range s.data.registrations {
		if r.UserID == arg.UserID && r.ContestID == arg.ContestID {
			return database.Registration{}, uniqueViolation(database.ConstraintRegistrationUserContest)
		}
	}
	r := database.Registration{
		ID:                uuid.New(),
		ContestID:         arg.ContestID,
		UserID:            arg.UserID,
		PaymentScreenshot: arg.PaymentScreenshot,
		PaymentStatus:     database.PaymentStatusPending,
		ReferralCode:      arg.ReferralCode,
		RegisteredAt:      arg.RegisteredAt,
	}
	s.data.registrations[r.ID] = r
	return r, nil
}

func (s *Store) GetRegistrationByID(ctx context.Context, id uuid.UUID) (database.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data.registrations[id]
	if !ok {
		return database.Registration{}, errNoRows()
	}
	return r, nil
}

func (s *Store) GetRegistrationByIDForUpdate(ctx context.Context, id uuid.UUID) (database.Registration, error) {
	return s.GetRegistrationByID(ctx, id)
}

func (s *Store) GetRegistrationByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (database.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.data.registrations {
		if r.UserID == userID && r.ContestID == contestID {
			return r, nil
		}
	}
	return database.Registration{}, errNoRows()
}

func (s *Store) ListRegistrations(ctx context.Context, arg database.ListRegistrationsParams) ([]database.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Registration
	for _, r := range s.data.registrations {
		if arg.UserID != nil && r.UserID != *arg.UserID {
			continue
		}
		if arg.ContestID != nil && r.ContestID != *arg.ContestID {
			continue
		}
		if arg.PaymentStatus != nil && r.PaymentStatus != *arg.PaymentStatus {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return applyLimit(out, arg.Limit), nil
}

func (s *Store) CountRegistrationsByContests(ctx context.Context, contestIDs []uuid.UUID) ([]database.ContestRegistrationCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range contestIDs {
		wanted[id] = true
	}
	counts := map[uuid.UUID]int64{}
	for _, r := range s.data.registrations {
		if wanted[r.ContestID] {
			counts[r.ContestID]++
		}
	}
	out := make([]database.ContestRegistrationCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, database.ContestRegistrationCount{ContestID: id, Count: n})
	}
	return out, nil
}

func (s *Store) CountRegistrationsByStatus(ctx context.Context, status database.PaymentStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.data.registrations {
		if r.PaymentStatus == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateRegistrationScreenshot(ctx context.Context, id uuid.UUID, screenshot string) (database.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.registrations[id]
	if !ok || r.PaymentStatus != database.PaymentStatusPending {
		return database.Registration{}, errNoRows()
	}
	r.PaymentScreenshot = &screenshot
	s.data.registrations[id] = r
	return r, nil
}

func (s *Store) SetRegistrationStatus(ctx context.Context, arg database.SetRegistrationStatusParams) (database.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.registrations[arg.ID]
	if !ok {
		return database.Registration{}, errNoRows()
	}
	r.PaymentStatus = arg.PaymentStatus
	r.ApprovedAt = arg.ApprovedAt
	s.data.registrations[r.ID] = r
	return r, nil
}

func (s *Store) SumApprovedRevenue(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, r := range s.data.registrations {
		if r.PaymentStatus != database.PaymentStatusApproved {
			continue
		}
		if c, ok := s.data.contests[r.ContestID]; ok {
			total += c.Fee
		}
	}
	return total, nil
}
