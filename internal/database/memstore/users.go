package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.data.users[id]
	if !ok {
		return database.User{}, errNoRows()
	}
	return u, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.User
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.data.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) GetCreatorByReferralCode(ctx context.Context, referralCode string) (database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.users {
		if u.Role == database.RoleCreator && u.ReferralCode != nil && *u.ReferralCode == referralCode {
			return u, nil
		}
	}
	return database.User{}, errNoRows()
}

func (s *Store) UpsertUser(ctx context.Context, arg database.UpsertUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found := s.data.users[arg.ID]
	u := database.User{
		ID:           arg.ID,
		Email:        arg.Email,
		Name:         arg.Name,
		Role:         arg.Role,
		College:      arg.College,
		Phone:        arg.Phone,
		ReferralCode: arg.ReferralCode,
		ReferredBy:   arg.ReferredBy,
		CreatedAt:    s.Now(),
	}
	if found {
		u.CreatedAt = existing.CreatedAt
		u.UpiID = existing.UpiID
		if u.College == nil {
			u.College = existing.College
		}
		if u.Phone == nil {
			u.Phone = existing.Phone
		}
		if existing.ReferralCode != nil {
			u.ReferralCode = existing.ReferralCode
		}
		if existing.ReferredBy != nil {
			u.ReferredBy = existing.ReferredBy
		}
	}

	for id, other := range s.data.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return database.User{}, uniqueViolation(database.ConstraintUserEmail)
		}
		if u.ReferralCode != nil && other.ReferralCode != nil && *u.ReferralCode == *other.ReferralCode {
			return database.User{}, uniqueViolation(database.ConstraintUserReferralCode)
		}
	}

	s.data.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[arg.ID]
	if !ok {
		return database.User{}, errNoRows()
	}
	if arg.Name != nil {
		u.Name = *arg.Name
	}
	if arg.College != nil {
		u.College = arg.College
	}
	if arg.Phone != nil {
		u.Phone = arg.Phone
	}
	if arg.UpiID != nil {
		u.UpiID = arg.UpiID
	}
	s.data.users[u.ID] = u
	return u, nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role database.UserRole) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountReferredUsers(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.data.users {
		if u.ReferredBy != nil && *u.ReferredBy == creatorID {
			n++
		}
	}
	return n, nil
}
