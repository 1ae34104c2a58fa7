package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

func contestFromParams(id uuid.UUID, arg database.CreateContestParams) database.Contest {
	prizes := arg.Prizes
	if prizes == nil {
		prizes = []database.PrizeTier{}
	}
	return database.Contest{
		ID:                        id,
		Title:                     arg.Title,
		Description:               arg.Description,
		Type:                      arg.Type,
		Category:                  arg.Category,
		Prize:                     arg.Prize,
		Prizes:                    append([]database.PrizeTier(nil), prizes...),
		Fee:                       arg.Fee,
		StartTime:                 arg.StartTime,
		EndTime:                   arg.EndTime,
		Duration:                  arg.Duration,
		MaxParticipants:           arg.MaxParticipants,
		QrCodeUrl:                 arg.QrCodeUrl,
		CommissionPerRegistration: arg.CommissionPerRegistration,
		NegativeMarking:           arg.NegativeMarking,
		NegativeMarkValue:         arg.NegativeMarkValue,
		TotalMarks:                arg.TotalMarks,
		PassingMarks:              arg.PassingMarks,
	}
}

func (s *Store) CreateContest(ctx context.Context, arg database.CreateContestParams) (database.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := contestFromParams(uuid.New(), arg)
	c.Status = database.ContestStatusUpcoming
	c.CreatedAt = s.Now()
	s.data.contests[c.ID] = c
	return c, nil
}

func (s *Store) GetContestByID(ctx context.Context, id uuid.UUID) (database.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data.contests[id]
	if !ok {
		return database.Contest{}, errNoRows()
	}
	return c, nil
}

func (s *Store) ListContests(ctx context.Context, limit *int32) ([]database.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.Contest, 0, len(s.data.contests))
	for _, c := range s.data.contests {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return applyLimit(out, limit), nil
}

func (s *Store) UpdateContest(ctx context.Context, arg database.UpdateContestParams) (database.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data.contests[arg.ID]
	if !ok {
		return database.Contest{}, errNoRows()
	}
	c := contestFromParams(arg.ID, arg.CreateContestParams)
	c.Status = existing.Status
	c.CreatedAt = existing.CreatedAt
	s.data.contests[c.ID] = c
	return c, nil
}

func (s *Store) SetContestStatus(ctx context.Context, id uuid.UUID, status database.ContestStatus) (database.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.contests[id]
	if !ok {
		return database.Contest{}, errNoRows()
	}
	c.Status = status
	s.data.contests[id] = c
	return c, nil
}

// DeleteContest cascades to the contest's questions, registrations,
// attempts, results and earnings.
func (s *Store) DeleteContest(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.contests[id]; !ok {
		return 0, nil
	}
	delete(s.data.contests, id)
	for qid, q := range s.data.questions {
		if q.ContestID == id {
			delete(s.data.questions, qid)
		}
	}
	for rid, r := range s.data.registrations {
		if r.ContestID == id {
			delete(s.data.registrations, rid)
		}
	}
	for aid, a := range s.data.attempts {
		if a.ContestID == id {
			delete(s.data.attempts, aid)
		}
	}
	for rid, r := range s.data.results {
		if r.ContestID == id {
			delete(s.data.results, rid)
		}
	}
	for eid, e := range s.data.earnings {
		if e.ContestID == id {
			delete(s.data.earnings, eid)
		}
	}
	return 1, nil
}

func (s *Store) CountContests(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data.contests)), nil
}

func (s *Store) CountLiveContests(ctx context.Context, now time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.data.contests {
		if !now.Before(c.StartTime) && !now.After(c.EndTime) {
			n++
		}
	}
	return n, nil
}

// LockContest is a no-op; ExecTx already serializes transactions.
func (s *Store) LockContest(ctx context.Context, id uuid.UUID) error {
	return nil
}
