// Package memstore is an in-memory database.Store. It reports constraint
// violations and missing rows with the same error values the postgres store
// produces, so service code and its error mapping behave identically.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

type state struct {
	users         map[uuid.UUID]database.User
	contests      map[uuid.UUID]database.Contest
	questions     map[uuid.UUID]database.Question
	registrations map[uuid.UUID]database.Registration
	attempts      map[uuid.UUID]database.Attempt
	results       map[uuid.UUID]database.Result
	earnings      map[uuid.UUID]database.Earning
	withdrawals   map[uuid.UUID]database.Withdrawal
}

func newState() *state {
	return &state{
		users:         map[uuid.UUID]database.User{},
		contests:      map[uuid.UUID]database.Contest{},
		questions:     map[uuid.UUID]database.Question{},
		registrations: map[uuid.UUID]database.Registration{},
		attempts:      map[uuid.UUID]database.Attempt{},
		results:       map[uuid.UUID]database.Result{},
		earnings:      map[uuid.UUID]database.Earning{},
		withdrawals:   map[uuid.UUID]database.Withdrawal{},
	}
}

// rows are replaced wholesale on every write, so copying the maps is enough
// to snapshot the state
func (s *state) clone() *state {
	return &state{
		users:         cloneMap(s.users),
		contests:      cloneMap(s.contests),
		questions:     cloneMap(s.questions),
		registrations: cloneMap(s.registrations),
		attempts:      cloneMap(s.attempts),
		results:       cloneMap(s.results),
		earnings:      cloneMap(s.earnings),
		withdrawals:   cloneMap(s.withdrawals),
	}
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state

	// Now stamps rows whose params carry no timestamp.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		data: newState(),
		Now:  time.Now,
	}
}

var _ database.Store = (*Store)(nil)

// ExecTx serializes transactions and restores the pre-transaction snapshot
// when fn fails.
func (s *Store) ExecTx(ctx context.Context, fn func(q database.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           app_errors.CodeUniqueConstraint,
		ConstraintName: constraint,
		Message:        "duplicate key value violates unique constraint",
	}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           app_errors.CodeForeignKeyConstraint,
		ConstraintName: constraint,
		Message:        "insert or update violates foreign key constraint",
	}
}

func errNoRows() error {
	return pgx.ErrNoRows
}

func applyLimit[T any](items []T, limit *int32) []T {
	if limit == nil || int(*limit) >= len(items) {
		return items
	}
	if *limit < 0 {
		return items
	}
	return items[:*limit]
}
