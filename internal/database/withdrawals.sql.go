package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, creator_id, amount, payment_method, upi_id, bank_details, status, requested_at, processed_at`

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var w Withdrawal
	err := row.Scan(
		&w.ID,
		&w.CreatorID,
		&w.Amount,
		&w.PaymentMethod,
		&w.UpiID,
		&w.BankDetails,
		&w.Status,
		&w.RequestedAt,
		&w.ProcessedAt,
	)
	return w, err
}

const createWithdrawal = `-- name: CreateWithdrawal :one
INSERT INTO withdrawals (creator_id, amount, payment_method, upi_id, bank_details, status, requested_at)
VALUES ($1, $2, $3, $4, $5, 'pending', $6)
RETURNING ` + withdrawalColumns + `
`

func (q *Queries) CreateWithdrawal(ctx context.Context, arg CreateWithdrawalParams) (Withdrawal, error) {
	return scanWithdrawal(q.db.QueryRow(ctx, createWithdrawal,
		arg.CreatorID,
		arg.Amount,
		arg.PaymentMethod,
		arg.UpiID,
		arg.BankDetails,
		arg.RequestedAt,
	))
}

const getWithdrawalByIDForUpdate = `-- name: GetWithdrawalByIDForUpdate :one
SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetWithdrawalByIDForUpdate(ctx context.Context, id uuid.UUID) (Withdrawal, error) {
	return scanWithdrawal(q.db.QueryRow(ctx, getWithdrawalByIDForUpdate, id))
}

const listWithdrawals = `-- name: ListWithdrawals :many
SELECT ` + withdrawalColumns + ` FROM withdrawals
WHERE ($1::uuid IS NULL OR creator_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY requested_at DESC
`

func (q *Queries) ListWithdrawals(ctx context.Context, arg ListWithdrawalsParams) ([]Withdrawal, error) {
	rows, err := q.db.Query(ctx, listWithdrawals, arg.CreatorID, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const setWithdrawalStatus = `-- name: SetWithdrawalStatus :one
UPDATE withdrawals SET status = $2, processed_at = $3 WHERE id = $1
RETURNING ` + withdrawalColumns + `
`

func (q *Queries) SetWithdrawalStatus(ctx context.Context, arg SetWithdrawalStatusParams) (Withdrawal, error) {
	return scanWithdrawal(q.db.QueryRow(ctx, setWithdrawalStatus, arg.ID, arg.Status, arg.ProcessedAt))
}

const sumWithdrawalsByCreator = `-- name: SumWithdrawalsByCreator :one
SELECT COALESCE(SUM(amount), 0)::double precision FROM withdrawals WHERE creator_id = $1 AND status = $2
`

func (q *Queries) SumWithdrawalsByCreator(ctx context.Context, creatorID uuid.UUID, status WithdrawalStatus) (float64, error) {
	var total float64
	err := q.db.QueryRow(ctx, sumWithdrawalsByCreator, creatorID, status).Scan(&total)
	return total, err
}

const lockCreatorBalance = `-- name: LockCreatorBalance :exec
SELECT pg_advisory_xact_lock(hashtextextended('balance:' || $1::text, 0))
`

// LockCreatorBalance serializes balance checks of one creator for the rest of
// the transaction.
func (q *Queries) LockCreatorBalance(ctx context.Context, creatorID uuid.UUID) error {
	_, err := q.db.Exec(ctx, lockCreatorBalance, creatorID.String())
	return err
}
