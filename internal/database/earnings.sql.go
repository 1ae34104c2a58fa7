package database

import (
	"context"

	"github.com/google/uuid"
)

const earningColumns = `id, creator_id, registration_id, contest_id, amount, earned_at`

const createEarning = `-- name: CreateEarning :one
INSERT INTO earnings (creator_id, registration_id, contest_id, amount, earned_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + earningColumns + `
`

func (q *Queries) CreateEarning(ctx context.Context, arg CreateEarningParams) (Earning, error) {
	var e Earning
	err := q.db.QueryRow(ctx, createEarning,
		arg.CreatorID,
		arg.RegistrationID,
		arg.ContestID,
		arg.Amount,
		arg.EarnedAt,
	).Scan(&e.ID, &e.CreatorID, &e.RegistrationID, &e.ContestID, &e.Amount, &e.EarnedAt)
	return e, err
}

const listEarningsByCreator = `-- name: ListEarningsByCreator :many
SELECT ` + earningColumns + ` FROM earnings WHERE creator_id = $1
ORDER BY earned_at DESC
LIMIT $2
`

func (q *Queries) ListEarningsByCreator(ctx context.Context, creatorID uuid.UUID, limit *int32) ([]Earning, error) {
	rows, err := q.db.Query(ctx, listEarningsByCreator, creatorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Earning
	for rows.Next() {
		var e Earning
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.RegistrationID, &e.ContestID, &e.Amount, &e.EarnedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const sumEarningsByCreator = `-- name: SumEarningsByCreator :one
SELECT COALESCE(SUM(amount), 0)::double precision FROM earnings WHERE creator_id = $1
`

func (q *Queries) SumEarningsByCreator(ctx context.Context, creatorID uuid.UUID) (float64, error) {
	var total float64
	err := q.db.QueryRow(ctx, sumEarningsByCreator, creatorID).Scan(&total)
	return total, err
}
