package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const registrationColumns = `id, contest_id, user_id, payment_screenshot, payment_status, referral_code, registered_at, approved_at`

func scanRegistration(row pgx.Row) (Registration, error) {
	var r Registration
	err := row.Scan(
		&r.ID,
		&r.ContestID,
		&r.UserID,
		&r.PaymentScreenshot,
		&r.PaymentStatus,
		&r.ReferralCode,
		&r.RegisteredAt,
		&r.ApprovedAt,
	)
	return r, err
}

const createRegistration = `-- name: CreateRegistration :one
INSERT INTO registrations (contest_id, user_id, payment_screenshot, payment_status, referral_code, registered_at)
VALUES ($1, $2, $3, 'pending', $4, $5)
RETURNING ` + registrationColumns + `
`

func (q *Queries) CreateRegistration(ctx context.Context, arg CreateRegistrationParams) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, createRegistration,
		arg.ContestID,
		arg.UserID,
		arg.PaymentScreenshot,
		arg.ReferralCode,
		arg.RegisteredAt,
	))
}

const getRegistrationByID = `-- name: GetRegistrationByID :one
SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1
`

func (q *Queries) GetRegistrationByID(ctx context.Context, id uuid.UUID) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, getRegistrationByID, id))
}

const getRegistrationByIDForUpdate = `-- name: GetRegistrationByIDForUpdate :one
SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetRegistrationByIDForUpdate(ctx context.Context, id uuid.UUID) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, getRegistrationByIDForUpdate, id))
}

const getRegistrationByUserAndContest = `-- name: GetRegistrationByUserAndContest :one
SELECT ` + registrationColumns + ` FROM registrations WHERE user_id = $1 AND contest_id = $2
`

func (q *Queries) GetRegistrationByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, getRegistrationByUserAndContest, userID, contestID))
}

const listRegistrations = `-- name: ListRegistrations :many
SELECT ` + registrationColumns + ` FROM registrations
WHERE ($1::uuid IS NULL OR user_id = $1)
  AND ($2::uuid IS NULL OR contest_id = $2)
  AND ($3::text IS NULL OR payment_status = $3)
ORDER BY registered_at DESC
LIMIT $4
`

func (q *Queries) ListRegistrations(ctx context.Context, arg ListRegistrationsParams) ([]Registration, error) {
	rows, err := q.db.Query(ctx, listRegistrations,
		arg.UserID,
		arg.ContestID,
		arg.PaymentStatus,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countRegistrationsByContests = `-- name: CountRegistrationsByContests :many
SELECT contest_id, COUNT(*) FROM registrations
WHERE contest_id = ANY($1::uuid[])
GROUP BY contest_id
`

func (q *Queries) CountRegistrationsByContests(ctx context.Context, contestIDs []uuid.UUID) ([]ContestRegistrationCount, error) {
	rows, err := q.db.Query(ctx, countRegistrationsByContests, uuidStrings(contestIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ContestRegistrationCount
	for rows.Next() {
		var c ContestRegistrationCount
		if err := rows.Scan(&c.ContestID, &c.Count); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const countRegistrationsByStatus = `-- name: CountRegistrationsByStatus :one
SELECT COUNT(*) FROM registrations WHERE payment_status = $1
`

func (q *Queries) CountRegistrationsByStatus(ctx context.Context, status PaymentStatus) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRegistrationsByStatus, status).Scan(&count)
	return count, err
}

const updateRegistrationScreenshot = `-- name: UpdateRegistrationScreenshot :one
UPDATE registrations SET payment_screenshot = $2
WHERE id = $1 AND payment_status = 'pending'
RETURNING ` + registrationColumns + `
`

func (q *Queries) UpdateRegistrationScreenshot(ctx context.Context, id uuid.UUID, screenshot string) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, updateRegistrationScreenshot, id, screenshot))
}

const setRegistrationStatus = `-- name: SetRegistrationStatus :one
UPDATE registrations SET payment_status = $2, approved_at = $3 WHERE id = $1
RETURNING ` + registrationColumns + `
`

func (q *Queries) SetRegistrationStatus(ctx context.Context, arg SetRegistrationStatusParams) (Registration, error) {
	return scanRegistration(q.db.QueryRow(ctx, setRegistrationStatus, arg.ID, arg.PaymentStatus, arg.ApprovedAt))
}

const sumApprovedRevenue = `-- name: SumApprovedRevenue :one
SELECT COALESCE(SUM(c.fee), 0)::double precision
FROM registrations r JOIN contests c ON c.id = r.contest_id
WHERE r.payment_status = 'approved'
`

func (q *Queries) SumApprovedRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := q.db.QueryRow(ctx, sumApprovedRevenue).Scan(&total)
	return total, err
}
