package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, role, college, phone, upi_id, referral_code, referred_by, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.College,
		&u.Phone,
		&u.UpiID,
		&u.ReferralCode,
		&u.ReferredBy,
		&u.CreatedAt,
	)
	return u, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUsersByIDs = `-- name: GetUsersByIDs :many
SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])
`

func (q *Queries) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, getUsersByIDs, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const getCreatorByReferralCode = `-- name: GetCreatorByReferralCode :one
SELECT ` + userColumns + ` FROM users WHERE referral_code = $1 AND role = 'creator'
`

func (q *Queries) GetCreatorByReferralCode(ctx context.Context, referralCode string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getCreatorByReferralCode, referralCode))
}

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (id, email, name, role, college, phone, referral_code, referred_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    email = EXCLUDED.email,
    name = EXCLUDED.name,
    role = EXCLUDED.role,
    college = COALESCE(EXCLUDED.college, users.college),
    phone = COALESCE(EXCLUDED.phone, users.phone),
    referral_code = COALESCE(users.referral_code, EXCLUDED.referral_code),
    referred_by = COALESCE(users.referred_by, EXCLUDED.referred_by)
RETURNING ` + userColumns + `
`

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, upsertUser,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.Role,
		arg.College,
		arg.Phone,
		arg.ReferralCode,
		arg.ReferredBy,
	))
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users SET
    name = COALESCE($2, name),
    college = COALESCE($3, college),
    phone = COALESCE($4, phone),
    upi_id = COALESCE($5, upi_id)
WHERE id = $1
RETURNING ` + userColumns + `
`

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUserProfile,
		arg.ID,
		arg.Name,
		arg.College,
		arg.Phone,
		arg.UpiID,
	))
}

const countUsersByRole = `-- name: CountUsersByRole :one
SELECT COUNT(*) FROM users WHERE role = $1
`

func (q *Queries) CountUsersByRole(ctx context.Context, role UserRole) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countUsersByRole, role).Scan(&count)
	return count, err
}

const countReferredUsers = `-- name: CountReferredUsers :one
SELECT COUNT(*) FROM users WHERE referred_by = $1
`

func (q *Queries) CountReferredUsers(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countReferredUsers, creatorID).Scan(&count)
	return count, err
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
