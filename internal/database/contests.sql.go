package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contestColumns = `id, title, description, type, category, prize, prizes, fee, start_time, end_time,
    duration, max_participants, status, qr_code_url, commission_per_registration,
    negative_marking, negative_mark_value, total_marks, passing_marks, created_at`

func scanContest(row pgx.Row) (Contest, error) {
	var c Contest
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Type,
		&c.Category,
		&c.Prize,
		&c.Prizes,
		&c.Fee,
		&c.StartTime,
		&c.EndTime,
		&c.Duration,
		&c.MaxParticipants,
		&c.Status,
		&c.QrCodeUrl,
		&c.CommissionPerRegistration,
		&c.NegativeMarking,
		&c.NegativeMarkValue,
		&c.TotalMarks,
		&c.PassingMarks,
		&c.CreatedAt,
	)
	return c, err
}

func collectContests(rows pgx.Rows) ([]Contest, error) {
	defer rows.Close()
	var items []Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createContest = `-- name: CreateContest :one
INSERT INTO contests (
    title, description, type, category, prize, prizes, fee, start_time, end_time, duration,
    max_participants, qr_code_url, commission_per_registration, negative_marking,
    negative_mark_value, total_marks, passing_marks
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING ` + contestColumns + `
`

func (q *Queries) CreateContest(ctx context.Context, arg CreateContestParams) (Contest, error) {
	return scanContest(q.db.QueryRow(ctx, createContest, contestArgs(arg)...))
}

const getContestByID = `-- name: GetContestByID :one
SELECT ` + contestColumns + ` FROM contests WHERE id = $1
`

func (q *Queries) GetContestByID(ctx context.Context, id uuid.UUID) (Contest, error) {
	return scanContest(q.db.QueryRow(ctx, getContestByID, id))
}

const listContests = `-- name: ListContests :many
SELECT ` + contestColumns + ` FROM contests
ORDER BY start_time DESC
LIMIT $1
`

// ListContests returns contests newest first. A nil limit returns all rows.
func (q *Queries) ListContests(ctx context.Context, limit *int32) ([]Contest, error) {
	rows, err := q.db.Query(ctx, listContests, limit)
	if err != nil {
		return nil, err
	}
	return collectContests(rows)
}

const updateContest = `-- name: UpdateContest :one
UPDATE contests SET
    title = $2, description = $3, type = $4, category = $5, prize = $6, prizes = $7,
    fee = $8, start_time = $9, end_time = $10, duration = $11, max_participants = $12,
    qr_code_url = $13, commission_per_registration = $14, negative_marking = $15,
    negative_mark_value = $16, total_marks = $17, passing_marks = $18
WHERE id = $1
RETURNING ` + contestColumns + `
`

func (q *Queries) UpdateContest(ctx context.Context, arg UpdateContestParams) (Contest, error) {
	args := append([]interface{}{arg.ID}, contestArgs(arg.CreateContestParams)...)
	return scanContest(q.db.QueryRow(ctx, updateContest, args...))
}

const setContestStatus = `-- name: SetContestStatus :one
UPDATE contests SET status = $2 WHERE id = $1
RETURNING ` + contestColumns + `
`

func (q *Queries) SetContestStatus(ctx context.Context, id uuid.UUID, status ContestStatus) (Contest, error) {
	return scanContest(q.db.QueryRow(ctx, setContestStatus, id, status))
}

const deleteContest = `-- name: DeleteContest :execrows
DELETE FROM contests WHERE id = $1
`

func (q *Queries) DeleteContest(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteContest, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countContests = `-- name: CountContests :one
SELECT COUNT(*) FROM contests
`

func (q *Queries) CountContests(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countContests).Scan(&count)
	return count, err
}

const countLiveContests = `-- name: CountLiveContests :one
SELECT COUNT(*) FROM contests WHERE start_time <= $1 AND end_time >= $1
`

func (q *Queries) CountLiveContests(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countLiveContests, now).Scan(&count)
	return count, err
}

const lockContest = `-- name: LockContest :exec
SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))
`

// LockContest takes a transaction scoped advisory lock keyed on the contest.
// It must run inside ExecTx; outside a transaction the lock is released
// immediately.
func (q *Queries) LockContest(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, lockContest, id.String())
	return err
}

func contestArgs(arg CreateContestParams) []interface{} {
	prizes := arg.Prizes
	if prizes == nil {
		prizes = []PrizeTier{}
	}
	return []interface{}{
		arg.Title,
		arg.Description,
		arg.Type,
		arg.Category,
		arg.Prize,
		prizes,
		arg.Fee,
		arg.StartTime,
		arg.EndTime,
		arg.Duration,
		arg.MaxParticipants,
		arg.QrCodeUrl,
		arg.CommissionPerRegistration,
		arg.NegativeMarking,
		arg.NegativeMarkValue,
		arg.TotalMarks,
		arg.PassingMarks,
	}
}
