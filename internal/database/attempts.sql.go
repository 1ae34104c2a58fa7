package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attemptColumns = `id, contest_id, user_id, answers, started_at, submitted_at, auto_submitted, tab_switch_count, score, rank`

func scanAttempt(row pgx.Row) (Attempt, error) {
	var a Attempt
	err := row.Scan(
		&a.ID,
		&a.ContestID,
		&a.UserID,
		&a.Answers,
		&a.StartedAt,
		&a.SubmittedAt,
		&a.AutoSubmitted,
		&a.TabSwitchCount,
		&a.Score,
		&a.Rank,
	)
	return a, err
}

const createAttempt = `-- name: CreateAttempt :one
INSERT INTO attempts (contest_id, user_id, started_at)
VALUES ($1, $2, $3)
RETURNING ` + attemptColumns + `
`

func (q *Queries) CreateAttempt(ctx context.Context, arg CreateAttemptParams) (Attempt, error) {
	return scanAttempt(q.db.QueryRow(ctx, createAttempt, arg.ContestID, arg.UserID, arg.StartedAt))
}

const getAttemptByUserAndContest = `-- name: GetAttemptByUserAndContest :one
SELECT ` + attemptColumns + ` FROM attempts WHERE user_id = $1 AND contest_id = $2
`

func (q *Queries) GetAttemptByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Attempt, error) {
	return scanAttempt(q.db.QueryRow(ctx, getAttemptByUserAndContest, userID, contestID))
}

const submitAttempt = `-- name: SubmitAttempt :one
UPDATE attempts SET
    answers = $2, submitted_at = $3, auto_submitted = $4, tab_switch_count = $5, score = $6
WHERE id = $1 AND submitted_at IS NULL
RETURNING ` + attemptColumns + `
`

// SubmitAttempt finalizes an open attempt. An attempt that was already
// submitted matches no row and yields pgx.ErrNoRows.
func (q *Queries) SubmitAttempt(ctx context.Context, arg SubmitAttemptParams) (Attempt, error) {
	answers := arg.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return scanAttempt(q.db.QueryRow(ctx, submitAttempt,
		arg.ID,
		answers,
		arg.SubmittedAt,
		arg.AutoSubmitted,
		arg.TabSwitchCount,
		arg.Score,
	))
}
