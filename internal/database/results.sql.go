package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const resultColumns = `id, contest_id, user_id, score, rank, total_questions, correct_answers, wrong_answers,
    unanswered, prize, is_winner, published_at, time_taken_seconds, answers, tab_switch_count, created_at`

func scanResult(row pgx.Row) (Result, error) {
	var r Result
	err := row.Scan(
		&r.ID,
		&r.ContestID,
		&r.UserID,
		&r.Score,
		&r.Rank,
		&r.TotalQuestions,
		&r.CorrectAnswers,
		&r.WrongAnswers,
		&r.Unanswered,
		&r.Prize,
		&r.IsWinner,
		&r.PublishedAt,
		&r.TimeTakenSeconds,
		&r.Answers,
		&r.TabSwitchCount,
		&r.CreatedAt,
	)
	return r, err
}

func collectResults(rows pgx.Rows) ([]Result, error) {
	defer rows.Close()
	var items []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const createResult = `-- name: CreateResult :one
INSERT INTO results (
    contest_id, user_id, score, total_questions, correct_answers, wrong_answers,
    unanswered, time_taken_seconds, answers, tab_switch_count, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + resultColumns + `
`

func (q *Queries) CreateResult(ctx context.Context, arg CreateResultParams) (Result, error) {
	answers := arg.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return scanResult(q.db.QueryRow(ctx, createResult,
		arg.ContestID,
		arg.UserID,
		arg.Score,
		arg.TotalQuestions,
		arg.CorrectAnswers,
		arg.WrongAnswers,
		arg.Unanswered,
		arg.TimeTakenSeconds,
		answers,
		arg.TabSwitchCount,
		arg.CreatedAt,
	))
}

const getResultByUserAndContest = `-- name: GetResultByUserAndContest :one
SELECT ` + resultColumns + ` FROM results WHERE user_id = $1 AND contest_id = $2
`

func (q *Queries) GetResultByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (Result, error) {
	return scanResult(q.db.QueryRow(ctx, getResultByUserAndContest, userID, contestID))
}

const listResultsByContest = `-- name: ListResultsByContest :many
SELECT ` + resultColumns + ` FROM results WHERE contest_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListResultsByContest(ctx context.Context, contestID uuid.UUID) ([]Result, error) {
	rows, err := q.db.Query(ctx, listResultsByContest, contestID)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

const listResultsByUser = `-- name: ListResultsByUser :many
SELECT ` + resultColumns + ` FROM results WHERE user_id = $1 ORDER BY created_at DESC
`

func (q *Queries) ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]Result, error) {
	rows, err := q.db.Query(ctx, listResultsByUser, userID)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

const updateResultPublication = `-- name: UpdateResultPublication :one
UPDATE results SET rank = $2, prize = $3, is_winner = $4, published_at = $5
WHERE id = $1
RETURNING ` + resultColumns + `
`

func (q *Queries) UpdateResultPublication(ctx context.Context, arg UpdateResultPublicationParams) (Result, error) {
	return scanResult(q.db.QueryRow(ctx, updateResultPublication,
		arg.ID,
		arg.Rank,
		arg.Prize,
		arg.IsWinner,
		arg.PublishedAt,
	))
}
