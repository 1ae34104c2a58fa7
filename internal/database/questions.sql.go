package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, contest_id, type, question_text, options, correct_answer, marks, explanation, order_index`

func scanQuestion(row pgx.Row) (Question, error) {
	var qn Question
	err := row.Scan(
		&qn.ID,
		&qn.ContestID,
		&qn.Type,
		&qn.QuestionText,
		&qn.Options,
		&qn.CorrectAnswer,
		&qn.Marks,
		&qn.Explanation,
		&qn.Order,
	)
	return qn, err
}

const createQuestion = `-- name: CreateQuestion :one
INSERT INTO questions (contest_id, type, question_text, options, correct_answer, marks, explanation, order_index)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + questionColumns + `
`

func (q *Queries) CreateQuestion(ctx context.Context, arg CreateQuestionParams) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, createQuestion,
		arg.ContestID,
		arg.Type,
		arg.QuestionText,
		arg.Options,
		arg.CorrectAnswer,
		arg.Marks,
		arg.Explanation,
		arg.Order,
	))
}

const getQuestionByID = `-- name: GetQuestionByID :one
SELECT ` + questionColumns + ` FROM questions WHERE id = $1
`

func (q *Queries) GetQuestionByID(ctx context.Context, id uuid.UUID) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, getQuestionByID, id))
}

const listQuestionsByContest = `-- name: ListQuestionsByContest :many
SELECT ` + questionColumns + ` FROM questions WHERE contest_id = $1 ORDER BY order_index
`

func (q *Queries) ListQuestionsByContest(ctx context.Context, contestID uuid.UUID) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByContest, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Question
	for rows.Next() {
		qn, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, qn)
	}
	return items, rows.Err()
}

const countQuestionsByContest = `-- name: CountQuestionsByContest :one
SELECT COUNT(*) FROM questions WHERE contest_id = $1
`

func (q *Queries) CountQuestionsByContest(ctx context.Context, contestID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countQuestionsByContest, contestID).Scan(&count)
	return count, err
}

const updateQuestion = `-- name: UpdateQuestion :one
UPDATE questions SET
    type = $2, question_text = $3, options = $4, correct_answer = $5,
    marks = $6, explanation = $7, order_index = $8
WHERE id = $1
RETURNING ` + questionColumns + `
`

func (q *Queries) UpdateQuestion(ctx context.Context, arg UpdateQuestionParams) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, updateQuestion,
		arg.ID,
		arg.Type,
		arg.QuestionText,
		arg.Options,
		arg.CorrectAnswer,
		arg.Marks,
		arg.Explanation,
		arg.Order,
	))
}

const deleteQuestion = `-- name: DeleteQuestion :execrows
DELETE FROM questions WHERE id = $1
`

func (q *Queries) DeleteQuestion(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteQuestion, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
