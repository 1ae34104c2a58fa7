package submission_service

import (
	"math"
	"strings"

	"github.com/tcp_snm/deepshift/internal/database"
)

// QuestionResult is the outcome of one question. Marks is the delta applied
// to the score: positive when correct, negative under negative marking.
type QuestionResult struct {
	Correct bool    `json:"correct"`
	Marks   float64 `json:"marks"`
}

type Grade struct {
	Score           float64
	RawScore        float64
	TotalQuestions  int32
	CorrectAnswers  int32
	WrongAnswers    int32
	Unanswered      int32
	QuestionResults map[string]QuestionResult
}

// GradeAnswers scores answers against the contest's questions. It is pure:
// identical inputs always give identical grades. Answers for ids outside
// questions are ignored.
func GradeAnswers(
	contest database.Contest,
	questions []database.Question,
	answers map[string]string,
) Grade {
	grade := Grade{
		TotalQuestions:  int32(len(questions)),
		QuestionResults: make(map[string]QuestionResult, len(questions)),
	}

	var answered int32
	for _, q := range questions {
		id := q.ID.String()
		answer, ok := answers[id]
		if ok && strings.TrimSpace(answer) != "" {
			answered++
		} else {
			ok = false
		}

		switch {
		case ok && isCorrect(q, answer):
			grade.CorrectAnswers++
			grade.RawScore += q.Marks
			grade.QuestionResults[id] = QuestionResult{Correct: true, Marks: q.Marks}
		case ok && contest.NegativeMarking:
			penalty := q.Marks * contest.NegativeMarkValue
			grade.RawScore -= penalty
			grade.QuestionResults[id] = QuestionResult{Correct: false, Marks: -penalty}
		default:
			grade.QuestionResults[id] = QuestionResult{Correct: false, Marks: 0}
		}
	}

	grade.Unanswered = max(0, grade.TotalQuestions-answered)
	grade.WrongAnswers = max(0, answered-grade.CorrectAnswers)
	grade.Score = math.Max(0, grade.RawScore)
	return grade
}

// isCorrect compares one answer by question type. A question without a
// correct answer never awards credit.
func isCorrect(q database.Question, answer string) bool {
	if q.CorrectAnswer == nil {
		return false
	}
	correct := *q.CorrectAnswer

	switch q.Type {
	case database.QuestionTypeInteger:
		got, ok := leadingInt(answer)
		if !ok {
			return false
		}
		want, ok := leadingInt(correct)
		if !ok {
			return false
		}
		return got == want
	case database.QuestionTypeFillBlank, database.QuestionTypeShortAnswer:
		return normalizeText(answer) == normalizeText(correct)
	default:
		// mcq and coding compare verbatim
		return answer == correct
	}
}

// leadingInt reads an optional sign and the run of decimal digits at the
// start of s, ignoring whatever follows: "42.0", "42abc" and " +42" all read
// as 42. The result is the canonical digit string so arbitrarily long
// answers compare without overflow. ok is false when no digit leads.
func leadingInt(s string) (string, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	digits := strings.TrimLeft(s[:end], "0")
	if digits == "" {
		return "0", true
	}
	if neg {
		return "-" + digits, true
	}
	return digits, true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
