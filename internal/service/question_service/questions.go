package question_service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

// ListQuestions returns the ordered question set of a contest, answers
// included. Grading and every question view read through here.
func (q *QuestionService) ListQuestions(
	ctx context.Context,
	contestID uuid.UUID,
) ([]database.Question, error) {
	if q.Cache != nil {
		if questions, ok := q.Cache.Get(contestID); ok {
			return questions, nil
		}
	}

	questions, err := q.DB.ListQuestionsByContest(ctx, contestID)
	if err != nil {
		err = fmt.Errorf(
			"%w, cannot fetch questions of contest %v, %w",
			app_errors.ErrInternal,
			contestID,
			err,
		)
		log.Error(err)
		return nil, err
	}

	if q.Cache != nil {
		q.Cache.Add(contestID, questions)
	}
	return questions, nil
}

func (q *QuestionService) ListAdminQuestions(ctx context.Context, contestID uuid.UUID) ([]Question, error) {
	if _, err := q.ContestServiceConfig.GetContestByID(ctx, contestID); err != nil {
		return nil, err
	}
	dbQuestions, err := q.ListQuestions(ctx, contestID)
	if err != nil {
		return nil, err
	}
	questions := make([]Question, 0, len(dbQuestions))
	for _, dbQuestion := range dbQuestions {
		questions = append(questions, ToQuestion(dbQuestion))
	}
	return questions, nil
}

// GetStudentQuestions returns the answer-stripped questions of a live contest
// to an approved registrant.
func (q *QuestionService) GetStudentQuestions(
	ctx context.Context,
	contestID uuid.UUID,
) (StudentQuestionSet, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return StudentQuestionSet{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return StudentQuestionSet{}, err
	}

	contest, err := q.ContestServiceConfig.GetContestByID(ctx, contestID)
	if err != nil {
		return StudentQuestionSet{}, err
	}
	reg, err := q.ContestServiceConfig.GetRegistration(ctx, userID, contestID)
	if err != nil {
		return StudentQuestionSet{}, err
	}

	now := q.ContestServiceConfig.Now()
	if err := contest_service.CanAccessQuestions(reg, contest, now); err != nil {
		return StudentQuestionSet{}, err
	}

	dbQuestions, err := q.ListQuestions(ctx, contestID)
	if err != nil {
		return StudentQuestionSet{}, err
	}
	questions := make([]StudentQuestion, 0, len(dbQuestions))
	for _, dbQuestion := range dbQuestions {
		questions = append(questions, ToStudentQuestion(dbQuestion))
	}

	return StudentQuestionSet{
		Contest:      contest_service.ToContest(contest, now),
		Questions:    questions,
		Registration: contest_service.ToRegistration(*reg),
	}, nil
}

func (q *QuestionService) CreateQuestion(
	ctx context.Context,
	contestID uuid.UUID,
	req QuestionRequest,
) (Question, error) {
	if err := validateQuestion(req); err != nil {
		return Question{}, err
	}

	dbQuestion, err := q.DB.CreateQuestion(ctx, database.CreateQuestionParams{
		ContestID:     contestID,
		Type:          req.Type,
		QuestionText:  req.QuestionText,
		Options:       optionsFor(req),
		CorrectAnswer: req.CorrectAnswer,
		Marks:         req.Marks,
		Explanation:   req.Explanation,
		Order:         req.Order,
	})
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot create question for contest %v", contestID),
		)
		return Question{}, err
	}
	q.invalidate(contestID)
	log.Infof("question %s added to contest %s", dbQuestion.ID, contestID)
	return ToQuestion(dbQuestion), nil
}

func (q *QuestionService) UpdateQuestion(
	ctx context.Context,
	id uuid.UUID,
	patch QuestionPatch,
) (Question, error) {
	existing, err := q.DB.GetQuestionByID(ctx, id)
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch question %v", id))
		if errors.Is(err, app_errors.ErrNotFound) {
			err = fmt.Errorf("%w, question not found", app_errors.ErrNotFound)
		}
		return Question{}, err
	}

	req := mergePatch(existing, patch)
	if err := validateQuestion(req); err != nil {
		return Question{}, err
	}

	dbQuestion, err := q.DB.UpdateQuestion(ctx, database.UpdateQuestionParams{
		ID:            id,
		Type:          req.Type,
		QuestionText:  req.QuestionText,
		Options:       optionsFor(req),
		CorrectAnswer: req.CorrectAnswer,
		Marks:         req.Marks,
		Explanation:   req.Explanation,
		Order:         req.Order,
	})
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update question %v", id))
		return Question{}, err
	}
	q.invalidate(existing.ContestID)
	log.Infof("question %s updated", id)
	return ToQuestion(dbQuestion), nil
}

func (q *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	existing, err := q.DB.GetQuestionByID(ctx, id)
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch question %v", id))
		if errors.Is(err, app_errors.ErrNotFound) {
			err = fmt.Errorf("%w, question not found", app_errors.ErrNotFound)
		}
		return err
	}
	if _, err := q.DB.DeleteQuestion(ctx, id); err != nil {
		return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete question %v", id))
	}
	q.invalidate(existing.ContestID)
	log.Infof("question %s deleted from contest %s", id, existing.ContestID)
	return nil
}

// InvalidateContest drops the cached question set of a contest.
func (q *QuestionService) InvalidateContest(contestID uuid.UUID) {
	q.invalidate(contestID)
}

func (q *QuestionService) invalidate(contestID uuid.UUID) {
	if q.Cache != nil {
		q.Cache.Invalidate(contestID)
	}
}

func validateQuestion(req QuestionRequest) error {
	if err := service.ValidateInput(req); err != nil {
		return err
	}

	var answer string
	if req.CorrectAnswer != nil {
		answer = strings.TrimSpace(*req.CorrectAnswer)
	}

	switch req.Type {
	case database.QuestionTypeMCQ:
		if len(req.Options) < 2 {
			err := fmt.Errorf("%w, mcq questions need at least 2 options", app_errors.ErrInvalidInput)
			log.Warn(err)
			return err
		}
		if req.CorrectAnswer == nil || !slices.Contains(req.Options, *req.CorrectAnswer) {
			err := fmt.Errorf("%w, correctAnswer must be one of the options", app_errors.ErrInvalidInput)
			log.Warn(err)
			return err
		}
	case database.QuestionTypeInteger:
		if _, err := strconv.Atoi(answer); err != nil {
			err := fmt.Errorf("%w, correctAnswer must be an integer", app_errors.ErrInvalidInput)
			log.Warn(err)
			return err
		}
	}
	return nil
}

// options are only kept for mcq questions
func optionsFor(req QuestionRequest) []string {
	if req.Type != database.QuestionTypeMCQ {
		return []string{}
	}
	return req.Options
}

func mergePatch(existing database.Question, p QuestionPatch) QuestionRequest {
	req := QuestionRequest{
		Type:          existing.Type,
		QuestionText:  existing.QuestionText,
		Options:       existing.Options,
		CorrectAnswer: existing.CorrectAnswer,
		Marks:         existing.Marks,
		Explanation:   existing.Explanation,
		Order:         existing.Order,
	}
	if p.Type != nil {
		req.Type = *p.Type
	}
	if p.QuestionText != nil {
		req.QuestionText = *p.QuestionText
	}
	if p.Options != nil {
		req.Options = *p.Options
	}
	if p.CorrectAnswer != nil {
		req.CorrectAnswer = p.CorrectAnswer
	}
	if p.Marks != nil {
		req.Marks = *p.Marks
	}
	if p.Explanation != nil {
		req.Explanation = p.Explanation
	}
	if p.Order != nil {
		req.Order = *p.Order
	}
	return req
}
