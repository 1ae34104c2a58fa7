package submission_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

// Submit grades the caller's answers for a contest.
func (s *SubmissionService) Submit(
	ctx context.Context,
	contestID uuid.UUID,
	req SubmissionRequest,
) (SubmissionResponse, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return SubmissionResponse{}, err
	}
	return s.SubmitAs(ctx, userID, contestID, req)
}

// SubmitAs grades and stores the one Result of userID for a contest. A
// repeated submit returns the stored Result instead of grading again.
func (s *SubmissionService) SubmitAs(
	ctx context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
	req SubmissionRequest,
) (SubmissionResponse, error) {
	if err := service.ValidateInput(req); err != nil {
		return SubmissionResponse{}, err
	}

	contest, err := s.ContestServiceConfig.GetContestByID(ctx, contestID)
	if err != nil {
		return SubmissionResponse{}, err
	}
	reg, err := s.ContestServiceConfig.GetRegistration(ctx, userID, contestID)
	if err != nil {
		return SubmissionResponse{}, err
	}

	questions, err := s.QuestionServiceConfig.ListQuestions(ctx, contestID)
	if err != nil {
		return SubmissionResponse{}, err
	}

	// an approved student who already submitted gets the stored result back,
	// even after the window closed
	if reg != nil && reg.PaymentStatus == database.PaymentStatusApproved {
		existing, err := s.findResult(ctx, userID, contestID)
		if err != nil {
			return SubmissionResponse{}, err
		}
		if existing != nil {
			return s.alreadySubmitted(userID, contest, questions, *existing), nil
		}
	}

	now := s.ContestServiceConfig.Now()
	if err := contest_service.CanSubmit(reg, contest, now, req.AutoSubmitted, s.grace()); err != nil {
		s.Metrics.IncSubmission(outcomeRejected)
		return SubmissionResponse{}, err
	}

	answers := req.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	grade := GradeAnswers(contest, questions, answers)

	attempt, err := s.findAttempt(ctx, userID, contestID)
	if err != nil {
		return SubmissionResponse{}, err
	}
	var timeTaken *int64
	if attempt != nil {
		seconds := int64(now.Sub(attempt.StartedAt) / time.Second)
		if seconds < 0 {
			seconds = 0
		}
		timeTaken = &seconds
	}

	var result database.Result
	err = s.DB.ExecTx(ctx, func(q database.Querier) error {
		var err error
		result, err = q.CreateResult(ctx, database.CreateResultParams{
			ContestID:        contestID,
			UserID:           userID,
			Score:            grade.Score,
			TotalQuestions:   grade.TotalQuestions,
			CorrectAnswers:   grade.CorrectAnswers,
			WrongAnswers:     grade.WrongAnswers,
			Unanswered:       grade.Unanswered,
			TimeTakenSeconds: timeTaken,
			Answers:          answers,
			TabSwitchCount:   req.TabSwitchCount,
			CreatedAt:        now,
		})
		if err != nil {
			return err
		}

		if attempt == nil || attempt.SubmittedAt != nil {
			return nil
		}
		_, err = q.SubmitAttempt(ctx, database.SubmitAttemptParams{
			ID:             attempt.ID,
			Answers:        answers,
			SubmittedAt:    now,
			AutoSubmitted:  req.AutoSubmitted,
			TabSwitchCount: req.TabSwitchCount,
			Score:          grade.Score,
		})
		return err
	})
	if err != nil {
		if app_errors.IsUniqueViolation(err, database.ConstraintResultUserContest) {
			log.Warnf("user %s submitted contest %s concurrently", userID, contestID)
			existing, ferr := s.findResult(ctx, userID, contestID)
			if ferr != nil {
				return SubmissionResponse{}, ferr
			}
			if existing != nil {
				return s.alreadySubmitted(userID, contest, questions, *existing), nil
			}
		}
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot store result of user %v for contest %v", userID, contestID),
		)
		return SubmissionResponse{}, err
	}

	log.WithFields(log.Fields{
		"user":    userID,
		"contest": contestID,
		"score":   grade.Score,
		"auto":    req.AutoSubmitted,
	}).Info("submission graded")
	s.Metrics.IncSubmission(outcomeGraded)
	if req.AutoSubmitted {
		s.Metrics.IncAutoSubmission()
	}
	s.publishGraded(ctx, result, req.AutoSubmitted)

	return SubmissionResponse{
		Result:          ToResult(result),
		QuestionResults: grade.QuestionResults,
		Message:         msgSubmitted,
	}, nil
}

func (s *SubmissionService) grace() time.Duration {
	if s.SubmitGrace > 0 {
		return s.SubmitGrace
	}
	return DefaultSubmitGrace
}

func (s *SubmissionService) alreadySubmitted(
	userID uuid.UUID,
	contest database.Contest,
	questions []database.Question,
	existing database.Result,
) SubmissionResponse {
	log.Warnf("user %s resubmitted contest %s", userID, contest.ID)
	s.Metrics.IncSubmission(outcomeDuplicate)
	return SubmissionResponse{
		Result:          ToResult(existing),
		QuestionResults: GradeAnswers(contest, questions, existing.Answers).QuestionResults,
		Message:         msgAlreadySubmitted,
	}
}

// findResult returns nil when the user has not submitted.
func (s *SubmissionService) findResult(
	ctx context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
) (*database.Result, error) {
	result, err := s.DB.GetResultByUserAndContest(ctx, userID, contestID)
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch result of user %v for contest %v", userID, contestID),
		)
		if errors.Is(err, app_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (s *SubmissionService) publishGraded(ctx context.Context, r database.Result, auto bool) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.Event{
		Type:       events.TypeSubmissionGraded,
		Key:        r.ContestID.String(),
		OccurredAt: r.CreatedAt,
		Payload: events.SubmissionGraded{
			ResultID:       r.ID,
			ContestID:      r.ContestID,
			UserID:         r.UserID,
			Score:          r.Score,
			CorrectAnswers: r.CorrectAnswers,
			AutoSubmitted:  auto,
			TabSwitchCount: r.TabSwitchCount,
		},
	})
	if err != nil {
		log.WithField("result", r.ID).Warnf("cannot publish graded event, %v", err)
	}
}
