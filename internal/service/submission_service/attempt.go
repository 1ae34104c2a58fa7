package submission_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

func userFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

// StartAttempt opens the caller's attempt, or returns the one already open.
func (s *SubmissionService) StartAttempt(ctx context.Context, contestID uuid.UUID) (Attempt, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return Attempt{}, err
	}
	attempt, _, err := s.StartAttemptAs(ctx, userID, contestID)
	return attempt, err
}

// StartAttemptAs opens the attempt of userID behind the question access gate.
// The contest is returned for callers that keep a session running.
func (s *SubmissionService) StartAttemptAs(
	ctx context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
) (Attempt, database.Contest, error) {
	contest, err := s.ContestServiceConfig.GetContestByID(ctx, contestID)
	if err != nil {
		return Attempt{}, database.Contest{}, err
	}
	reg, err := s.ContestServiceConfig.GetRegistration(ctx, userID, contestID)
	if err != nil {
		return Attempt{}, database.Contest{}, err
	}
	now := s.ContestServiceConfig.Now()
	if err := contest_service.CanAccessQuestions(reg, contest, now); err != nil {
		return Attempt{}, database.Contest{}, err
	}

	attempt, err := s.findAttempt(ctx, userID, contestID)
	if err != nil {
		return Attempt{}, database.Contest{}, err
	}
	if attempt != nil {
		return ToAttempt(*attempt), contest, nil
	}

	created, err := s.DB.CreateAttempt(ctx, database.CreateAttemptParams{
		ContestID: contestID,
		UserID:    userID,
		StartedAt: now,
	})
	if err != nil {
		if app_errors.IsUniqueViolation(err, database.ConstraintAttemptUserContest) {
			// started concurrently, hand back the winner
			attempt, err := s.findAttempt(ctx, userID, contestID)
			if err != nil {
				return Attempt{}, database.Contest{}, err
			}
			if attempt != nil {
				return ToAttempt(*attempt), contest, nil
			}
		}
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot start attempt of user %v for contest %v", userID, contestID),
		)
		return Attempt{}, database.Contest{}, err
	}

	log.Infof("user %s started contest %s", userID, contestID)
	return ToAttempt(created), contest, nil
}

// findAttempt returns nil when the user has no attempt.
func (s *SubmissionService) findAttempt(
	ctx context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
) (*database.Attempt, error) {
	attempt, err := s.DB.GetAttemptByUserAndContest(ctx, userID, contestID)
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch attempt of user %v for contest %v", userID, contestID),
		)
		if errors.Is(err, app_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}
