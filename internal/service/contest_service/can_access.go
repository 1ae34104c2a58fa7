package contest_service

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

// CanAccessQuestions reports why a student may not see or submit the
// questions of a contest, or nil when they may. reg is nil when the student
// never registered.
func CanAccessQuestions(
	reg *database.Registration,
	contest database.Contest,
	now time.Time,
) error {
	if reg == nil || reg.PaymentStatus != database.PaymentStatusApproved {
		return fmt.Errorf("%w for contest %s", app_errors.ErrNotRegistered, contest.Title)
	}

	switch ComputeStatus(contest, now) {
	case database.ContestStatusUpcoming:
		log.Warnf(
			"user %s tried to access contest %s before start",
			reg.UserID,
			contest.ID,
		)
		return fmt.Errorf("%w, starts at %s", app_errors.ErrContestNotStarted, contest.StartTime.Format(time.RFC3339))
	case database.ContestStatusCompleted:
		log.Warnf(
			"user %s tried to access completed contest %s",
			reg.UserID,
			contest.ID,
		)
		return fmt.Errorf("%w, ended at %s", app_errors.ErrContestEnded, contest.EndTime.Format(time.RFC3339))
	}
	return nil
}

// CanSubmit applies the access gate. Timer driven submissions are also
// accepted up to grace after the contest ends.
func CanSubmit(
	reg *database.Registration,
	contest database.Contest,
	now time.Time,
	autoSubmitted bool,
	grace time.Duration,
) error {
	err := CanAccessQuestions(reg, contest, now)
	if err == nil || !autoSubmitted {
		return err
	}
	if reg != nil &&
		reg.PaymentStatus == database.PaymentStatusApproved &&
		now.After(contest.EndTime) &&
		!now.After(contest.EndTime.Add(grace)) {
		return nil
	}
	return err
}
