package contest_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

// ListContests returns every contest with its computed phase and number of
// registrations. A non-nil status keeps only contests in that phase.
func (c *ContestService) ListContests(
	ctx context.Context,
	status *database.ContestStatus,
) ([]ContestSummary, error) {
	dbContests, err := c.DB.ListContests(ctx, nil)
	if err != nil {
		err = fmt.Errorf("%w, cannot list contests, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(dbContests))
	for _, contest := range dbContests {
		ids = append(ids, contest.ID)
	}
	counts, err := c.participantCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := c.Now()
	summaries := make([]ContestSummary, 0, len(dbContests))
	for _, dbContest := range dbContests {
		contest := ToContest(dbContest, now)
		if status != nil && contest.Status != *status {
			continue
		}
		summaries = append(summaries, ContestSummary{
			Contest:          contest,
			ParticipantCount: counts[contest.ID],
		})
	}
	return summaries, nil
}

func (c *ContestService) ListAdminContests(ctx context.Context) ([]Contest, error) {
	dbContests, err := c.DB.ListContests(ctx, nil)
	if err != nil {
		err = fmt.Errorf("%w, cannot list contests, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}
	now := c.Now()
	contests := make([]Contest, 0, len(dbContests))
	for _, dbContest := range dbContests {
		contests = append(contests, ToContest(dbContest, now))
	}
	return contests, nil
}

func (c *ContestService) GetContest(ctx context.Context, id uuid.UUID) (Contest, error) {
	dbContest, err := c.GetContestByID(ctx, id)
	if err != nil {
		return Contest{}, err
	}
	return ToContest(dbContest, c.Now()), nil
}

// GetContestDetails is the public contest view. The caller's registration is
// attached when the request carries a token.
func (c *ContestService) GetContestDetails(ctx context.Context, id uuid.UUID) (ContestDetails, error) {
	dbContest, err := c.GetContestByID(ctx, id)
	if err != nil {
		return ContestDetails{}, err
	}

	count, err := c.DB.CountQuestionsByContest(ctx, id)
	if err != nil {
		err = fmt.Errorf("%w, cannot count questions of contest %v, %w", app_errors.ErrInternal, id, err)
		log.Error(err)
		return ContestDetails{}, err
	}

	details := ContestDetails{
		Contest:        ToContest(dbContest, c.Now()),
		QuestionsCount: count,
	}

	claims, ok := service.OptionalClaimsFromContext(ctx)
	if !ok {
		return details, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return details, nil
	}
	reg, err := c.GetRegistration(ctx, userID, id)
	if err != nil {
		return ContestDetails{}, err
	}
	if reg != nil {
		view := ToRegistration(*reg)
		details.Registration = &view
	}
	return details, nil
}

// GetRegistration returns nil without error when the user never registered.
func (c *ContestService) GetRegistration(
	ctx context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
) (*database.Registration, error) {
	reg, err := c.DB.GetRegistrationByUserAndContest(ctx, userID, contestID)
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch registration of user %v for contest %v", userID, contestID),
		)
		if errors.Is(err, app_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (c *ContestService) RegistrationsCount(ctx context.Context, id uuid.UUID) (int64, error) {
	counts, err := c.participantCounts(ctx, []uuid.UUID{id})
	if err != nil {
		return 0, err
	}
	return counts[id], nil
}

func (c *ContestService) participantCounts(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	rows, err := c.DB.CountRegistrationsByContests(ctx, ids)
	if err != nil {
		err = fmt.Errorf("%w, cannot count registrations, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}
	for _, row := range rows {
		counts[row.ContestID] = row.Count
	}
	return counts, nil
}
