package results_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/email"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

// PublishResults ranks every result of a contest, assigns prizes, makes the
// results visible and marks the contest completed. Publishing again
// recomputes from the stored results. Publications of one contest are
// serialized by a transaction scoped lock.
func (r *ResultsService) PublishResults(
	ctx context.Context,
	contestID uuid.UUID,
	req PublishRequest,
) (PublishResponse, error) {
	if err := service.ValidateInput(req); err != nil {
		return PublishResponse{}, err
	}

	began := time.Now()
	now := r.ContestServiceConfig.Now()

	var (
		contest    database.Contest
		placements []Placement
	)
	err := r.DB.ExecTx(ctx, func(q database.Querier) error {
		if err := q.LockContest(ctx, contestID); err != nil {
			err = fmt.Errorf("%w, cannot lock contest %v, %w", app_errors.ErrInternal, contestID, err)
			log.Error(err)
			return err
		}

		var err error
		contest, err = q.GetContestByID(ctx, contestID)
		if err != nil {
			err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch contest %v", contestID))
			return err
		}

		results, err := q.ListResultsByContest(ctx, contestID)
		if err != nil {
			err = fmt.Errorf("%w, cannot list results of contest %v, %w", app_errors.ErrInternal, contestID, err)
			log.Error(err)
			return err
		}

		placements = ComputePlacements(contest, results, req.Prizes)
		for _, p := range placements {
			_, err := q.UpdateResultPublication(ctx, database.UpdateResultPublicationParams{
				ID:          p.ResultID,
				Rank:        p.Rank,
				Prize:       p.Prize,
				IsWinner:    p.IsWinner,
				PublishedAt: now,
			})
			if err != nil {
				return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot publish result %v", p.ResultID))
			}
		}

		contest, err = q.SetContestStatus(ctx, contestID, database.ContestStatusCompleted)
		if err != nil {
			return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot complete contest %v", contestID))
		}
		return nil
	})
	if err != nil {
		return PublishResponse{}, err
	}

	log.WithFields(log.Fields{
		"contest": contestID,
		"results": len(placements),
	}).Info("results published")
	r.Metrics.ObservePublish(time.Since(began).Seconds())

	if r.Cache != nil {
		if err := r.Cache.Invalidate(ctx, contestID); err != nil {
			log.WithField("contest", contestID).Warnf("cannot invalidate cached results, %v", err)
		}
	}

	results, err := r.AdminResults(ctx, contestID)
	if err != nil {
		return PublishResponse{}, err
	}
	r.afterPublish(ctx, contest, placements, results)

	return PublishResponse{
		Success: true,
		Contest: contest_service.ToContest(contest, now),
		Results: results,
	}, nil
}

func (r *ResultsService) afterPublish(
	ctx context.Context,
	contest database.Contest,
	placements []Placement,
	results []AdminResult,
) {
	if r.Events != nil {
		winners := make([]uuid.UUID, 0)
		for _, p := range placements {
			if p.IsWinner {
				winners = append(winners, p.UserID)
			}
		}
		err := r.Events.Publish(ctx, events.Event{
			Type:       events.TypeResultsPublished,
			Key:        contest.ID.String(),
			OccurredAt: r.ContestServiceConfig.Now(),
			Payload: events.ResultsPublished{
				ContestID:   contest.ID,
				ResultCount: len(placements),
				Winners:     winners,
			},
		})
		if err != nil {
			log.WithField("contest", contest.ID).Warnf("cannot publish results event, %v", err)
		}
	}

	if r.Mailer == nil {
		return
	}
	to := make([]string, 0, len(results))
	for _, res := range results {
		if res.UserEmail != "" {
			to = append(to, res.UserEmail)
		}
	}
	if len(to) == 0 {
		return
	}
	if err := r.Mailer.Send(ctx, email.ResultsPublishedMail(to, contest.Title)); err != nil {
		log.WithField("contest", contest.ID).Warnf("cannot queue results mail, %v", err)
	}
}
