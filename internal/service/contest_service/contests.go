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

func (c *ContestService) CreateContest(ctx context.Context, req ContestRequest) (Contest, error) {
	if err := service.ValidateInput(req); err != nil {
		return Contest{}, err
	}

	dbContest, err := c.DB.CreateContest(ctx, createParams(req))
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, "cannot create contest")
		return Contest{}, err
	}
	log.Infof("contest %s (%s) created", dbContest.ID, dbContest.Title)
	return ToContest(dbContest, c.Now()), nil
}

// GetContestByID returns the stored contest.
func (c *ContestService) GetContestByID(ctx context.Context, id uuid.UUID) (database.Contest, error) {
	contest, err := c.DB.GetContestByID(ctx, id)
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch contest %v", id))
		if errors.Is(err, app_errors.ErrNotFound) {
			err = fmt.Errorf("%w, contest not found", app_errors.ErrNotFound)
		}
		return database.Contest{}, err
	}
	return contest, nil
}

func (c *ContestService) UpdateContest(ctx context.Context, id uuid.UUID, patch ContestPatch) (Contest, error) {
	existing, err := c.GetContestByID(ctx, id)
	if err != nil {
		return Contest{}, err
	}

	merged := mergePatch(requestFromContest(existing), patch)
	if err := service.ValidateInput(merged); err != nil {
		return Contest{}, err
	}

	dbContest, err := c.DB.UpdateContest(ctx, database.UpdateContestParams{
		ID:                  id,
		CreateContestParams: createParams(merged),
	})
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update contest %v", id))
		return Contest{}, err
	}
	log.Infof("contest %s updated", id)
	return ToContest(dbContest, c.Now()), nil
}

func (c *ContestService) DeleteContest(ctx context.Context, id uuid.UUID) error {
	n, err := c.DB.DeleteContest(ctx, id)
	if err != nil {
		return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete contest %v", id))
	}
	if n == 0 {
		return fmt.Errorf("%w, contest not found", app_errors.ErrNotFound)
	}
	log.Infof("contest %s deleted", id)
	return nil
}

func createParams(req ContestRequest) database.CreateContestParams {
	prizes := make([]database.PrizeTier, 0, len(req.Prizes))
	for _, p := range req.Prizes {
		prizes = append(prizes, database.PrizeTier{Rank: p.Rank, Prize: p.Prize, Title: p.Title})
	}
	return database.CreateContestParams{
		Title:                     req.Title,
		Description:               req.Description,
		Type:                      req.Type,
		Category:                  req.Category,
		Prize:                     req.Prize,
		Prizes:                    prizes,
		Fee:                       req.Fee,
		StartTime:                 req.StartTime,
		EndTime:                   req.EndTime,
		Duration:                  req.Duration,
		MaxParticipants:           req.MaxParticipants,
		QrCodeUrl:                 req.QrCodeUrl,
		CommissionPerRegistration: req.CommissionPerRegistration,
		NegativeMarking:           req.NegativeMarking,
		NegativeMarkValue:         req.NegativeMarkValue,
		TotalMarks:                req.TotalMarks,
		PassingMarks:              req.PassingMarks,
	}
}

func requestFromContest(c database.Contest) ContestRequest {
	prizes := make([]PrizeTier, 0, len(c.Prizes))
	for _, p := range c.Prizes {
		prizes = append(prizes, PrizeTier{Rank: p.Rank, Prize: p.Prize, Title: p.Title})
	}
	return ContestRequest{
		Title:                     c.Title,
		Description:               c.Description,
		Type:                      c.Type,
		Category:                  c.Category,
		Prize:                     c.Prize,
		Prizes:                    prizes,
		Fee:                       c.Fee,
		StartTime:                 c.StartTime,
		EndTime:                   c.EndTime,
		Duration:                  c.Duration,
		MaxParticipants:           c.MaxParticipants,
		QrCodeUrl:                 c.QrCodeUrl,
		CommissionPerRegistration: c.CommissionPerRegistration,
		NegativeMarking:           c.NegativeMarking,
		NegativeMarkValue:         c.NegativeMarkValue,
		TotalMarks:                c.TotalMarks,
		PassingMarks:              c.PassingMarks,
	}
}

func mergePatch(req ContestRequest, p ContestPatch) ContestRequest {
	if p.Title != nil {
		req.Title = *p.Title
	}
	if p.Description != nil {
		req.Description = *p.Description
	}
	if p.Type != nil {
		req.Type = *p.Type
	}
	if p.Category != nil {
		req.Category = *p.Category
	}
	if p.Prize != nil {
		req.Prize = *p.Prize
	}
	if p.Prizes != nil {
		req.Prizes = *p.Prizes
	}
	if p.Fee != nil {
		req.Fee = *p.Fee
	}
	if p.StartTime != nil {
		req.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		req.EndTime = *p.EndTime
	}
	if p.Duration != nil {
		req.Duration = *p.Duration
	}
	if p.MaxParticipants != nil {
		req.MaxParticipants = p.MaxParticipants
	}
	if p.QrCodeUrl != nil {
		req.QrCodeUrl = p.QrCodeUrl
	}
	if p.CommissionPerRegistration != nil {
		req.CommissionPerRegistration = *p.CommissionPerRegistration
	}
	if p.NegativeMarking != nil {
		req.NegativeMarking = *p.NegativeMarking
	}
	if p.NegativeMarkValue != nil {
		req.NegativeMarkValue = *p.NegativeMarkValue
	}
	if p.TotalMarks != nil {
		req.TotalMarks = *p.TotalMarks
	}
	if p.PassingMarks != nil {
		req.PassingMarks = p.PassingMarks
	}
	return req
}
