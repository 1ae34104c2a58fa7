package stats_service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

type StatsService struct {
	DB                   database.Store
	ContestServiceConfig *contest_service.ContestService
}

type StudentStats struct {
	ContestsJoined   int64   `json:"contestsJoined"`
	UpcomingContests int64   `json:"upcomingContests"`
	TotalWinnings    float64 `json:"totalWinnings"`
	BestRank         *int32  `json:"bestRank"`
}

type AdminStats struct {
	TotalStudents   int64   `json:"totalStudents"`
	TotalCreators   int64   `json:"totalCreators"`
	TotalContests   int64   `json:"totalContests"`
	ActiveContests  int64   `json:"activeContests"`
	PendingPayments int64   `json:"pendingPayments"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

func statsErr(what string, err error) error {
	err = fmt.Errorf("%w, cannot compute %s, %w", app_errors.ErrInternal, what, err)
	log.Error(err)
	return err
}

// StudentStats summarizes the caller's approved registrations and published
// results.
func (s *StatsService) StudentStats(ctx context.Context) (StudentStats, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return StudentStats{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return StudentStats{}, err
	}

	approved := database.PaymentStatusApproved
	regs, err := s.DB.ListRegistrations(ctx, database.ListRegistrationsParams{
		UserID:        &userID,
		PaymentStatus: &approved,
	})
	if err != nil {
		return StudentStats{}, statsErr("registrations", err)
	}

	now := s.ContestServiceConfig.Now()
	var stats StudentStats
	stats.ContestsJoined = int64(len(regs))
	for _, reg := range regs {
		contest, err := s.ContestServiceConfig.GetContestByID(ctx, reg.ContestID)
		if errors.Is(err, app_errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return StudentStats{}, err
		}
		if contest_service.ComputeStatus(contest, now) == database.ContestStatusUpcoming {
			stats.UpcomingContests++
		}
	}

	results, err := s.DB.ListResultsByUser(ctx, userID)
	if err != nil {
		return StudentStats{}, statsErr("results", err)
	}
	for _, res := range results {
		if res.PublishedAt == nil {
			continue
		}
		if res.Prize != nil {
			stats.TotalWinnings += *res.Prize
		}
		if res.Rank > 0 && (stats.BestRank == nil || res.Rank < *stats.BestRank) {
			rank := res.Rank
			stats.BestRank = &rank
		}
	}
	return stats, nil
}

func (s *StatsService) AdminStats(ctx context.Context) (AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)
	if stats.TotalStudents, err = s.DB.CountUsersByRole(ctx, database.RoleStudent); err != nil {
		return AdminStats{}, statsErr("student count", err)
	}
	if stats.TotalCreators, err = s.DB.CountUsersByRole(ctx, database.RoleCreator); err != nil {
		return AdminStats{}, statsErr("creator count", err)
	}
	if stats.TotalContests, err = s.DB.CountContests(ctx); err != nil {
		return AdminStats{}, statsErr("contest count", err)
	}
	if stats.ActiveContests, err = s.DB.CountLiveContests(ctx, s.ContestServiceConfig.Now()); err != nil {
		return AdminStats{}, statsErr("live contest count", err)
	}
	if stats.PendingPayments, err = s.DB.CountRegistrationsByStatus(ctx, database.PaymentStatusPending); err != nil {
		return AdminStats{}, statsErr("pending payments", err)
	}
	if stats.TotalRevenue, err = s.DB.SumApprovedRevenue(ctx); err != nil {
		return AdminStats{}, statsErr("revenue", err)
	}
	return stats, nil
}
