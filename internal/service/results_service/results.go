package results_service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

func byRank(results []database.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank < results[j].Rank
		}
		return results[i].Score > results[j].Score
	})
}

// PublicResults is the leaderboard of a contest. Unpublished results are
// never part of it.
func (r *ResultsService) PublicResults(ctx context.Context, contestID uuid.UUID) ([]PublicResult, error) {
	if _, err := r.ContestServiceConfig.GetContestByID(ctx, contestID); err != nil {
		return nil, err
	}

	resultsCache := r.Cache
	if resultsCache == nil {
		resultsCache = cache.NoopResultsCache{}
	}
	data, err := resultsCache.GetOrLoad(ctx, contestID, func(ctx context.Context) ([]byte, error) {
		results, err := r.loadPublicResults(ctx, contestID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(results)
	})
	if err != nil {
		return nil, err
	}

	var results []PublicResult
	if err := json.Unmarshal(data, &results); err != nil {
		err = fmt.Errorf("%w, cannot decode cached results of contest %v, %w", app_errors.ErrInternal, contestID, err)
		log.Error(err)
		return nil, err
	}
	return results, nil
}

func (r *ResultsService) loadPublicResults(ctx context.Context, contestID uuid.UUID) ([]PublicResult, error) {
	dbResults, err := r.listResults(ctx, contestID)
	if err != nil {
		return nil, err
	}

	published := make([]database.Result, 0, len(dbResults))
	for _, res := range dbResults {
		if res.PublishedAt != nil {
			published = append(published, res)
		}
	}
	byRank(published)

	users, err := r.UserServiceConfig.GetUsersMap(ctx, userIDs(published))
	if err != nil {
		return nil, err
	}

	out := make([]PublicResult, 0, len(published))
	for _, res := range published {
		var user *database.User
		if u, ok := users[res.UserID]; ok {
			user = &u
		}
		out = append(out, toPublicResult(res, user))
	}
	return out, nil
}

// StudentResults returns the caller's published results.
func (r *ResultsService) StudentResults(ctx context.Context) ([]StudentResult, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	dbResults, err := r.DB.ListResultsByUser(ctx, userID)
	if err != nil {
		err = fmt.Errorf("%w, cannot list results of user %v, %w", app_errors.ErrInternal, userID, err)
		log.Error(err)
		return nil, err
	}

	contests := map[uuid.UUID]database.Contest{}
	out := make([]StudentResult, 0, len(dbResults))
	for _, res := range dbResults {
		if res.PublishedAt == nil {
			continue
		}
		contest, ok := contests[res.ContestID]
		if !ok {
			contest, err = r.ContestServiceConfig.GetContestByID(ctx, res.ContestID)
			if err != nil {
				return nil, err
			}
			contests[res.ContestID] = contest
		}
		out = append(out, StudentResult{
			Result:          submission_service.ToResult(res),
			ContestTitle:    contest.Title,
			ContestCategory: contest.Category,
		})
	}
	return out, nil
}

// AdminResults returns every result of a contest, published or not.
func (r *ResultsService) AdminResults(ctx context.Context, contestID uuid.UUID) ([]AdminResult, error) {
	dbResults, err := r.listResults(ctx, contestID)
	if err != nil {
		return nil, err
	}
	byRank(dbResults)

	users, err := r.UserServiceConfig.GetUsersMap(ctx, userIDs(dbResults))
	if err != nil {
		return nil, err
	}

	out := make([]AdminResult, 0, len(dbResults))
	for _, res := range dbResults {
		item := AdminResult{Result: submission_service.ToResult(res)}
		if user, ok := users[res.UserID]; ok {
			item.UserName = user.Name
			item.UserEmail = user.Email
			item.UserCollege = user.College
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ResultsService) listResults(ctx context.Context, contestID uuid.UUID) ([]database.Result, error) {
	results, err := r.DB.ListResultsByContest(ctx, contestID)
	if err != nil {
		err = fmt.Errorf("%w, cannot list results of contest %v, %w", app_errors.ErrInternal, contestID, err)
		log.Error(err)
		return nil, err
	}
	return results, nil
}

func userIDs(results []database.Result) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.UserID)
	}
	return ids
}
