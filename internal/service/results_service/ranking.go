package results_service

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/database"
)

// Placement is the rank and prize one result receives on publication.
type Placement struct {
	ResultID uuid.UUID
	UserID   uuid.UUID
	Rank     int32
	Prize    *float64
	IsWinner bool
}

// RankResults orders results by score, highest first. Equal scores go to the
// faster time, and a result without a time sorts after every timed one.
// Remaining ties keep their input order.
func RankResults(results []database.Result) []database.Result {
	ranked := make([]database.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.TimeTakenSeconds == nil:
			return false
		case b.TimeTakenSeconds == nil:
			return true
		}
		return *a.TimeTakenSeconds < *b.TimeTakenSeconds
	})
	return ranked
}

// ResolvePrize applies prize precedence: a manual prize for the user, then
// the contest prize for the rank, then the prize stored on the result.
func ResolvePrize(
	rank int32,
	userID uuid.UUID,
	manual map[uuid.UUID]float64,
	contestPrizes map[int32]float64,
	previous *float64,
) *float64 {
	if prize, ok := manual[userID]; ok {
		return &prize
	}
	if prize, ok := contestPrizes[rank]; ok {
		return &prize
	}
	if previous != nil {
		prize := *previous
		return &prize
	}
	return nil
}

// ComputePlacements ranks results 1..n and resolves every prize.
func ComputePlacements(
	contest database.Contest,
	results []database.Result,
	manualPrizes []ManualPrize,
) []Placement {
	manual := make(map[uuid.UUID]float64, len(manualPrizes))
	for _, p := range manualPrizes {
		manual[p.UserID] = p.Prize
	}
	contestPrizes := make(map[int32]float64, len(contest.Prizes))
	for _, p := range contest.Prizes {
		contestPrizes[p.Rank] = p.Prize
	}

	ranked := RankResults(results)
	placements := make([]Placement, 0, len(ranked))
	for i, r := range ranked {
		rank := int32(i + 1)
		prize := ResolvePrize(rank, r.UserID, manual, contestPrizes, r.Prize)
		placements = append(placements, Placement{
			ResultID: r.ID,
			UserID:   r.UserID,
			Rank:     rank,
			Prize:    prize,
			IsWinner: prize != nil && *prize > 0,
		})
	}
	return placements
}
