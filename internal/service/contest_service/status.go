package contest_service

import (
	"time"

	"github.com/tcp_snm/deepshift/internal/database"
)

// ComputeStatus resolves the phase of a contest from its window. The stored
// status is only consulted when the window is unusable.
func ComputeStatus(c database.Contest, now time.Time) database.ContestStatus {
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		if c.Status != "" {
			return c.Status
		}
		return database.ContestStatusUpcoming
	}

	switch {
	case now.Before(c.StartTime):
		return database.ContestStatusUpcoming
	case now.After(c.EndTime):
		return database.ContestStatusCompleted
	default:
		return database.ContestStatusLive
	}
}
