package decision

import (
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// StaleCutoff returns the calendar date, in zone, of the day before ts.
// Records from that date end the resolver walk with Night.
func StaleCutoff(ts time.Time, zone *time.Location) time.Time {
	if zone == nil {
		zone = time.UTC
	}
	y, m, d := ts.In(zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, zone).AddDate(0, 0, -1)
}

// ResolveLastNotable walks at most maxLookback records from newest to oldest
// (history is oldest-first) and returns the label of the most recent posted or
// Night record. Reaching a record dated on the cutoff day, or exhausting the
// walk, yields Night.
func ResolveLastNotable(history []types.HistoryRecord, maxLookback int, cutoff time.Time) types.Label {
	zone := cutoff.Location()
	cy, cm, cd := cutoff.Date()

	stop := len(history) - maxLookback
	if stop < 0 {
		stop = 0
	}
	for i := len(history) - 1; i >= stop; i-- {
		rec := history[i]
		if rec.WasPosted || rec.Label == types.Night {
			return rec.Label
		}
		if y, m, d := rec.Timestamp.In(zone).Date(); y == cy && m == cm && d == cd {
			return types.Night
		}
	}
	return types.Night
}
