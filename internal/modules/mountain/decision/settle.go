package decision

import "github.com/tlanclos/isthemountainout/internal/modules/mountain/types"

// IsSettled reports whether the last window records (history is oldest-first)
// all carry candidate. Fewer than window records is never settled.
func IsSettled(candidate types.Label, history []types.HistoryRecord, window int) bool {
	if window <= 0 || len(history) < window {
		return false
	}
	for _, rec := range history[len(history)-window:] {
		if rec.Label != candidate {
			return false
		}
	}
	return true
}
