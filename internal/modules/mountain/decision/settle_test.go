package decision

import (
	"testing"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

func TestIsSettled(t *testing.T) {
	b := func(l types.Label) types.HistoryRecord { return rec(at(2, 12, 0), l, false) }

	tests := []struct {
		name    string
		history []types.HistoryRecord
		window  int
		want    bool
	}{
		{"empty history", nil, 2, false},
		{"shorter than window", []types.HistoryRecord{b(types.Beautiful)}, 2, false},
		{"window matches", []types.HistoryRecord{b(types.Beautiful), b(types.Beautiful)}, 2, true},
		{"only trailing window counts", []types.HistoryRecord{b(types.Hidden), b(types.Beautiful), b(types.Beautiful)}, 2, true},
		{"newest differs", []types.HistoryRecord{b(types.Beautiful), b(types.Hidden)}, 2, false},
		{"oldest in window differs", []types.HistoryRecord{b(types.Hidden), b(types.Beautiful)}, 2, false},
		{"window of three", []types.HistoryRecord{b(types.Beautiful), b(types.Beautiful), b(types.Beautiful)}, 3, true},
		{"window of three short", []types.HistoryRecord{b(types.Beautiful), b(types.Beautiful)}, 3, false},
		{"zero window", []types.HistoryRecord{b(types.Beautiful)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSettled(types.Beautiful, tt.history, tt.window); got != tt.want {
				t.Errorf("IsSettled = %v, want %v", got, tt.want)
			}
		})
	}
}
