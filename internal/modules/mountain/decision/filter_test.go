package decision

import (
	"testing"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

func TestFaultFilter_Reconcile(t *testing.T) {
	f := NewFaultFilter(dayOracle, types.Hidden)
	day := at(2, 12, 0)
	night := at(2, 23, 0)

	tests := []struct {
		name string
		raw  types.Label
		at   string
		want types.Label
	}{
		{"night in daylight becomes baseline", types.Night, "day", types.Hidden},
		{"night at night passes", types.Night, "night", types.Night},
		{"hidden at night becomes night", types.Hidden, "night", types.Night},
		{"mystical at night becomes night", types.Mystical, "night", types.Night},
		{"beautiful at night becomes night", types.Beautiful, "night", types.Night},
		{"hidden in daylight passes", types.Hidden, "day", types.Hidden},
		{"beautiful in daylight passes", types.Beautiful, "day", types.Beautiful},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := day
			if tt.at == "night" {
				ts = night
			}
			if got := f.Reconcile(tt.raw, ts); got != tt.want {
				t.Errorf("Reconcile(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFaultFilter_NightNeverSurvivesDaylight(t *testing.T) {
	f := NewFaultFilter(dayOracle, types.Hidden)
	for h := 6; h < 20; h++ {
		if got := f.Reconcile(types.Night, at(3, h, 30)); got == types.Night {
			t.Errorf("Reconcile(Night, %02d:30) = Night", h)
		}
	}
}
