package decision

import (
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// NightOracle reports whether a moment falls in the site's night window.
// daylight.Location satisfies it.
type NightOracle interface {
	IsNight(ts time.Time) bool
}

// FaultFilter corrects raw classifier labels that contradict the daylight model.
type FaultFilter struct {
	oracle   NightOracle
	baseline types.Label
}

func NewFaultFilter(oracle NightOracle, baseline types.Label) *FaultFilter {
	return &FaultFilter{oracle: oracle, baseline: baseline}
}

// Reconcile returns the corrected label. A Night reading in daylight becomes the
// baseline label; any other reading at night becomes Night.
func (f *FaultFilter) Reconcile(raw types.Label, ts time.Time) types.Label {
	night := f.oracle.IsNight(ts)
	switch {
	case raw == types.Night && !night:
		return f.baseline
	case raw != types.Night && night:
		return types.Night
	default:
		return raw
	}
}
