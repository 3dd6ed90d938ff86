package decision

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

var pacific = mustZone("America/Los_Angeles")

func mustZone(name string) *time.Location {
	z, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return z
}

// fixedOracle treats [dawnHour, duskHour) local time as day.
type fixedOracle struct {
	zone     *time.Location
	dawnHour int
	duskHour int
}

func (o fixedOracle) IsNight(ts time.Time) bool {
	h := ts.In(o.zone).Hour()
	return h < o.dawnHour || h >= o.duskHour
}

var dayOracle = fixedOracle{zone: pacific, dawnHour: 6, duskHour: 20}

type memStore struct {
	records   []types.HistoryRecord
	readErr   error
	appendErr error
	reads     int
}

func (m *memStore) AppendRecord(rec types.HistoryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) ReadLastN(n int) ([]types.HistoryRecord, error) {
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	if n <= 0 {
		return nil, nil
	}
	start := len(m.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.HistoryRecord, len(m.records)-start)
	copy(out, m.records[start:])
	return out, nil
}

var errDisk = errors.New("disk on fire")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(day, hour, minute int) time.Time {
	return time.Date(2021, 7, day, hour, minute, 0, 0, pacific)
}

func rec(ts time.Time, l types.Label, posted bool) types.HistoryRecord {
	return types.HistoryRecord{Timestamp: ts, Label: l, WasPosted: posted}
}
