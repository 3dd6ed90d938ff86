package types

import "time"

// Observation is one classifier result for a single polling cycle.
type Observation struct {
	Timestamp  time.Time `json:"timestamp"`
	Label      Label     `json:"label"`
	Confidence float64   `json:"confidence"`
}

// HistoryRecord is one durable row of the classification history.
// WasPosted marks a record whose cycle triggered an announcement.
type HistoryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Label     Label     `json:"label"`
	WasPosted bool      `json:"wasPosted"`
}

// PostedFlag renders WasPosted the way the portable three-column export expects.
func (r HistoryRecord) PostedFlag() string {
	if r.WasPosted {
		return "TRUE"
	}
	return "FALSE"
}

// Row returns the portable three-column shape: ISO-8601 timestamp, label, posted flag.
func (r HistoryRecord) Row() []string {
	return []string{r.Timestamp.Format(time.RFC3339), string(r.Label), r.PostedFlag()}
}
