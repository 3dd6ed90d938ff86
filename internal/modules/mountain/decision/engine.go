// Package decision reconciles one observation against the classification
// history and decides whether it is a notable, announceable transition.
package decision

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// HistoryStore is the append-only classification log. ReadLastN returns at most
// n records in append order (oldest first).
type HistoryStore interface {
	AppendRecord(rec types.HistoryRecord) error
	ReadLastN(n int) ([]types.HistoryRecord, error)
}

// Outcome explains a verdict.
type Outcome string

const (
	OutcomeAnnounce   Outcome = "announce"
	OutcomeFaulty     Outcome = "faulty"
	OutcomeUnsettled  Outcome = "unsettled"
	OutcomeNotNotable Outcome = "not_notable"
)

// Decision is the result of one invocation.
type Decision struct {
	RawLabel       types.Label         `json:"rawLabel"`
	CorrectedLabel types.Label         `json:"correctedLabel"`
	LastNotable    types.Label         `json:"lastNotable,omitempty"`
	Settled        bool                `json:"settled"`
	Announce       bool                `json:"announce"`
	Outcome        Outcome             `json:"outcome"`
	AppendedRecord types.HistoryRecord `json:"appendedRecord"`
}

type Options struct {
	// Window is the number of trailing records a label must repeat across.
	Window int
	// Lookback bounds the resolver walk; roughly two days of polling.
	Lookback    int
	Transitions types.TransitionTable
	Baseline    types.Label
	// Zone is the site zone used for the stale cutoff date.
	Zone *time.Location
}

func DefaultOptions() Options {
	return Options{
		Window:      2,
		Lookback:    100,
		Transitions: types.DefaultTransitions(),
		Baseline:    types.Baseline,
		Zone:        time.UTC,
	}
}

// Engine holds no state between invocations; everything is recovered from the store.
type Engine struct {
	store  HistoryStore
	filter *FaultFilter
	opts   Options
	logger *slog.Logger
}

func NewEngine(store HistoryStore, oracle NightOracle, opts Options, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("history store required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("night oracle required")
	}
	if opts.Window < 1 {
		return nil, fmt.Errorf("settle window must be at least 1, got %d", opts.Window)
	}
	if opts.Lookback < opts.Window {
		return nil, fmt.Errorf("lookback %d must cover the settle window %d", opts.Lookback, opts.Window)
	}
	if opts.Transitions == nil {
		opts.Transitions = types.DefaultTransitions()
	}
	if err := opts.Transitions.Validate(); err != nil {
		return nil, err
	}
	if opts.Baseline == "" {
		opts.Baseline = types.Baseline
	}
	if !opts.Baseline.Valid() || opts.Baseline == types.Night {
		return nil, fmt.Errorf("baseline must be a daytime label, got %q", opts.Baseline)
	}
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		filter: NewFaultFilter(oracle, opts.Baseline),
		opts:   opts,
		logger: logger,
	}, nil
}

// Decide reconciles obs, decides the verdict and appends exactly one record.
// An observation older than the newest stored record is rejected with
// ErrInvalidObservation before anything is appended. A returned StoreError on
// append means the decision was not persisted and must not be acted on.
func (e *Engine) Decide(obs types.Observation) (Decision, error) {
	if err := validate(obs); err != nil {
		return Decision{}, err
	}

	history, err := e.store.ReadLastN(e.opts.Lookback)
	if err != nil {
		return Decision{}, &StoreError{Op: "read", Err: err}
	}
	// The window and the resolver read by append order, so time must not go backwards.
	if n := len(history); n > 0 && obs.Timestamp.Before(history[n-1].Timestamp) {
		return Decision{}, fmt.Errorf("%w: timestamp %s is older than the newest record %s",
			ErrInvalidObservation,
			obs.Timestamp.In(e.opts.Zone).Format(time.RFC3339),
			history[n-1].Timestamp.In(e.opts.Zone).Format(time.RFC3339),
		)
	}

	corrected := e.filter.Reconcile(obs.Label, obs.Timestamp)
	d := Decision{RawLabel: obs.Label, CorrectedLabel: corrected}

	if corrected != obs.Label {
		e.logger.Warn("faulty classification detected",
			"raw", obs.Label,
			"corrected", corrected,
			"timestamp", obs.Timestamp.In(e.opts.Zone).Format(time.RFC3339),
			"confidence", obs.Confidence,
		)
		d.Outcome = OutcomeFaulty
		return e.append(d, obs.Timestamp)
	}

	d.LastNotable = ResolveLastNotable(history, e.opts.Lookback, StaleCutoff(obs.Timestamp, e.opts.Zone))
	d.Settled = IsSettled(corrected, history, e.opts.Window)
	notable := e.opts.Transitions.IsNotable(d.LastNotable, corrected)

	switch {
	case notable && d.Settled:
		d.Announce = true
		d.Outcome = OutcomeAnnounce
	case notable:
		d.Outcome = OutcomeUnsettled
		e.logger.Info("classification not settled",
			"label", corrected,
			"last_notable", d.LastNotable,
			"window", e.opts.Window,
			"recent", recentLabels(history, e.opts.Window),
		)
	default:
		d.Outcome = OutcomeNotNotable
	}

	e.logger.Debug("decision",
		"label", corrected,
		"last_notable", d.LastNotable,
		"settled", d.Settled,
		"notable", notable,
		"announce", d.Announce,
	)
	return e.append(d, obs.Timestamp)
}

func (e *Engine) append(d Decision, ts time.Time) (Decision, error) {
	d.AppendedRecord = types.HistoryRecord{
		Timestamp: ts,
		Label:     d.CorrectedLabel,
		WasPosted: d.Announce,
	}
	if err := e.store.AppendRecord(d.AppendedRecord); err != nil {
		return d, &StoreError{Op: "append", Err: err}
	}
	return d, nil
}

func validate(obs types.Observation) error {
	if !obs.Label.Valid() {
		return &types.UnknownLabelError{Value: string(obs.Label)}
	}
	if obs.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidObservation)
	}
	if math.IsNaN(obs.Confidence) || obs.Confidence < 0 || obs.Confidence > 100 {
		return fmt.Errorf("%w: confidence out of range: %f (must be 0-100)", ErrInvalidObservation, obs.Confidence)
	}
	return nil
}

func recentLabels(history []types.HistoryRecord, n int) []string {
	if len(history) < n {
		n = len(history)
	}
	out := make([]string, 0, n)
	for _, rec := range history[len(history)-n:] {
		out = append(out, string(rec.Label))
	}
	return out
}
