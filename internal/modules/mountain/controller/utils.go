package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

const (
	defaultHistoryLimit = 50
	historyLimit        = 500
	maxObservationBody  = 1 << 16
)

func parseHistoryQuery(r *http.Request) (limit int, err error) {
	limit = defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return 0, errors.New("'limit' must be > 0")
		}
		if n > historyLimit {
			return 0, fmt.Errorf("'limit' must be <= %d", historyLimit)
		}
		limit = n
	}
	return limit, nil
}

// parseFormat accepts "json" (default) or "csv".
func parseFormat(r *http.Request) (string, error) {
	switch f := r.URL.Query().Get("format"); f {
	case "", "json":
		return "json", nil
	case "csv":
		return "csv", nil
	default:
		return "", fmt.Errorf("invalid 'format' %q (allowed: json, csv)", f)
	}
}

func decodeObservation(r *http.Request) (types.Observation, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxObservationBody))
	dec.DisallowUnknownFields()
	var obs types.Observation
	if err := dec.Decode(&obs); err != nil {
		return types.Observation{}, fmt.Errorf("invalid observation body: %w", err)
	}
	if obs.Label == "" {
		return types.Observation{}, errors.New("'label' is required")
	}
	if obs.Timestamp.IsZero() {
		return types.Observation{}, errors.New("'timestamp' is required (RFC3339)")
	}
	return obs, nil
}
