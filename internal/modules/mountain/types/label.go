package types

import (
	"errors"
	"fmt"
	"sort"
)

// Label is one of the mutually exclusive visibility classifications of the
// mountain. The string value is the canonical encoding stored in history.
type Label string

const (
	Night     Label = "Night"
	Hidden    Label = "Hidden"
	Mystical  Label = "Mystical"
	Beautiful Label = "Beautiful"
)

// Baseline is the daytime label meaning nothing notable is visible.
const Baseline = Hidden

var ErrUnknownLabel = errors.New("unknown label")

// UnknownLabelError reports a string that does not decode to a Label.
type UnknownLabelError struct {
	Value string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %q", e.Value)
}

func (e *UnknownLabelError) Is(target error) bool {
	return target == ErrUnknownLabel
}

var allLabels = []Label{Night, Hidden, Mystical, Beautiful}

// Labels returns every label in display order (sorted by encoding).
func Labels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// ParseLabel decodes the canonical encoding. Matching is exact.
func ParseLabel(s string) (Label, error) {
	for _, l := range allLabels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", &UnknownLabelError{Value: s}
}

func (l Label) String() string {
	return string(l)
}

func (l Label) Valid() bool {
	_, err := ParseLabel(string(l))
	return err == nil
}

// Compare orders labels for display and sorting only.
func (l Label) Compare(other Label) int {
	switch {
	case l < other:
		return -1
	case l > other:
		return 1
	default:
		return 0
	}
}

// MarshalText encodes the zero Label as "" so partially filled values still
// serialize; any other unknown value is an error.
func (l Label) MarshalText() ([]byte, error) {
	if l != "" && !l.Valid() {
		return nil, &UnknownLabelError{Value: string(l)}
	}
	return []byte(l), nil
}

func (l *Label) UnmarshalText(b []byte) error {
	parsed, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
