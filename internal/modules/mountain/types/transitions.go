package types

import "fmt"

// TransitionTable maps the last notable label to the labels worth announcing
// when observed next.
type TransitionTable map[Label][]Label

// DefaultTransitions: leaving Night is always notable, entering it never is.
func DefaultTransitions() TransitionTable {
	return TransitionTable{
		Night:     {Hidden, Mystical, Beautiful},
		Hidden:    {Mystical, Beautiful},
		Mystical:  {Beautiful},
		Beautiful: {Hidden},
	}
}

// IsNotable reports whether moving from last to next should be announced.
func (t TransitionTable) IsNotable(last, next Label) bool {
	for _, l := range t[last] {
		if l == next {
			return true
		}
	}
	return false
}

// Validate checks that every label is a key and every target is a known label.
func (t TransitionTable) Validate() error {
	for _, l := range allLabels {
		if _, ok := t[l]; !ok {
			return fmt.Errorf("transition table: missing entry for %s", l)
		}
	}
	for from, targets := range t {
		if !from.Valid() {
			return fmt.Errorf("transition table: %w", &UnknownLabelError{Value: string(from)})
		}
		for _, to := range targets {
			if !to.Valid() {
				return fmt.Errorf("transition table %s: %w", from, &UnknownLabelError{Value: string(to)})
			}
		}
	}
	return nil
}
