package decision

import (
	"errors"
	"fmt"
)

var (
	ErrStore              = errors.New("history store")
	ErrInvalidObservation = errors.New("invalid observation")
)

// StoreError wraps a History Store failure. Op is "read" or "append".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("history store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }
