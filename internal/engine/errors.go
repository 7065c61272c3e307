package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is the base error all quota rejections unwrap to.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrDecisionInFlight is returned when a gesture arrives while a prior
	// decision is still committing. The gesture is ignored, not queued.
	ErrDecisionInFlight = errors.New("a decision is already in flight")

	// ErrExhausted is returned when the filtered sequence has no current
	// candidate left to decide on.
	ErrExhausted = errors.New("candidate sequence exhausted")

	// ErrNothingToRewind is returned when the undo stack is empty.
	ErrNothingToRewind = errors.New("nothing to rewind")

	// ErrGestureNotRecognized is returned when a displacement crosses no
	// decision threshold; the candidate stays presented.
	ErrGestureNotRecognized = errors.New("gesture crossed no decision threshold")
)

// QuotaExceededError carries which action ran out of quota.
type QuotaExceededError struct {
	Action Action
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily %s quota exceeded", e.Action)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// BackendError wraps a failure talking to the backend during a commit.
// The decision is fully aborted; the user may retry the same gesture.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
