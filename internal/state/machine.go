package state

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTransition indicates that an action is not allowed at the current step.
	ErrInvalidTransition = errors.New("invalid onboarding step transition")
	// ErrStateLocked indicates that a concurrent operation already holds the account lock.
	ErrStateLocked = errors.New("account is locked, try again later")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe step transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// RecordTransition reports a committed step change. Unchanged steps are ignored.
func RecordTransition(from, to Step) {
	if from == to {
		return
	}

	transitionRecorder(from.String(), to.String())
}

// Unlock releases a lock obtained from a Locker.
type Unlock func()

// Locker serializes operations on a single account.
type Locker interface {
	Lock(ctx context.Context, accountID int64) (Unlock, error)
}

// RecordCreated reports the creation of a new account at StepCreated.
func RecordCreated() {
	transitionRecorder("none", StepCreated.String())
}
