// Package state holds the onboarding step machine and per-account locking.
package state

import "strconv"

// Step marks how far an account has progressed through onboarding.
type Step int

const (
	// StepCreated is the initial step of a freshly created account.
	StepCreated Step = 0
	// StepPreferences indicates that interests and filters have been captured.
	StepPreferences Step = 1
	// StepReviewed indicates that follow decisions were submitted.
	StepReviewed Step = 2
	// StepComplete is the terminal step.
	StepComplete Step = 3
)

// Valid reports whether s is one of the defined steps.
func (s Step) Valid() bool {
	return s >= StepCreated && s <= StepComplete
}

func (s Step) String() string {
	switch s {
	case StepCreated:
		return "created"
	case StepPreferences:
		return "preferences"
	case StepReviewed:
		return "reviewed"
	case StepComplete:
		return "complete"
	default:
		return "step_" + strconv.Itoa(int(s))
	}
}
