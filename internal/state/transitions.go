package state

// Action is an onboarding operation that reads or advances an account's step.
type Action string

const (
	ActionSetPreferences  Action = "set_preferences"
	ActionListPending     Action = "list_pending"
	ActionSubmitDecisions Action = "submit_decisions"
	ActionComplete        Action = "complete"
)

type transition struct {
	from []Step
	// to is the step the action leaves the account at; -1 keeps the current one.
	to Step
}

// validTransitions lists, per action, the steps it may start from.
var validTransitions = map[Action]transition{
	ActionSetPreferences: {
		from: []Step{StepCreated, StepPreferences},
		to:   StepPreferences,
	},
	ActionListPending: {
		from: []Step{StepPreferences, StepReviewed, StepComplete},
		to:   -1,
	},
	ActionSubmitDecisions: {
		from: []Step{StepPreferences, StepReviewed, StepComplete},
		to:   StepReviewed,
	},
	ActionComplete: {
		from: []Step{StepReviewed, StepComplete},
		to:   StepComplete,
	},
}

// IsTransitionAllowed reports whether action may run on an account at step from.
func IsTransitionAllowed(from Step, action Action) bool {
	t, ok := validTransitions[action]
	if !ok {
		return false
	}

	for _, step := range t.from {
		if step == from {
			return true
		}
	}

	return false
}

// Next returns the step an account ends at after action, or ErrInvalidTransition.
// Steps never decrease.
func Next(from Step, action Action) (Step, error) {
	if !IsTransitionAllowed(from, action) {
		return from, ErrInvalidTransition
	}

	to := validTransitions[action].to
	if to < 0 || to < from {
		return from, nil
	}

	return to, nil
}
