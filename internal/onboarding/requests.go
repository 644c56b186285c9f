package onboarding

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

// Methods accepted by Advance.
const (
	MethodCreate = "create"
	MethodRead   = "read"
)

// NewAccount is the step 0 payload.
type NewAccount struct {
	Username        string                 `json:"username" validate:"required,min=2"`
	Credential      string                 `json:"credential" validate:"required,min=6"`
	Platform        domain.Platform        `json:"platform" validate:"required,oneof=twitter instagram facebook linkedin tiktok youtube"`
	Interests       []string               `json:"interests" validate:"omitempty,dive,required"`
	SentimentFilter domain.SentimentFilter `json:"sentiment_filter" validate:"omitempty,oneof=positive negative neutral all"`
	NoiseBlocker    *bool                  `json:"noise_blocker_enabled"`
}

// Preferences is the step 1 payload. Nil optional fields keep the stored value.
type Preferences struct {
	Interests       []string               `json:"interests" validate:"required,min=1,dive,required"`
	SentimentFilter domain.SentimentFilter `json:"sentiment_filter" validate:"omitempty,oneof=positive negative neutral all"`
	NoiseBlocker    *bool                  `json:"noise_blocker_enabled"`
}

// Decision is one follow/skip choice for a recommendation.
// ID and Status are checked per entry by the DecisionTracker, not here.
type Decision struct {
	ID     int64               `json:"id"`
	Status domain.FollowStatus `json:"status"`
}

// DecisionsRequest is the step 2 write payload.
type DecisionsRequest struct {
	AccountID int64      `json:"account_id" validate:"gt=0"`
	Decisions []Decision `json:"decisions" validate:"dive"`
}

// AdvanceRequest is the transport-agnostic form of steps 0, 1, 2 (read) and 3.
type AdvanceRequest struct {
	Step        int          `json:"step"`
	Method      string       `json:"method"`
	AccountID   int64        `json:"account_id"`
	Account     *NewAccount  `json:"account,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// StepResult is what every onboarding step returns. Only the parts the step
// produced are set.
type StepResult struct {
	Step            state.Step              `json:"step"`
	NextStep        state.Step              `json:"next_step"`
	Account         *domain.Account         `json:"account,omitempty"`
	Recommendations []domain.Recommendation `json:"recommendations,omitempty"`
	Decisions       *DecisionOutcome        `json:"decisions,omitempty"`
	Summary         *Summary                `json:"summary,omitempty"`
}

func newStepResult(account *domain.Account) *StepResult {
	next := account.Step + 1
	if next > state.StepComplete {
		next = state.StepComplete
	}

	return &StepResult{
		Step:     account.Step,
		NextStep: next,
		Account:  account,
	}
}

func normalizeInterests(interests []string) []string {
	if interests == nil {
		return nil
	}

	out := make([]string, len(interests))
	for i, interest := range interests {
		out[i] = strings.TrimSpace(interest)
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateRequest checks req's struct tags and reports the first violation.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.NewValidationError(describeFieldError(fieldErrs[0]))
	}

	return apperrors.NewValidationError(err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
