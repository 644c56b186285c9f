package onboarding

import (
	"context"
	"log/slog"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/repository"
	"github.com/Proton-105/socialpulse-onboarding/pkg/metrics"
)

// SkipReason says why a decision was not applied.
type SkipReason string

const (
	SkipNotFound       SkipReason = "not_found"
	SkipForeignAccount SkipReason = "foreign_account"
	SkipNotPending     SkipReason = "not_pending"
	SkipInvalidStatus  SkipReason = "invalid_status"
)

// SkippedDecision is a decision the tracker left untouched.
type SkippedDecision struct {
	ID     int64      `json:"id"`
	Reason SkipReason `json:"reason"`
}

// DecisionOutcome lists updated recommendations in update order and the skipped entries.
type DecisionOutcome struct {
	Updated []domain.Recommendation `json:"updated"`
	Skipped []SkippedDecision       `json:"skipped"`
}

// DecisionTracker applies follow decisions to recommendations one entry at a time.
type DecisionTracker struct {
	recs repository.RecommendationRepository
	log  *slog.Logger
}

// NewDecisionTracker constructs a tracker over the recommendation store.
func NewDecisionTracker(recs repository.RecommendationRepository, log *slog.Logger) *DecisionTracker {
	if log == nil {
		log = slog.Default()
	}
	return &DecisionTracker{recs: recs, log: log}
}

// Apply commits each decision independently. Entries that reference a missing or
// foreign recommendation, a non-pending one, or carry a status other than followed
// or skipped are skipped without error. A store failure stops the batch; the outcome
// committed so far is returned with the error.
func (t *DecisionTracker) Apply(ctx context.Context, accountID int64, decisions []Decision) (*DecisionOutcome, error) {
	outcome := &DecisionOutcome{
		Updated: make([]domain.Recommendation, 0, len(decisions)),
		Skipped: make([]SkippedDecision, 0),
	}

	skip := func(id int64, reason SkipReason) {
		outcome.Skipped = append(outcome.Skipped, SkippedDecision{ID: id, Reason: reason})
		metrics.RecordDecision(string(reason))
		t.log.Debug("decision skipped",
			slog.Int64("account_id", accountID),
			slog.Int64("recommendation_id", id),
			slog.String("reason", string(reason)),
		)
	}

	for _, decision := range decisions {
		if !decision.Status.Terminal() {
			skip(decision.ID, SkipInvalidStatus)
			continue
		}
		if decision.ID <= 0 {
			skip(decision.ID, SkipNotFound)
			continue
		}

		rec, err := t.recs.GetByID(ctx, decision.ID)
		if err != nil {
			return outcome, apperrors.NewInternalError("load recommendation", err)
		}

		switch {
		case rec == nil:
			skip(decision.ID, SkipNotFound)
			continue
		case rec.AccountID != accountID:
			skip(decision.ID, SkipForeignAccount)
			continue
		case !rec.Status.CanTransitionTo(decision.Status):
			skip(decision.ID, SkipNotPending)
			continue
		}

		updated, err := t.recs.UpdateStatus(ctx, rec.ID, rec.Status, decision.Status)
		if err != nil {
			return outcome, apperrors.NewInternalError("update recommendation status", err)
		}
		if !updated {
			// decided by someone else between read and write
			skip(decision.ID, SkipNotPending)
			continue
		}

		rec.Status = decision.Status
		outcome.Updated = append(outcome.Updated, *rec)
		metrics.RecordDecision(string(decision.Status))
	}

	return outcome, nil
}
