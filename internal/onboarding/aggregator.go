package onboarding

import (
	"context"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/repository"
)

// Summary counts an account's recommendations by decision.
type Summary struct {
	FollowedCount int `json:"followed_count"`
	SkippedCount  int `json:"skipped_count"`
	TotalCount    int `json:"total_count"`
}

// CompletionAggregator builds read-only summaries.
type CompletionAggregator struct {
	recs repository.RecommendationRepository
}

func NewCompletionAggregator(recs repository.RecommendationRepository) *CompletionAggregator {
	return &CompletionAggregator{recs: recs}
}

// Summarize reflects whatever decisions have committed at read time.
func (a *CompletionAggregator) Summarize(ctx context.Context, accountID int64) (Summary, error) {
	counts, err := a.recs.CountByStatus(ctx, accountID)
	if err != nil {
		return Summary{}, apperrors.NewInternalError("summarize recommendations", err)
	}

	summary := Summary{
		FollowedCount: counts[domain.FollowFollowed],
		SkippedCount:  counts[domain.FollowSkipped],
	}
	for _, n := range counts {
		summary.TotalCount += n
	}

	return summary, nil
}
