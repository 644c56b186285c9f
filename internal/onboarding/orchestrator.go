// Package onboarding drives an account through the onboarding steps:
// create (0), preferences (1), review recommendations (2) and complete (3).
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/socialpulse-onboarding/internal/accountcache"
	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/recommendation"
	"github.com/Proton-105/socialpulse-onboarding/internal/repository"
	"github.com/Proton-105/socialpulse-onboarding/internal/state"
	"github.com/Proton-105/socialpulse-onboarding/pkg/metrics"
)

// Orchestrator owns the onboarding step machine.
type Orchestrator struct {
	accounts   repository.AccountRepository
	recs       repository.RecommendationRepository
	generator  *recommendation.Generator
	tracker    *DecisionTracker
	aggregator *CompletionAggregator
	locker     state.Locker
	cache      *accountcache.Cache
	cacheTTL   time.Duration
	log        *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLocker replaces the default in-process locker.
func WithLocker(locker state.Locker) Option {
	return func(o *Orchestrator) {
		if locker != nil {
			o.locker = locker
		}
	}
}

// WithAccountCache serves GetAccount from cache and invalidates it on every write.
func WithAccountCache(cache *accountcache.Cache, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.cache = cache
		o.cacheTTL = ttl
	}
}

// NewOrchestrator wires the onboarding components.
func NewOrchestrator(
	accounts repository.AccountRepository,
	recs repository.RecommendationRepository,
	generator *recommendation.Generator,
	log *slog.Logger,
	opts ...Option,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}

	o := &Orchestrator{
		accounts:   accounts,
		recs:       recs,
		generator:  generator,
		tracker:    NewDecisionTracker(recs, log),
		aggregator: NewCompletionAggregator(recs),
		locker:     state.NewMemoryLocker(),
		log:        log.With(slog.String("component", "onboarding")),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Advance dispatches a (step, method) pair: 0/create, 1/create, 2/read and 3/read.
func (o *Orchestrator) Advance(ctx context.Context, req AdvanceRequest) (*StepResult, error) {
	switch {
	case req.Step == int(state.StepCreated) && req.Method == MethodCreate:
		if req.Account == nil {
			return nil, apperrors.NewValidationError("account payload is required")
		}
		return o.CreateAccount(ctx, *req.Account)
	case req.Step == int(state.StepPreferences) && req.Method == MethodCreate:
		if req.Preferences == nil {
			return nil, apperrors.NewValidationError("preferences payload is required")
		}
		return o.SetPreferences(ctx, req.AccountID, *req.Preferences)
	case req.Step == int(state.StepReviewed) && req.Method == MethodRead:
		return o.PendingRecommendations(ctx, req.AccountID)
	case req.Step == int(state.StepComplete) && req.Method == MethodRead:
		return o.Complete(ctx, req.AccountID)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported step %d with method %q", req.Step, req.Method))
	}
}

// UpdateDecisions is the transport-agnostic step 2 write.
func (o *Orchestrator) UpdateDecisions(ctx context.Context, req DecisionsRequest) (*StepResult, error) {
	return o.SubmitDecisions(ctx, req)
}

// CreateAccount persists a new account at step 0.
func (o *Orchestrator) CreateAccount(ctx context.Context, req NewAccount) (result *StepResult, err error) {
	defer o.observe("create_account", time.Now(), &err)

	req.Interests = normalizeInterests(req.Interests)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := o.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.NewInternalError("lookup account by username", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("username %q already exists", req.Username), repository.ErrDuplicateUsername)
	}

	draft := &domain.Account{
		Username:        req.Username,
		Credential:      req.Credential,
		Platform:        req.Platform,
		Interests:       req.Interests,
		SentimentFilter: domain.DefaultSentimentFilter,
		NoiseBlocker:    true,
		Step:            state.StepCreated,
	}
	if req.SentimentFilter != "" {
		draft.SentimentFilter = req.SentimentFilter
	}
	if req.NoiseBlocker != nil {
		draft.NoiseBlocker = *req.NoiseBlocker
	}

	account, err := o.accounts.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("username %q already exists", req.Username), err)
		}
		return nil, apperrors.NewInternalError("create account", err)
	}

	state.RecordCreated()
	o.log.Info("account created", slog.Any("account", account))

	return newStepResult(account), nil
}

// SetPreferences stores preferences and persists newly generated recommendations.
// Repeating it is additive: existing recommendations are kept and never duplicated.
func (o *Orchestrator) SetPreferences(ctx context.Context, accountID int64, prefs Preferences) (result *StepResult, err error) {
	defer o.observe("set_preferences", time.Now(), &err)

	prefs.Interests = normalizeInterests(prefs.Interests)
	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}
	if err := validateRequest(prefs); err != nil {
		return nil, err
	}

	unlock, err := o.lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, err := o.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	next, err := o.nextStep(account, state.ActionSetPreferences)
	if err != nil {
		return nil, err
	}

	account.Interests = prefs.Interests
	if prefs.SentimentFilter != "" {
		account.SentimentFilter = prefs.SentimentFilter
	}
	if prefs.NoiseBlocker != nil {
		account.NoiseBlocker = *prefs.NoiseBlocker
	}

	account, err = o.commitStep(ctx, account, next)
	if err != nil {
		return nil, err
	}

	candidates := o.generator.Generate(account.Platform, account.Interests)
	drafts := make([]domain.Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		drafts = append(drafts, domain.Recommendation{
			AccountID: account.ID,
			Handle:    candidate.Handle,
			Reason:    candidate.Reason,
			Status:    domain.FollowPending,
		})
	}

	inserted, err := o.recs.CreateMany(ctx, account.ID, drafts)
	if err != nil {
		return nil, apperrors.NewInternalError("persist recommendations", err)
	}
	metrics.RecordRecommendations(string(account.Platform), len(inserted))

	o.log.Info("preferences set",
		slog.Int64("account_id", account.ID),
		slog.Int("interests", len(account.Interests)),
		slog.Int("generated", len(candidates)),
		slog.Int("persisted", len(inserted)),
	)

	result = newStepResult(account)
	result.Recommendations = inserted
	return result, nil
}

// PendingRecommendations lists the account's recommendations still awaiting a decision.
func (o *Orchestrator) PendingRecommendations(ctx context.Context, accountID int64) (result *StepResult, err error) {
	defer o.observe("list_pending", time.Now(), &err)

	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}

	unlock, err := o.lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, err := o.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := o.nextStep(account, state.ActionListPending); err != nil {
		return nil, err
	}

	all, err := o.recs.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.NewInternalError("list recommendations", err)
	}

	pending := make([]domain.Recommendation, 0, len(all))
	for _, rec := range all {
		if rec.Status == domain.FollowPending {
			pending = append(pending, rec)
		}
	}

	result = newStepResult(account)
	result.Recommendations = pending
	return result, nil
}

// SubmitDecisions applies follow decisions and moves the account to step 2.
// On a store failure mid-batch the partial outcome is returned alongside the error.
func (o *Orchestrator) SubmitDecisions(ctx context.Context, req DecisionsRequest) (result *StepResult, err error) {
	defer o.observe("submit_decisions", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	unlock, err := o.lock(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, err := o.loadAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	next, err := o.nextStep(account, state.ActionSubmitDecisions)
	if err != nil {
		return nil, err
	}

	outcome, err := o.tracker.Apply(ctx, account.ID, req.Decisions)
	if err != nil {
		partial := newStepResult(account)
		partial.Decisions = outcome
		return partial, err
	}

	if next != account.Step {
		committed, err := o.commitStep(ctx, account.Clone(), next)
		if err != nil {
			// the decisions are already committed
			partial := newStepResult(account)
			partial.Decisions = outcome
			return partial, err
		}
		account = committed
	}

	o.log.Info("decisions applied",
		slog.Int64("account_id", account.ID),
		slog.Int("updated", len(outcome.Updated)),
		slog.Int("skipped", len(outcome.Skipped)),
	)

	result = newStepResult(account)
	result.Decisions = outcome
	return result, nil
}

// Complete marks the account complete and returns its decision summary.
// Calling it again without intervening decisions returns the same summary.
func (o *Orchestrator) Complete(ctx context.Context, accountID int64) (result *StepResult, err error) {
	defer o.observe("complete", time.Now(), &err)

	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}

	unlock, err := o.lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, err := o.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	next, err := o.nextStep(account, state.ActionComplete)
	if err != nil {
		return nil, err
	}

	summary, err := o.aggregator.Summarize(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	if next != account.Step {
		account, err = o.commitStep(ctx, account, next)
		if err != nil {
			return nil, err
		}
	}

	result = newStepResult(account)
	result.Summary = &summary
	return result, nil
}

// GetAccount returns an account snapshot, from cache when one is configured.
// A cache miss is filled under the account lock so a concurrent commit cannot be
// overwritten by an older read; when the lock is busy the store copy is served
// without filling the cache.
func (o *Orchestrator) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}

	if o.cache == nil {
		return o.loadAccount(ctx, accountID)
	}

	cached, err := o.cache.Get(ctx, accountID)
	if err != nil {
		o.log.Warn("account cache read failed", slog.Int64("account_id", accountID), slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	unlock, err := o.locker.Lock(ctx, accountID)
	if err != nil {
		if errors.Is(err, state.ErrStateLocked) {
			return o.loadAccount(ctx, accountID)
		}
		return nil, apperrors.NewInternalError("lock account", err)
	}
	defer unlock()

	account, err := o.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := o.cache.Set(ctx, account, o.cacheTTL); err != nil {
		o.log.Warn("account cache write failed", slog.Int64("account_id", accountID), slog.Any("error", err))
	}

	return account, nil
}

func (o *Orchestrator) lock(ctx context.Context, accountID int64) (state.Unlock, error) {
	unlock, err := o.locker.Lock(ctx, accountID)
	if err != nil {
		if errors.Is(err, state.ErrStateLocked) {
			return nil, apperrors.NewConflictError("account is being modified by another request", err)
		}
		return nil, apperrors.NewInternalError("lock account", err)
	}
	return unlock, nil
}

func (o *Orchestrator) loadAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := o.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, apperrors.NewInternalError("load account", err)
	}
	return account, nil
}

func (o *Orchestrator) nextStep(account *domain.Account, action state.Action) (state.Step, error) {
	next, err := state.Next(account.Step, action)
	if err != nil {
		return account.Step, apperrors.NewStateError(
			fmt.Sprintf("cannot %s: account %d is at step %d (%s)", action, account.ID, account.Step, account.Step),
			err,
		)
	}
	return next, nil
}

// commitStep persists account at step next, guarded by the account version.
func (o *Orchestrator) commitStep(ctx context.Context, account *domain.Account, next state.Step) (*domain.Account, error) {
	prev := account.Step
	account.Step = next

	updated, err := o.accounts.Update(ctx, account)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.NewConflictError("account was modified concurrently", err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFoundError("account", account.ID)
		default:
			return nil, apperrors.NewInternalError("update account", err)
		}
	}

	state.RecordTransition(prev, updated.Step)
	if err := o.cache.Invalidate(ctx, updated.ID); err != nil {
		o.log.Warn("account cache invalidation failed", slog.Int64("account_id", updated.ID), slog.Any("error", err))
	}

	return updated, nil
}

func (o *Orchestrator) observe(operation string, start time.Time, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = string(apperrors.KindOf(*errp))
	}
	metrics.RecordOperation(operation, status, time.Since(start))
}

func validateAccountID(accountID int64) error {
	if accountID <= 0 {
		return apperrors.NewValidationError("account_id must be greater than 0")
	}
	return nil
}
