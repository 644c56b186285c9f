package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
)

// MemoryStore keeps accounts and recommendations in process memory.
// Accounts and Recommendations expose it through the repository interfaces.
type MemoryStore struct {
	mu sync.RWMutex

	accounts   map[int64]*domain.Account
	byUsername map[string]int64
	nextAcct   int64

	recs     map[int64]*domain.Recommendation
	byHandle map[int64]map[string]int64
	nextRec  int64

	now func() time.Time
}

// MemoryAccountRepository is the AccountRepository view of a MemoryStore.
type MemoryAccountRepository struct{ s *MemoryStore }

// MemoryRecommendationRepository is the RecommendationRepository view of a MemoryStore.
type MemoryRecommendationRepository struct{ s *MemoryStore }

var (
	_ AccountRepository        = (*MemoryAccountRepository)(nil)
	_ RecommendationRepository = (*MemoryRecommendationRepository)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   make(map[int64]*domain.Account),
		byUsername: make(map[string]int64),
		recs:       make(map[int64]*domain.Recommendation),
		byHandle:   make(map[int64]map[string]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Accounts returns the account repository backed by s.
func (s *MemoryStore) Accounts() *MemoryAccountRepository {
	return &MemoryAccountRepository{s: s}
}

// Recommendations returns the recommendation repository backed by s.
func (s *MemoryStore) Recommendations() *MemoryRecommendationRepository {
	return &MemoryRecommendationRepository{s: s}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[account.Username]; taken {
		return nil, ErrDuplicateUsername
	}

	s.nextAcct++
	stored := account.Clone()
	stored.ID = s.nextAcct
	stored.Version = 1
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt

	s.accounts[stored.ID] = stored
	s.byUsername[stored.Username] = stored.ID

	return stored.Clone(), nil
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

func (r *MemoryAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, nil
	}
	return s.accounts[id].Clone(), nil
}

func (r *MemoryAccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Version != account.Version {
		return nil, ErrVersionConflict
	}

	updated := stored.Clone()
	updated.Interests = append([]string(nil), account.Interests...)
	updated.SentimentFilter = account.SentimentFilter
	updated.NoiseBlocker = account.NoiseBlocker
	updated.Step = account.Step
	updated.Version = stored.Version + 1
	updated.UpdatedAt = s.now()

	s.accounts[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *MemoryRecommendationRepository) CreateMany(ctx context.Context, accountID int64, recs []domain.Recommendation) ([]domain.Recommendation, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, ErrNotFound
	}

	handles := s.byHandle[accountID]
	if handles == nil {
		handles = make(map[string]int64)
		s.byHandle[accountID] = handles
	}

	inserted := make([]domain.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if _, dup := handles[rec.Handle]; dup {
			continue
		}

		s.nextRec++
		stored := rec
		stored.ID = s.nextRec
		stored.AccountID = accountID
		if stored.Status == "" {
			stored.Status = domain.FollowPending
		}
		stored.CreatedAt = s.now()

		s.recs[stored.ID] = &stored
		handles[stored.Handle] = stored.ID
		inserted = append(inserted, stored)
	}

	return inserted, nil
}

func (r *MemoryRecommendationRepository) GetByAccountID(ctx context.Context, accountID int64) ([]domain.Recommendation, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recommendation, 0, len(s.byHandle[accountID]))
	for _, id := range s.byHandle[accountID] {
		out = append(out, *s.recs[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *MemoryRecommendationRepository) GetByID(ctx context.Context, id int64) (*domain.Recommendation, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *MemoryRecommendationRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.FollowStatus) (bool, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (r *MemoryRecommendationRepository) CountByStatus(ctx context.Context, accountID int64) (map[domain.FollowStatus]int, error) {
	s := r.s

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.FollowStatus]int, 3)
	for _, id := range s.byHandle[accountID] {
		counts[s.recs[id].Status]++
	}
	return counts, nil
}
