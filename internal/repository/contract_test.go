package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

func newTestAccount() *domain.Account {
	return &domain.Account{
		Username:        "user-" + uuid.NewString()[:8],
		Credential:      "secret1",
		Platform:        domain.PlatformTwitter,
		SentimentFilter: domain.SentimentAll,
		NoiseBlocker:    true,
		Step:            state.StepCreated,
	}
}

func runAccountContract(t *testing.T, repo AccountRepository) {
	ctx := context.Background()

	t.Run("create assigns identity", func(t *testing.T) {
		in := newTestAccount()
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)

		assert.Positive(t, created.ID)
		assert.Equal(t, int64(1), created.Version)
		assert.Equal(t, in.Username, created.Username)
		assert.Equal(t, "secret1", created.Credential)
		assert.False(t, created.CreatedAt.IsZero())

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Username, fetched.Username)
		assert.Equal(t, state.StepCreated, fetched.Step)
	})

	t.Run("duplicate username", func(t *testing.T) {
		in := newTestAccount()
		first, err := repo.Create(ctx, in)
		require.NoError(t, err)

		dup := newTestAccount()
		dup.Username = in.Username
		dup.Credential = "another"
		_, err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "secret1", stored.Credential)
	})

	t.Run("lookup misses", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 987654321)
		assert.ErrorIs(t, err, ErrNotFound)

		account, err := repo.GetByUsername(ctx, "nobody-"+uuid.NewString())
		assert.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("update bumps version", func(t *testing.T) {
		created, err := repo.Create(ctx, newTestAccount())
		require.NoError(t, err)

		created.Interests = []string{"technology", "sports"}
		created.Step = state.StepPreferences
		created.SentimentFilter = domain.SentimentPositive

		updated, err := repo.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, created.Version+1, updated.Version)
		assert.Equal(t, []string{"technology", "sports"}, updated.Interests)
		assert.Equal(t, state.StepPreferences, updated.Step)
		assert.Equal(t, domain.SentimentPositive, updated.SentimentFilter)

		byName, err := repo.GetByUsername(ctx, created.Username)
		require.NoError(t, err)
		assert.Equal(t, updated.Version, byName.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		created, err := repo.Create(ctx, newTestAccount())
		require.NoError(t, err)

		stale := created.Clone()
		_, err = repo.Update(ctx, created)
		require.NoError(t, err)

		stale.Step = state.StepPreferences
		_, err = repo.Update(ctx, stale)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("update unknown account", func(t *testing.T) {
		missing := newTestAccount()
		missing.ID = 987654321
		missing.Version = 1
		_, err := repo.Update(ctx, missing)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func runRecommendationContract(t *testing.T, accounts AccountRepository, recs RecommendationRepository) {
	ctx := context.Background()

	newAccount := func(t *testing.T) *domain.Account {
		t.Helper()
		account, err := accounts.Create(ctx, newTestAccount())
		require.NoError(t, err)
		return account
	}

	t.Run("create many dedupes per account", func(t *testing.T) {
		account := newAccount(t)

		inserted, err := recs.CreateMany(ctx, account.ID, []domain.Recommendation{
			{Handle: "@espn", Reason: "sports"},
			{Handle: "@nfl", Reason: "sports"},
		})
		require.NoError(t, err)
		require.Len(t, inserted, 2)
		assert.Equal(t, domain.FollowPending, inserted[0].Status)
		assert.Equal(t, account.ID, inserted[0].AccountID)

		again, err := recs.CreateMany(ctx, account.ID, []domain.Recommendation{
			{Handle: "@espn"},
			{Handle: "@nba"},
		})
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, "@nba", again[0].Handle)

		all, err := recs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "@espn", all[0].Handle)
		assert.Equal(t, "@nba", all[2].Handle)
	})

	t.Run("same handle on different accounts", func(t *testing.T) {
		first := newAccount(t)
		second := newAccount(t)

		_, err := recs.CreateMany(ctx, first.ID, []domain.Recommendation{{Handle: "@espn"}})
		require.NoError(t, err)
		inserted, err := recs.CreateMany(ctx, second.ID, []domain.Recommendation{{Handle: "@espn"}})
		require.NoError(t, err)
		assert.Len(t, inserted, 1)
	})

	t.Run("status moves only from expected", func(t *testing.T) {
		account := newAccount(t)
		inserted, err := recs.CreateMany(ctx, account.ID, []domain.Recommendation{{Handle: "@espn"}, {Handle: "@nfl"}})
		require.NoError(t, err)
		id := inserted[0].ID

		ok, err := recs.UpdateStatus(ctx, id, domain.FollowPending, domain.FollowFollowed)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = recs.UpdateStatus(ctx, id, domain.FollowPending, domain.FollowSkipped)
		require.NoError(t, err)
		assert.False(t, ok)

		rec, err := recs.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.FollowFollowed, rec.Status)

		counts, err := recs.CountByStatus(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[domain.FollowFollowed])
		assert.Equal(t, 1, counts[domain.FollowPending])
		assert.Equal(t, 0, counts[domain.FollowSkipped])
	})

	t.Run("unknown recommendation", func(t *testing.T) {
		rec, err := recs.GetByID(ctx, 987654321)
		assert.NoError(t, err)
		assert.Nil(t, rec)

		ok, err := recs.UpdateStatus(ctx, 987654321, domain.FollowPending, domain.FollowFollowed)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := recs.CreateMany(ctx, 987654321, []domain.Recommendation{{Handle: "@espn"}})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
