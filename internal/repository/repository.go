// Package repository persists accounts and their recommendations.
package repository

import (
	"context"
	"errors"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup by id matches nothing.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateUsername is returned by Create when the username is taken.
	ErrDuplicateUsername = errors.New("repository: username already exists")
	// ErrVersionConflict is returned by Update when the stored version moved on.
	ErrVersionConflict = errors.New("repository: version conflict")
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create stores a new account and returns it with ID, Version and timestamps assigned.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByUsername returns nil, nil when no account uses the username.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Update writes the mutable fields when account.Version matches the stored one
	// and returns the stored account with the next version.
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// RecommendationRepository defines persistence operations for recommendations.
type RecommendationRepository interface {
	// CreateMany inserts recommendations for accountID, ignoring handles already on
	// file for that account, and returns only the rows it inserted.
	CreateMany(ctx context.Context, accountID int64, recs []domain.Recommendation) ([]domain.Recommendation, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]domain.Recommendation, error)
	// GetByID returns nil, nil when the id is unknown.
	GetByID(ctx context.Context, id int64) (*domain.Recommendation, error)
	// UpdateStatus moves a recommendation from one status to another. It reports false
	// when the stored status was not from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.FollowStatus) (bool, error)
	CountByStatus(ctx context.Context, accountID int64) (map[domain.FollowStatus]int, error)
}
