package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

const accountColumns = `id, username, credential, platform, interests, sentiment_filter,
	noise_blocker_enabled, onboarding_step, version, created_at, updated_at`

const recommendationColumns = `id, account_id, recommended_user, reason, follow_status, created_at`

type accountRow struct {
	ID              int64          `db:"id"`
	Username        string         `db:"username"`
	Credential      string         `db:"credential"`
	Platform        string         `db:"platform"`
	Interests       pq.StringArray `db:"interests"`
	SentimentFilter string         `db:"sentiment_filter"`
	NoiseBlocker    bool           `db:"noise_blocker_enabled"`
	Step            int            `db:"onboarding_step"`
	Version         int64          `db:"version"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *accountRow) toDomain() *domain.Account {
	return &domain.Account{
		ID:              r.ID,
		Username:        r.Username,
		Credential:      r.Credential,
		Platform:        domain.Platform(r.Platform),
		Interests:       []string(r.Interests),
		SentimentFilter: domain.SentimentFilter(r.SentimentFilter),
		NoiseBlocker:    r.NoiseBlocker,
		Step:            state.Step(r.Step),
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type recommendationRow struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Handle    string    `db:"recommended_user"`
	Reason    string    `db:"reason"`
	Status    string    `db:"follow_status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *recommendationRow) toDomain() domain.Recommendation {
	return domain.Recommendation{
		ID:        r.ID,
		AccountID: r.AccountID,
		Handle:    r.Handle,
		Reason:    r.Reason,
		Status:    domain.FollowStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// interestsArray maps nil to an empty array; a nil pq.StringArray encodes as NULL.
func interestsArray(interests []string) pq.StringArray {
	if interests == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(interests)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// PostgresAccountRepository implements AccountRepository on postgres.
type PostgresAccountRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)

// NewPostgresAccountRepository creates a new SQL-backed account repository.
func NewPostgresAccountRepository(db *sqlx.DB, log *slog.Logger) *PostgresAccountRepository {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresAccountRepository{db: db, log: log}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (username, credential, platform, interests, sentiment_filter,
			noise_blocker_enabled, onboarding_step, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING ` + accountColumns

	var row accountRow
	err := r.db.QueryRowxContext(
		ctx,
		query,
		account.Username,
		account.Credential,
		string(account.Platform),
		interestsArray(account.Interests),
		string(account.SentimentFilter),
		account.NoiseBlocker,
		int(account.Step),
	).StructScan(&row)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, ErrDuplicateUsername
		}
		r.log.Error("failed to create account", slog.String("username", account.Username), slog.Any("error", err))
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return row.toDomain(), nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var row accountRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select account by id: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var row accountRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select account by username: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresAccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET interests = $3, sentiment_filter = $4, noise_blocker_enabled = $5,
			onboarding_step = $6, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + accountColumns

	var row accountRow
	err := r.db.QueryRowxContext(
		ctx,
		query,
		account.ID,
		account.Version,
		interestsArray(account.Interests),
		string(account.SentimentFilter),
		account.NoiseBlocker,
		int(account.Step),
	).StructScan(&row)
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.log.Error("failed to update account", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return nil, fmt.Errorf("update account: %w", err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, account.ID); err != nil {
		return nil, fmt.Errorf("check account existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrVersionConflict
}

// PostgresRecommendationRepository implements RecommendationRepository on postgres.
type PostgresRecommendationRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

var _ RecommendationRepository = (*PostgresRecommendationRepository)(nil)

// NewPostgresRecommendationRepository creates a new SQL-backed recommendation repository.
func NewPostgresRecommendationRepository(db *sqlx.DB, log *slog.Logger) *PostgresRecommendationRepository {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresRecommendationRepository{db: db, log: log}
}

func (r *PostgresRecommendationRepository) CreateMany(ctx context.Context, accountID int64, recs []domain.Recommendation) ([]domain.Recommendation, error) {
	if len(recs) == 0 {
		return []domain.Recommendation{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO recommendations (account_id, recommended_user, reason, follow_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, recommended_user) DO NOTHING
		RETURNING ` + recommendationColumns

	inserted := make([]domain.Recommendation, 0, len(recs))
	for _, rec := range recs {
		status := rec.Status
		if status == "" {
			status = domain.FollowPending
		}

		var row recommendationRow
		err := tx.QueryRowxContext(ctx, query, accountID, rec.Handle, rec.Reason, string(status)).StructScan(&row)
		switch {
		case err == nil:
			inserted = append(inserted, row.toDomain())
		case errors.Is(err, sql.ErrNoRows):
			// handle already on file for this account
		case pqCode(err) == pqForeignKeyViolation:
			return nil, ErrNotFound
		default:
			r.log.Error("failed to insert recommendation",
				slog.Int64("account_id", accountID),
				slog.String("handle", rec.Handle),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit recommendations: %w", err)
	}

	return inserted, nil
}

func (r *PostgresRecommendationRepository) GetByAccountID(ctx context.Context, accountID int64) ([]domain.Recommendation, error) {
	var rows []recommendationRow
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE account_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("select recommendations: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *PostgresRecommendationRepository) GetByID(ctx context.Context, id int64) (*domain.Recommendation, error) {
	var row recommendationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+recommendationColumns+` FROM recommendations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select recommendation: %w", err)
	}
	rec := row.toDomain()
	return &rec, nil
}

func (r *PostgresRecommendationRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.FollowStatus) (bool, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE recommendations SET follow_status = $3 WHERE id = $1 AND follow_status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return false, fmt.Errorf("update recommendation status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRecommendationRepository) CountByStatus(ctx context.Context, accountID int64) (map[domain.FollowStatus]int, error) {
	var rows []struct {
		Status string `db:"follow_status"`
		Count  int    `db:"count"`
	}
	query := `
		SELECT follow_status, COUNT(*) AS count
		FROM recommendations
		WHERE account_id = $1
		GROUP BY follow_status
	`
	if err := r.db.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("count recommendations: %w", err)
	}

	counts := make(map[domain.FollowStatus]int, len(rows))
	for _, row := range rows {
		counts[domain.FollowStatus(row.Status)] = row.Count
	}
	return counts, nil
}
