// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the match store
type Repository interface {
	Create(ctx context.Context, m *Match) error
	GetByID(ctx context.Context, id string) (*Match, error)
	ExistsBetween(ctx context.Context, userA, userB string) (bool, error)
	ListInvolving(ctx context.Context, userID string) ([]*Match, error)
	ListForUser(ctx context.Context, userID string, status MatchStatus) ([]*Match, error)
	Respond(ctx context.Context, id string, status MatchStatus, at time.Time) (*Match, error)
	Deactivate(ctx context.Context, id string) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL match store
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const matchColumns = `
	id, initiator_id, receiver_id, status, match_score, compatibility_factors,
	is_active, matched_at, responded_at, expires_at, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, m *Match) error {
	query := `
		INSERT INTO matches (
			id, initiator_id, receiver_id, status, match_score,
			compatibility_factors, is_active, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING matched_at, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		m.ID, m.InitiatorID, m.ReceiverID, m.Status, m.MatchScore,
		m.CompatibilityFactors, m.IsActive, m.ExpiresAt,
	).Scan(&m.MatchedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrMatchExists
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Match, error) {
	var m Match
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) ExistsBetween(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE (initiator_id = $1 AND receiver_id = $2)
			   OR (initiator_id = $2 AND receiver_id = $1)
		)`

	if err := r.db.GetContext(ctx, &exists, query, userA, userB); err != nil {
		return false, fmt.Errorf("failed to check match: %w", err)
	}
	return exists, nil
}

// ListInvolving returns every match the user is part of, in any status
func (r *postgresRepository) ListInvolving(ctx context.Context, userID string) ([]*Match, error) {
	var matches []*Match
	query := `SELECT ` + matchColumns + ` FROM matches WHERE initiator_id = $1 OR receiver_id = $1`

	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// ListForUser returns the user's active matches in the given status, newest first
func (r *postgresRepository) ListForUser(ctx context.Context, userID string, status MatchStatus) ([]*Match, error) {
	var matches []*Match
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE (initiator_id = $1 OR receiver_id = $1)
		  AND status = $2 AND is_active = TRUE
		ORDER BY matched_at DESC`

	if err := r.db.SelectContext(ctx, &matches, query, userID, status); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// Respond moves a pending, unexpired match to status. A match that is no
// longer pending yields ErrMatchNotPending.
func (r *postgresRepository) Respond(ctx context.Context, id string, status MatchStatus, at time.Time) (*Match, error) {
	var m Match
	query := `
		UPDATE matches
		SET status = $2, responded_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND expires_at > $3
		RETURNING ` + matchColumns

	if err := r.db.GetContext(ctx, &m, query, id, status, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotPending
		}
		if isInvalidID(err) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to respond to match: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to deactivate match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate match: %w", err)
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// ExpirePending marks pending matches past their expiry as expired
func (r *postgresRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matches SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire matches: %w", err)
	}
	return result.RowsAffected()
}

// isInvalidID reports a malformed uuid literal (invalid_text_representation)
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
