package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datapulse/datapulse-go/internal/model"
)

var ErrTokenNotFound = errors.New("auth token not found")

const tokenColumns = `id, token, user_id, expires_at, created_at`

// TokenRepository persists issued bearer tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores token, assigning its ID and creation time.
func (r *TokenRepository) Create(ctx context.Context, token *model.AuthToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = timestamp(time.Now())
	token.ExpiresAt = timestamp(token.ExpiresAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (`+tokenColumns+`) VALUES (?, ?, ?, ?, ?)`,
		token.ID, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert auth token: %w", err)
	}
	return nil
}

// GetByToken looks up a record by its token string.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*model.AuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM auth_tokens WHERE token = ?`, token)
	return scanToken(row)
}

// GetForUser looks up a record by ID, scoped to its owner.
func (r *TokenRepository) GetForUser(ctx context.Context, userID, id string) (*model.AuthToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM auth_tokens WHERE id = ? AND user_id = ?`, id, userID)
	return scanToken(row)
}

// ListByUser returns the user's tokens, newest first.
func (r *TokenRepository) ListByUser(ctx context.Context, userID string) ([]model.AuthToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM auth_tokens WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list auth tokens: %w", err)
	}
	defer rows.Close()

	tokens := []model.AuthToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	return tokens, rows.Err()
}

// DeleteByToken removes every record with the given token string and reports
// how many were removed.
func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = ?`, token)
	if err != nil {
		return 0, fmt.Errorf("delete auth token: %w", err)
	}
	return result.RowsAffected()
}

// DeleteForUser removes a record by ID, scoped to its owner.
func (r *TokenRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete auth token: %w", err)
	}
	return requireAffected(result, ErrTokenNotFound)
}

// DeleteExpired purges records that expired before now.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE expires_at <= ?`, timestamp(now))
	if err != nil {
		return 0, fmt.Errorf("purge auth tokens: %w", err)
	}
	return result.RowsAffected()
}

func scanToken(row rowScanner) (*model.AuthToken, error) {
	var t model.AuthToken
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("scan auth token: %w", err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
