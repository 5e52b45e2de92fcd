package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
)

// TokenRepository issues and consumes the single-use response tokens
// that stand in for a login on the one-click answer links.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// IssuedToken carries a freshly minted raw token out to the notifier.
// The raw value is never persisted.
type IssuedToken struct {
	RecipientEmail string
	RawToken       string
	ExpiresAt      time.Time
}

// issueToken writes or replaces the token row for one recipient of a
// proposal. Replacing the stored hash is what invalidates any link
// mailed earlier: the old raw value no longer matches any row.
func issueToken(ctx context.Context, q dbtx, proposalID int, recipientEmail string, ttl time.Duration) (IssuedToken, error) {
	rawToken, tokenHash, err := utils.GenerateResponseToken()
	if err != nil {
		return IssuedToken{}, err
	}

	expiresAt := time.Now().UTC().Add(ttl)
	_, err = q.ExecContext(ctx, `
		INSERT INTO response_tokens (proposal_id, recipient_email, token_hash, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			token_hash = VALUES(token_hash),
			expires_at = VALUES(expires_at),
			consumed_at = NULL
	`, proposalID, recipientEmail, tokenHash, formatSQLTime(expiresAt))
	if err != nil {
		return IssuedToken{}, utils.ErrorHandler(err, "failed to store response token")
	}

	return IssuedToken{
		RecipientEmail: recipientEmail,
		RawToken:       rawToken,
		ExpiresAt:      expiresAt,
	}, nil
}

// Issue mints a replacement token for one recipient of an open
// proposal, superseding whatever token they held before.
func (r *TokenRepository) Issue(ctx context.Context, proposalID int, recipientEmail string, ttl time.Duration) (IssuedToken, error) {
	var status models.ProposalStatus
	err := r.db.QueryRowContext(ctx, `
		SELECT status FROM meeting_proposals WHERE id = ?
	`, proposalID).Scan(&status)
	if err == sql.ErrNoRows {
		return IssuedToken{}, fmt.Errorf("proposal %d: %w", proposalID, ErrNotFound)
	}
	if err != nil {
		return IssuedToken{}, utils.ErrorHandler(err, "failed to check proposal status")
	}
	if status != models.ProposalOpen {
		return IssuedToken{}, fmt.Errorf("proposal is %s: %w", status, ErrProposalClosed)
	}

	return issueToken(ctx, r.db, proposalID, recipientEmail, ttl)
}

// consumeToken is the one critical section of response handling: the
// conditional update flips consumed_at exactly once, so of any number
// of concurrent submissions with the same token, one wins and the rest
// classify below.
func consumeToken(ctx context.Context, q dbtx, rawToken string, now time.Time) (*models.ResponseToken, error) {
	tokenHash := utils.HashResponseToken(rawToken)
	nowStr := formatSQLTime(now)

	res, err := q.ExecContext(ctx, `
		UPDATE response_tokens
		SET consumed_at = ?
		WHERE token_hash = ? AND consumed_at IS NULL AND expires_at > ?
	`, nowStr, tokenHash, nowStr)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to consume token")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to read consume result")
	}

	if rows == 0 {
		var expiresAt string
		var consumedAt sql.NullString
		err := q.QueryRowContext(ctx, `
			SELECT expires_at, consumed_at FROM response_tokens WHERE token_hash = ?
		`, tokenHash).Scan(&expiresAt, &consumedAt)
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to classify token")
		}
		if consumedAt.Valid {
			return nil, ErrTokenConsumed
		}
		return nil, ErrTokenExpired
	}

	token := &models.ResponseToken{}
	err = q.QueryRowContext(ctx, `
		SELECT id, proposal_id, recipient_email, token_hash, expires_at, consumed_at, created_at
		FROM response_tokens WHERE token_hash = ?
	`, tokenHash).Scan(&token.ID, &token.ProposalID, &token.RecipientEmail,
		&token.TokenHash, &token.ExpiresAt, &token.ConsumedAt, &token.CreatedAt)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to load consumed token")
	}
	return token, nil
}

// Consume validates a raw token and marks it used in one atomic step,
// returning the bound (proposal, recipient) on success.
func (r *TokenRepository) Consume(ctx context.Context, rawToken string) (*models.ResponseToken, error) {
	return consumeToken(ctx, r.db, rawToken, time.Now().UTC())
}

// Lookup fetches the token row without consuming it. The façade uses
// this to build the friendly already-answered reply.
func (r *TokenRepository) Lookup(ctx context.Context, rawToken string) (*models.ResponseToken, error) {
	tokenHash := utils.HashResponseToken(rawToken)

	token := &models.ResponseToken{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, recipient_email, token_hash, expires_at, consumed_at, created_at
		FROM response_tokens WHERE token_hash = ?
	`, tokenHash).Scan(&token.ID, &token.ProposalID, &token.RecipientEmail,
		&token.TokenHash, &token.ExpiresAt, &token.ConsumedAt, &token.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to look up token")
	}
	return token, nil
}

// PurgeExpired drops unconsumed tokens whose expiry passed more than
// the given age ago. The cron sweep calls this hourly.
func (r *TokenRepository) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM response_tokens WHERE consumed_at IS NULL AND expires_at < ?
	`, formatSQLTime(cutoff))
	if err != nil {
		return 0, utils.ErrorHandler(err, "failed to purge expired tokens")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, utils.ErrorHandler(err, "failed to read purge result")
	}
	return rows, nil
}
