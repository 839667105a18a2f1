package sqlite

import (
	"context"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
)

type activeTokensRepo struct {
	q dbtx
}

func (r *activeTokensRepo) RecordToken(ctx context.Context, t domain.ActiveToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO active_tokens (token, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, timeToMillis(t.ExpiresAt), timeToMillis(t.CreatedAt))
	return mapConstraint(err)
}

func (r *activeTokensRepo) LookupToken(ctx context.Context, token string) (domain.ActiveToken, error) {
	var (
		t                    domain.ActiveToken
		expiresAt, createdAt int64
	)
	row := r.q.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM active_tokens WHERE token = ?`, token)
	if err := row.Scan(&t.Token, &t.UserID, &expiresAt, &createdAt); err != nil {
		return domain.ActiveToken{}, mapNotFound(err)
	}
	t.ExpiresAt = millisToTime(expiresAt)
	t.CreatedAt = millisToTime(createdAt)
	return t, nil
}

func (r *activeTokensRepo) RevokeToken(ctx context.Context, token string) error {
	// Deleting an absent record is not an error; revocation is idempotent.
	_, err := r.q.ExecContext(ctx, `DELETE FROM active_tokens WHERE token = ?`, token)
	return err
}

func (r *activeTokensRepo) RevokeUserTokens(ctx context.Context, userID string) (int, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM active_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *activeTokensRepo) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM active_tokens WHERE expires_at < ?`, timeToMillis(now))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
