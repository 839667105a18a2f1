package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
)

type apiKeysRepo struct {
	q dbtx
}

const apiKeyColumns = `id, user_id, name, key, is_active, expires_at, last_used_at, created_at`

func scanAPIKey(row interface{ Scan(...any) error }) (domain.APIKey, error) {
	var (
		k                   domain.APIKey
		expiresAt, lastUsed sql.NullInt64
		createdAt           int64
	)
	if err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.Key, &k.IsActive,
		&expiresAt, &lastUsed, &createdAt); err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	k.ExpiresAt = millisToOptionalTime(expiresAt)
	k.LastUsed = millisToOptionalTime(lastUsed)
	k.CreatedAt = millisToTime(createdAt)
	return k, nil
}

func (r *apiKeysRepo) GetAPIKey(ctx context.Context, userID, key string) (domain.APIKey, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = ? AND key = ?`, userID, key)
	return scanAPIKey(row)
}

func (r *apiKeysRepo) ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, name, key, is_active, expires_at, last_used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.UserID, k.Name, k.Key, k.IsActive,
		optionalTimeToMillis(k.ExpiresAt), optionalTimeToMillis(k.LastUsed),
		timeToMillis(k.CreatedAt))
	return mapConstraint(err)
}

func (r *apiKeysRepo) RenameAPIKey(ctx context.Context, userID, id, name string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE api_keys SET name = ? WHERE id = ? AND user_id = ?`, name, id, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *apiKeysRepo) SetAPIKeyActive(ctx context.Context, userID, id string, active bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE api_keys SET is_active = ? WHERE id = ? AND user_id = ?`, active, id, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *apiKeysRepo) DeleteAPIKey(ctx context.Context, userID, id string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM api_keys WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *apiKeysRepo) TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, timeToMillis(usedAt), id)
	return err
}
