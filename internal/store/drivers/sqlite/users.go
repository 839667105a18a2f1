package sqlite

import (
	"context"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, username, email, password_hash, slug, created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Slug, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = millisToTime(createdAt)
	u.UpdatedAt = millisToTime(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserBySlug(ctx context.Context, slug string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE slug = ? LIMIT 1`, slug)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, slug, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Slug,
		timeToMillis(u.CreatedAt), timeToMillis(u.UpdatedAt))
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, timeToMillis(time.Now()), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, username, email, slug string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, slug = ?, updated_at = ? WHERE id = ?`,
		username, email, slug, timeToMillis(time.Now()), userID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowAffected(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
