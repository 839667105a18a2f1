package sqlite

import (
	"context"

	"github.com/stashbin/stashbin/internal/domain"
)

type groupsRepo struct {
	q dbtx
}

const groupColumns = `id, user_id, name, slug, description, allow_public_write, protected, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (domain.Group, error) {
	var (
		g                    domain.Group
		createdAt, updatedAt int64
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Slug, &g.Description,
		&g.AllowPublicWrite, &g.Protected, &createdAt, &updatedAt); err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	g.CreatedAt = millisToTime(createdAt)
	g.UpdatedAt = millisToTime(updatedAt)
	return g, nil
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	return scanGroup(row)
}

func (r *groupsRepo) GetGroupBySlug(ctx context.Context, userID, slug string) (domain.Group, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE user_id = ? AND slug = ?`, userID, slug)
	return scanGroup(row)
}

func (r *groupsRepo) ListGroupsByUser(ctx context.Context, userID string) ([]domain.Group, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO groups (id, user_id, name, slug, description, allow_public_write, protected, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Slug, g.Description, g.AllowPublicWrite, g.Protected,
		timeToMillis(g.CreatedAt), timeToMillis(g.UpdatedAt))
	return mapConstraint(err)
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE groups SET name = ?, slug = ?, description = ?, allow_public_write = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, g.Slug, g.Description, g.AllowPublicWrite, timeToMillis(g.UpdatedAt), g.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowAffected(res)
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
