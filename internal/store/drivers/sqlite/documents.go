package sqlite

import (
	"context"

	"github.com/stashbin/stashbin/internal/domain"
)

type documentsRepo struct {
	q dbtx
}

const documentColumns = `id, user_id, group_id, name, slug, description, content, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var (
		d                    domain.Document
		createdAt, updatedAt int64
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.GroupID, &d.Name, &d.Slug, &d.Description, &d.Content,
		&createdAt, &updatedAt); err != nil {
		return domain.Document{}, mapNotFound(err)
	}
	d.CreatedAt = millisToTime(createdAt)
	d.UpdatedAt = millisToTime(updatedAt)
	return d, nil
}

func (r *documentsRepo) GetDocumentByID(ctx context.Context, id string) (domain.Document, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func (r *documentsRepo) GetDocumentBySlug(ctx context.Context, groupID, slug string) (domain.Document, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE group_id = ? AND slug = ?`, groupID, slug)
	return scanDocument(row)
}

func (r *documentsRepo) listDocuments(ctx context.Context, query string, arg any) ([]domain.Document, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentsRepo) ListDocumentsByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	return r.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? ORDER BY created_at`, userID)
}

func (r *documentsRepo) ListDocumentsByGroup(ctx context.Context, groupID string) ([]domain.Document, error) {
	return r.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE group_id = ? ORDER BY created_at`, groupID)
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, group_id, name, slug, description, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.GroupID, d.Name, d.Slug, d.Description, d.Content,
		timeToMillis(d.CreatedAt), timeToMillis(d.UpdatedAt))
	return mapConstraint(err)
}

func (r *documentsRepo) UpdateDocument(ctx context.Context, d domain.Document) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE documents SET name = ?, slug = ?, description = ?, content = ?, group_id = ?, updated_at = ?
		 WHERE id = ?`,
		d.Name, d.Slug, d.Description, d.Content, d.GroupID, timeToMillis(d.UpdatedAt), d.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowAffected(res)
}

func (r *documentsRepo) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
