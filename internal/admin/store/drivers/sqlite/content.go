package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
)

type contentRepo struct {
	q querier
}

const contentColumns = `id, tenant_id, type, sort_order, attrs, created_at, updated_at`

func scanContentItem(row interface{ Scan(...any) error }) (domain.ContentItem, error) {
	var (
		item  domain.ContentItem
		typ   string
		attrs string
	)
	err := row.Scan(
		&item.ID, &item.TenantID, &typ, &item.SortOrder, &attrs,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.ContentItem{}, err
	}

	item.Type = domain.ContentType(typ)
	item.Attrs, err = unmarshalJSON(sql.NullString{String: attrs, Valid: true})
	if err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

func (r *contentRepo) GetByID(ctx context.Context, id string) (domain.ContentItem, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanContentItem(row)
	if err != nil {
		return domain.ContentItem{}, mapNotFound(err)
	}
	return item, nil
}

func (r *contentRepo) Create(ctx context.Context, item domain.ContentItem) error {
	attrs, err := marshalJSON(item.Attrs)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO content_items (id, tenant_id, type, sort_order, attrs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TenantID, string(item.Type), item.SortOrder,
		mapNullString(attrs), now, now,
	)
	return mapConflict(err)
}

func (r *contentRepo) Update(ctx context.Context, item domain.ContentItem) error {
	attrs, err := marshalJSON(item.Attrs)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE content_items SET sort_order = ?, attrs = ?, updated_at = ?
		WHERE id = ?`,
		item.SortOrder, mapNullString(attrs), time.Now().UTC(), item.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *contentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *contentRepo) ListByType(ctx context.Context, tenantID string, t domain.ContentType) ([]domain.ContentItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_items
		 WHERE tenant_id = ? AND type = ?
		 ORDER BY sort_order ASC, created_at ASC`,
		tenantID, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *contentRepo) MaxSortOrder(ctx context.Context, tenantID string, t domain.ContentType) (int, error) {
	var max int
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) FROM content_items
		 WHERE tenant_id = ? AND type = ?`,
		tenantID, string(t)).Scan(&max)
	return max, err
}

func (r *contentRepo) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE content_items SET sort_order = ?, updated_at = ? WHERE id = ?`,
		sortOrder, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
