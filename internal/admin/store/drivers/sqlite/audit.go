package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
)

type auditRepo struct {
	q querier
}

const auditColumns = `id, tenant_id, actor_id, action, entity_type, entity_id,
	old_value, new_value, changes, metadata, ip_address, user_agent, created_at`

func scanAuditEntry(row interface{ Scan(...any) error }) (domain.AuditEntry, error) {
	var (
		e        domain.AuditEntry
		action   string
		oldVal   sql.NullString
		newVal   sql.NullString
		changes  sql.NullString
		metadata sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.TenantID, &e.ActorID, &action, &e.EntityType, &e.EntityID,
		&oldVal, &newVal, &changes, &metadata, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	)
	if err != nil {
		return domain.AuditEntry{}, err
	}

	e.Action = domain.Action(action)
	if e.OldValue, err = unmarshalJSON(oldVal); err != nil {
		return domain.AuditEntry{}, err
	}
	if e.NewValue, err = unmarshalJSON(newVal); err != nil {
		return domain.AuditEntry{}, err
	}
	if e.Changes, err = unmarshalChanges(changes); err != nil {
		return domain.AuditEntry{}, err
	}
	if e.Metadata, err = unmarshalJSON(metadata); err != nil {
		return domain.AuditEntry{}, err
	}
	return e, nil
}

func (r *auditRepo) Insert(ctx context.Context, e domain.AuditEntry) error {
	oldVal, err := marshalJSON(e.OldValue)
	if err != nil {
		return err
	}
	newVal, err := marshalJSON(e.NewValue)
	if err != nil {
		return err
	}
	changes, err := marshalChanges(e.Changes)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(e.Metadata)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO audit_log (id, tenant_id, actor_id, action, entity_type, entity_id,
			old_value, new_value, changes, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.ActorID, string(e.Action), e.EntityType, e.EntityID,
		oldVal, newVal, changes, metadata, e.IPAddress, e.UserAgent, e.CreatedAt.UTC(),
	)
	return err
}

func (r *auditRepo) GetByID(ctx context.Context, id string) (domain.AuditEntry, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE id = ?`, id)
	e, err := scanAuditEntry(row)
	if err != nil {
		return domain.AuditEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *auditRepo) List(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + auditColumns + ` FROM audit_log WHERE 1=1`)

	if f.TenantID != "" {
		sb.WriteString(` AND tenant_id = ?`)
		args = append(args, f.TenantID)
	}
	if f.ActorID != "" {
		sb.WriteString(` AND actor_id = ?`)
		args = append(args, f.ActorID)
	}
	if f.EntityType != "" {
		sb.WriteString(` AND entity_type = ?`)
		args = append(args, f.EntityType)
	}
	if f.EntityID != "" {
		sb.WriteString(` AND entity_id = ?`)
		args = append(args, f.EntityID)
	}
	if f.Action != "" {
		sb.WriteString(` AND action = ?`)
		args = append(args, string(f.Action))
	}
	if f.From != nil {
		sb.WriteString(` AND created_at >= ?`)
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		sb.WriteString(` AND created_at <= ?`)
		args = append(args, f.To.UTC())
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ` + strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		sb.WriteString(` OFFSET ` + strconv.Itoa(f.Offset))
	}

	rows, err := r.q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func marshalChanges(m map[string]domain.FieldChange) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalChanges(ns sql.NullString) (map[string]domain.FieldChange, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m map[string]domain.FieldChange
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}
