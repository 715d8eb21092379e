package store

import (
	"context"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const auditTableName = "audit_logs"

// AuditRepository is append only.
type AuditRepository struct {
	table *Table[types.AuditEntry]
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{
		table: NewTable[types.AuditEntry](db, auditTableName),
	}
}

func (r *AuditRepository) InsertAuditEntry(ctx context.Context, entry *types.AuditEntry) (*types.AuditEntry, error) {
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	return r.table.Create(ctx, entry)
}

func (r *AuditRepository) AuditEntries(ctx context.Context, filter types.AuditFilter, page Page) ([]*types.AuditEntry, error) {
	where := sq.And{}
	if filter.ActorID != "" {
		where = append(where, sq.Eq{"actor_id": filter.ActorID})
	}
	if filter.TargetID != "" {
		where = append(where, sq.Eq{"target_id": filter.TargetID})
	}
	if filter.TargetType != "" {
		where = append(where, sq.Eq{"target_type": filter.TargetType})
	}
	if filter.Action != "" {
		where = append(where, sq.Eq{"action": filter.Action})
	}
	if filter.From != nil && !filter.From.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": filter.From.Time})
	}
	if filter.To != nil && !filter.To.IsZero() {
		where = append(where, sq.Lt{"created_at": filter.To.AddDate(0, 0, 1)})
	}

	return r.table.List(ctx, where, page)
}
