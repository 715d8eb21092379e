package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// Table is the CRUD engine shared by every repository. T is a struct whose db
// tags name the table's columns; id, created_at and updated_at are managed here.
type Table[T any] struct {
	db        DB
	name      string
	columns   []string
	updatable map[string]bool // column -> nullable
	orderBy   []string
	now       func() time.Time
}

func NewTable[T any](db DB, name string) *Table[T] {
	t := &Table[T]{
		db:        db,
		name:      name,
		updatable: make(map[string]bool),
		orderBy:   []string{"created_at DESC"},
		now:       nowUTC,
	}

	for _, c := range utils.StructColumns(new(T)) {
		t.columns = append(t.columns, c.Name)

		switch c.Name {
		case "id", "created_at", "updated_at":
			continue
		}
		t.updatable[c.Name] = c.Nullable
	}

	return t
}

// Immutable removes columns from the update whitelist.
func (t *Table[T]) Immutable(columns ...string) *Table[T] {
	for _, c := range columns {
		delete(t.updatable, c)
	}
	return t
}

func (t *Table[T]) OrderBy(clauses ...string) *Table[T] {
	t.orderBy = clauses
	return t
}

// WithDB returns a copy of the table bound to db, usually a transaction.
func (t *Table[T]) WithDB(db DB) *Table[T] {
	c := *t
	c.db = db
	return &c
}

func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) Columns() []string {
	return t.columns
}

func (t *Table[T]) returning() string {
	return "RETURNING " + strings.Join(t.columns, ", ")
}

// insertValues maps a record to column values, replacing any caller supplied
// id and timestamps.
func (t *Table[T]) insertValues(record *T) map[string]any {
	values := utils.StructToMap(record)

	now := t.now()
	values["id"] = utils.NanoID()
	values["created_at"] = now
	if _, ok := values["updated_at"]; ok {
		values["updated_at"] = now
	}

	return values
}

func (t *Table[T]) Create(ctx context.Context, record *T) (*T, error) {
	query, args, err := psql().
		Insert(t.name).
		SetMap(t.insertValues(record)).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert %s query: %w", t.name, err)
	}

	var out = new(T)
	err = pgxscan.Get(ctx, t.db, out, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to insert into "+t.name)
	}

	return out, nil
}

// Upsert inserts record or, when a row with the same conflict columns exists,
// overwrites the listed columns and bumps updated_at. The original id and
// created_at are kept.
func (t *Table[T]) Upsert(ctx context.Context, record *T, conflict []string, overwrite []string) (*T, error) {
	assignments := make([]string, 0, len(overwrite)+1)
	for _, c := range overwrite {
		assignments = append(assignments, c+" = EXCLUDED."+c)
	}
	assignments = append(assignments, "updated_at = EXCLUDED.updated_at")

	query, args, err := psql().
		Insert(t.name).
		SetMap(t.insertValues(record)).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%s) DO UPDATE SET %s %s",
			strings.Join(conflict, ", "),
			strings.Join(assignments, ", "),
			t.returning(),
		)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate upsert %s query: %w", t.name, err)
	}

	var out = new(T)
	err = pgxscan.Get(ctx, t.db, out, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to upsert into "+t.name)
	}

	return out, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	return t.FindOne(ctx, sq.Eq{"id": id})
}

// FindOne returns the first row matching where, or types.ErrNotFound.
func (t *Table[T]) FindOne(ctx context.Context, where sq.Sqlizer) (*T, error) {
	query, args, err := psql().
		Select(t.columns...).
		From(t.name).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s query: %w", t.name, err)
	}

	var out = new(T)
	err = pgxscan.Get(ctx, t.db, out, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to fetch from "+t.name)
	}

	return out, nil
}

// List returns the rows matching where (nil for all rows) in the table's order.
func (t *Table[T]) List(ctx context.Context, where sq.Sqlizer, page Page) ([]*T, error) {
	builder := psql().
		Select(t.columns...).
		From(t.name).
		OrderBy(t.orderBy...)
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := page.apply(builder).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s list query: %w", t.name, err)
	}

	var out = make([]*T, 0)
	err = pgxscan.Select(ctx, t.db, &out, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list "+t.name)
	}

	return out, nil
}

// Update applies changes to the row and returns it. When no change survives
// the column whitelist the stored row is returned without issuing a write.
func (t *Table[T]) Update(ctx context.Context, id string, changes types.Changes) (*T, error) {
	eligible, err := t.eligible(changes)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		return t.Get(ctx, id)
	}

	query, args, err := updateQuery(t.name, t.columns, id, eligible, t.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate update %s query for %s: %w", t.name, id, err)
	}

	var out = new(T)
	err = pgxscan.Get(ctx, t.db, out, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to update "+t.name)
	}

	return out, nil
}

// eligible drops columns that are not updatable and rejects nulls for
// columns that cannot hold them. Order is preserved.
func (t *Table[T]) eligible(changes types.Changes) (types.Changes, error) {
	out := make(types.Changes, 0, len(changes))
	var verr *types.ValidationError

	for _, c := range changes {
		nullable, ok := t.updatable[c.Column]
		if !ok {
			continue
		}

		if c.Value == nil && !nullable {
			if verr == nil {
				verr = &types.ValidationError{}
			}
			verr.Add(c.Column, "cannot be null")
			continue
		}

		out = append(out, c)
	}

	if verr != nil {
		return nil, verr
	}

	return out, nil
}

// updateQuery builds "UPDATE table SET c1 = $1, ..., updated_at = $n WHERE id = $n+1".
// Arguments are bound in the same order the assignments are written.
func updateQuery(table string, returning []string, id string, changes types.Changes, now time.Time) (string, []any, error) {
	builder := psql().Update(table)
	for _, c := range changes {
		builder = builder.Set(c.Column, c.Value)
	}

	return builder.
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(returning, ", ")).
		ToSql()
}

// Delete reports whether exactly one row was removed.
func (t *Table[T]) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := t.DeleteWhere(ctx, sq.Eq{"id": id})
	if err != nil {
		return false, err
	}
	return removed == 1, nil
}

func (t *Table[T]) DeleteWhere(ctx context.Context, where sq.Sqlizer) (int64, error) {
	query, args, err := psql().
		Delete(t.name).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete %s query: %w", t.name, err)
	}

	tag, err := t.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrapErr(err, "failed to delete from "+t.name)
	}

	return tag.RowsAffected(), nil
}
