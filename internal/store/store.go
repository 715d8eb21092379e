package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgNotNullViolation    = "23502"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// scalar builds a single value subquery. It keeps "?" placeholders so the
// enclosing psql() statement numbers every argument once.
func scalar(expr, from string, where sq.Sqlizer) sq.SelectBuilder {
	return sq.Select(expr).From(from).Where(where)
}

// Page limits a listing. A zero Limit returns every row.
type Page struct {
	Limit  uint64 `form:"limit"`
	Offset uint64 `form:"offset"`
}

func (p Page) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if p.Limit > 0 {
		b = b.Limit(p.Limit)
	}
	if p.Offset > 0 {
		b = b.Offset(p.Offset)
	}
	return b
}

// wrapErr maps driver errors onto the sentinel errors in types.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
		return types.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", msg, types.ErrConflict)
		case pgForeignKeyViolation:
			return types.NewValidationError(constraintField(pgErr), "conflicts with a related record")
		case pgCheckViolation:
			return types.NewValidationError(constraintField(pgErr), "value is out of range")
		case pgNotNullViolation:
			return types.NewValidationError(constraintField(pgErr), "is required")
		}
	}

	return utils.ErrorWrapOrNil(err, msg)
}

// constraintField turns "contributions_user_id_fkey" into "user_id" when the
// constraint follows the default naming scheme.
func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}

	name := strings.TrimPrefix(pgErr.ConstraintName, pgErr.TableName+"_")
	for _, suffix := range []string{"_fkey", "_check"} {
		name = strings.TrimSuffix(name, suffix)
	}
	if name == "" {
		return "record"
	}
	return name
}

// dateRange adds an inclusive range on a date column.
func dateRange(where sq.And, column string, from, to *types.Date) sq.And {
	if from != nil && !from.IsZero() {
		where = append(where, sq.GtOrEq{column: *from})
	}
	if to != nil && !to.IsZero() {
		where = append(where, sq.LtOrEq{column: *to})
	}
	return where
}

// search matches term case-insensitively against any of the columns.
func search(where sq.And, term string, columns ...string) sq.And {
	term = strings.TrimSpace(term)
	if term == "" {
		return where
	}

	pattern := "%" + escapeLike(term) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.ILike{c: pattern})
	}
	return append(where, or)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
