package store

import (
	"context"
	"fmt"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"
)

const contributionTableName = "contributions"

type ContributionRepository struct {
	db    DB
	table *Table[types.Contribution]
}

func NewContributionRepository(db DB) *ContributionRepository {
	return &ContributionRepository{
		db: db,
		table: NewTable[types.Contribution](db, contributionTableName).
			Immutable("created_by").
			OrderBy("payment_date DESC", "created_at DESC"),
	}
}

func (r *ContributionRepository) detailQuery() sq.SelectBuilder {
	columns := append(utils.PrefixColumns("c", r.table.Columns()), "p.full_name AS member_name")
	return psql().
		Select(columns...).
		From(contributionTableName + " c").
		LeftJoin(memberTableName + " p ON p.id = c.user_id")
}

// raisedFor sums the contributions made toward a source, leaving out
// cancelled ones.
func raisedFor(sourceType types.SourceType, sourceID string) sq.SelectBuilder {
	return scalar("COALESCE(SUM(amount), 0)", contributionTableName, sq.And{
		sq.Eq{"source_type": sourceType, "source_id": sourceID},
		sq.NotEq{"status": types.ContributionStatusCancelled},
	})
}

func contributionWhere(prefix string, filter types.ContributionFilter) sq.And {
	col := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	where := sq.And{}
	if filter.UserID != "" {
		where = append(where, sq.Eq{col("user_id"): filter.UserID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{col("status"): filter.Status})
	}
	if filter.SourceType != "" {
		where = append(where, sq.Eq{col("source_type"): filter.SourceType})
	}
	if filter.SourceID != "" {
		where = append(where, sq.Eq{col("source_id"): filter.SourceID})
	}

	return dateRange(where, col("payment_date"), filter.From, filter.To)
}

func (r *ContributionRepository) Contribution(ctx context.Context, id string) (*types.ContributionDetail, error) {
	query, args, err := r.detailQuery().
		Where(sq.Eq{"c.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contribution query: %w", err)
	}

	var contribution = new(types.ContributionDetail)
	err = pgxscan.Get(ctx, r.db, contribution, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to fetch contribution")
	}

	return contribution, nil
}

func (r *ContributionRepository) Contributions(ctx context.Context, filter types.ContributionFilter, page Page) ([]*types.ContributionDetail, error) {
	builder := r.detailQuery().
		Where(contributionWhere("c", filter)).
		OrderBy("c.payment_date DESC", "c.created_at DESC")

	query, args, err := page.apply(builder).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contributions query: %w", err)
	}

	var contributions = make([]*types.ContributionDetail, 0)
	err = pgxscan.Select(ctx, r.db, &contributions, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list contributions")
	}

	return contributions, nil
}

func (r *ContributionRepository) CreateContribution(ctx context.Context, contribution *types.Contribution) (*types.Contribution, error) {
	if contribution.Status == "" {
		contribution.Status = types.ContributionStatusCompleted
	}
	return r.table.Create(ctx, contribution)
}

func (r *ContributionRepository) UpdateContribution(ctx context.Context, id string, changes types.Changes) (*types.Contribution, error) {
	return r.table.Update(ctx, id, changes)
}

func (r *ContributionRepository) DeleteContribution(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

// CollectedForSource sums non-cancelled contributions booked against a source.
func (r *ContributionRepository) CollectedForSource(ctx context.Context, sourceType types.SourceType, sourceID string) (decimal.Decimal, error) {
	query, args, err := psql().
		Select("COALESCE(SUM(amount), 0)").
		From(contributionTableName).
		Where(sq.Eq{"source_type": sourceType, "source_id": sourceID}).
		Where(sq.NotEq{"status": types.ContributionStatusCancelled}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to generate collected query: %w", err)
	}

	var total decimal.Decimal
	err = r.db.QueryRow(ctx, query, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr(err, "failed to sum contributions for "+sourceID)
	}

	return total, nil
}

type summaryRow struct {
	SourceType types.SourceType         `db:"source_type"`
	Status     types.ContributionStatus `db:"status"`
	Period     string                   `db:"period"`
	Total      decimal.Decimal          `db:"total"`
	Count      int64                    `db:"count"`
}

func (r *ContributionRepository) Summary(ctx context.Context, filter types.ContributionFilter) (*types.FinancialSummary, error) {
	query, args, err := psql().
		Select(
			"source_type",
			"status",
			"to_char(date_trunc('month', payment_date), 'YYYY-MM') AS period",
			"COALESCE(SUM(amount), 0) AS total",
			"COUNT(*) AS count",
		).
		From(contributionTableName).
		Where(contributionWhere("", filter)).
		GroupBy("source_type", "status", "period").
		OrderBy("period ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contribution summary query: %w", err)
	}

	var rows = make([]*summaryRow, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to summarize contributions")
	}

	return summarize(rows), nil
}

// summarize folds grouped totals into a FinancialSummary. Cancelled amounts
// only ever land in the cancelled buckets.
func summarize(rows []*summaryRow) *types.FinancialSummary {
	summary := &types.FinancialSummary{
		TotalContributions: decimal.Zero,
		TotalCompleted:     decimal.Zero,
		TotalPending:       decimal.Zero,
		TotalRefunded:      decimal.Zero,
		TotalCancelled:     decimal.Zero,
		BySource:           make(map[types.SourceType]types.SourceSummary),
		ByMonth:            make([]types.PeriodSummary, 0),
	}

	months := make(map[string]int)

	for _, row := range rows {
		summary.Count += row.Count

		source := summary.BySource[row.SourceType]
		source.Count += row.Count

		idx, ok := months[row.Period]
		if !ok {
			idx = len(summary.ByMonth)
			months[row.Period] = idx
			summary.ByMonth = append(summary.ByMonth, types.PeriodSummary{Period: row.Period})
		}
		month := &summary.ByMonth[idx]
		month.Count += row.Count

		if row.Status == types.ContributionStatusCancelled {
			summary.TotalCancelled = summary.TotalCancelled.Add(row.Total)
			source.TotalCancelled = source.TotalCancelled.Add(row.Total)
			month.TotalCancelled = month.TotalCancelled.Add(row.Total)
			summary.BySource[row.SourceType] = source
			continue
		}

		summary.TotalContributions = summary.TotalContributions.Add(row.Total)
		source.Total = source.Total.Add(row.Total)
		month.Total = month.Total.Add(row.Total)
		summary.BySource[row.SourceType] = source

		switch row.Status {
		case types.ContributionStatusCompleted:
			summary.TotalCompleted = summary.TotalCompleted.Add(row.Total)
		case types.ContributionStatusPending:
			summary.TotalPending = summary.TotalPending.Add(row.Total)
		case types.ContributionStatusRefunded:
			summary.TotalRefunded = summary.TotalRefunded.Add(row.Total)
		}
	}

	return summary
}
