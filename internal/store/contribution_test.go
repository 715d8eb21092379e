package store

import (
	"context"
	"regexp"
	"testing"

	"familyhub/pkg/types"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarizeExcludesCancelledFromTotal(t *testing.T) {
	rows := []*summaryRow{
		{SourceType: types.SourceTypeMonthly, Status: types.ContributionStatusCompleted, Period: "2024-01", Total: dec("100"), Count: 1},
		{SourceType: types.SourceTypeMonthly, Status: types.ContributionStatusCancelled, Period: "2024-01", Total: dec("50"), Count: 1},
		{SourceType: types.SourceTypeEvent, Status: types.ContributionStatusPending, Period: "2024-02", Total: dec("25"), Count: 1},
	}

	summary := summarize(rows)

	assert.True(t, summary.TotalContributions.Equal(dec("125")), summary.TotalContributions.String())
	assert.True(t, summary.TotalCancelled.Equal(dec("50")))
	assert.True(t, summary.TotalPending.Equal(dec("25")))
	assert.True(t, summary.TotalCompleted.Equal(dec("100")))
	assert.True(t, summary.TotalRefunded.IsZero())
	assert.Equal(t, int64(3), summary.Count)

	monthly := summary.BySource[types.SourceTypeMonthly]
	assert.True(t, monthly.Total.Equal(dec("100")))
	assert.True(t, monthly.TotalCancelled.Equal(dec("50")))
	assert.Equal(t, int64(2), monthly.Count)

	require.Len(t, summary.ByMonth, 2)
	assert.Equal(t, "2024-01", summary.ByMonth[0].Period)
	assert.True(t, summary.ByMonth[0].Total.Equal(dec("100")))
	assert.True(t, summary.ByMonth[0].TotalCancelled.Equal(dec("50")))
	assert.Equal(t, "2024-02", summary.ByMonth[1].Period)
}

func TestSummarizeRefundedCountsTowardTotal(t *testing.T) {
	summary := summarize([]*summaryRow{
		{SourceType: types.SourceTypeOther, Status: types.ContributionStatusRefunded, Period: "2024-05", Total: dec("30.50"), Count: 2},
	})

	assert.True(t, summary.TotalContributions.Equal(dec("30.5")))
	assert.True(t, summary.TotalRefunded.Equal(dec("30.5")))
	assert.True(t, summary.TotalCancelled.IsZero())
}

func TestSummarizeEmpty(t *testing.T) {
	summary := summarize(nil)

	assert.True(t, summary.TotalContributions.IsZero())
	assert.Empty(t, summary.BySource)
	assert.NotNil(t, summary.ByMonth)
}

func TestContributionSummaryQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewContributionRepository(mock)

	columns := []string{"source_type", "status", "period", "total", "count"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM contributions WHERE (user_id = $1) GROUP BY source_type, status, period ORDER BY period ASC")).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(types.SourceTypeMonthly, types.ContributionStatusCompleted, "2024-01", dec("100"), int64(1)).
			AddRow(types.SourceTypeMonthly, types.ContributionStatusCancelled, "2024-01", dec("50"), int64(1)).
			AddRow(types.SourceTypeMonthly, types.ContributionStatusPending, "2024-01", dec("25"), int64(1)))

	summary, err := repo.Summary(context.Background(), types.ContributionFilter{UserID: "m1"})
	require.NoError(t, err)

	assert.True(t, summary.TotalContributions.Equal(dec("125")))
	assert.True(t, summary.TotalCancelled.Equal(dec("50")))
	assert.True(t, summary.TotalPending.Equal(dec("25")))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContributionWhereIsConjunctive(t *testing.T) {
	from := types.NewDate(2024, 1, 1)
	where := contributionWhere("c", types.ContributionFilter{
		UserID:     "m1",
		SourceType: types.SourceTypeEvent,
		SourceID:   "e1",
		From:       &from,
	})

	query, args, err := where.ToSql()
	require.NoError(t, err)

	assert.Equal(t, "(c.user_id = ? AND c.source_type = ? AND c.source_id = ? AND c.payment_date >= ?)", query)
	assert.Equal(t, []any{"m1", types.SourceTypeEvent, "e1", from.Time}, args)
}
