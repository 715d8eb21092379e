package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"familyhub/pkg/types"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionProgressSQL = "SELECT " +
	"(SELECT COALESCE(SUM(monthly_amount), 0) FROM monthly_contribution_assignments WHERE session_id = $1) AS expected_monthly, " +
	"(SELECT COUNT(*) FROM monthly_contribution_assignments WHERE session_id = $2) AS members, " +
	"(SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE (source_id = $3 AND source_type = $4 AND status <> $5)) AS collected"

func TestSessionProgressQueryNumbersSubqueryArgs(t *testing.T) {
	query, args, err := sessionProgressQuery("s1")
	require.NoError(t, err)

	assert.Equal(t, sessionProgressSQL, query)
	assert.Equal(t, []any{"s1", "s1", "s1", types.SourceTypeMonthly, types.ContributionStatusCancelled}, args)
}

func TestEventProgressQueryNumbersSubqueryArgs(t *testing.T) {
	query, args, err := eventProgressQuery("e1")
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+
		"(SELECT COALESCE(SUM(amount), 0) FROM event_contribution_assignments WHERE event_id = $1) AS assigned_amount, "+
		"(SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE (source_id = $2 AND source_type = $3 AND status <> $4)) AS raised_amount, "+
		"(SELECT COUNT(*) FROM event_participants WHERE event_id = $5) AS participants", query)
	assert.Equal(t, []any{"e1", "e1", types.SourceTypeEvent, types.ContributionStatusCancelled, "e1"}, args)
}

func TestSessionProgressScalesByDuration(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSessionRepository(mock)
	now := time.Now()

	columns := []string{"id", "name", "description", "start_date", "monthly_target_amount", "duration_months", "payment_deadline_day", "status", "created_by", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM monthly_contribution_sessions WHERE id = \\$1").
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("s1", "Tontine", nil, types.NewDate(2024, 1, 1), dec("150"), 12, 5, types.SessionStatusActive, "treasurer", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(sessionProgressSQL)).
		WithArgs("s1", "s1", "s1", types.SourceTypeMonthly, types.ContributionStatusCancelled).
		WillReturnRows(pgxmock.NewRows([]string{"expected_monthly", "members", "collected"}).
			AddRow(dec("300"), int64(3), dec("1250.50")))

	progress, err := repo.Progress(context.Background(), "s1")
	require.NoError(t, err)

	assert.True(t, progress.ExpectedMonthly.Equal(dec("300")))
	assert.True(t, progress.ExpectedTotal.Equal(dec("3600")), progress.ExpectedTotal.String())
	assert.True(t, progress.Collected.Equal(dec("1250.5")))
	assert.Equal(t, int64(3), progress.Members)

	require.NoError(t, mock.ExpectationsWereMet())
}
