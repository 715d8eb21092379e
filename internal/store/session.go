package store

import (
	"context"
	"fmt"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

const (
	sessionTableName           = "monthly_contribution_sessions"
	sessionAssignmentTableName = "monthly_contribution_assignments"
)

type SessionRepository struct {
	db          DB
	sessions    *Table[types.MonthlySession]
	assignments *Table[types.SessionAssignment]
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{
		db:          db,
		sessions:    NewTable[types.MonthlySession](db, sessionTableName).Immutable("created_by").OrderBy("start_date DESC", "created_at DESC"),
		assignments: NewTable[types.SessionAssignment](db, sessionAssignmentTableName).Immutable("session_id", "user_id").OrderBy("created_at ASC"),
	}
}

func (r *SessionRepository) Session(ctx context.Context, id string) (*types.MonthlySession, error) {
	return r.sessions.Get(ctx, id)
}

func (r *SessionRepository) Sessions(ctx context.Context, filter types.SessionFilter, page Page) ([]*types.MonthlySession, error) {
	where := sq.And{}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	where = search(where, filter.Search, "name", "description")

	return r.sessions.List(ctx, where, page)
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *types.MonthlySession) (*types.MonthlySession, error) {
	if session.Status == "" {
		session.Status = types.SessionStatusActive
	}
	return r.sessions.Create(ctx, session)
}

func (r *SessionRepository) UpdateSession(ctx context.Context, id string, changes types.Changes) (*types.MonthlySession, error) {
	return r.sessions.Update(ctx, id, changes)
}

func (r *SessionRepository) DeleteSession(ctx context.Context, id string) (bool, error) {
	return r.sessions.Delete(ctx, id)
}

func (r *SessionRepository) Assignments(ctx context.Context, sessionID string) ([]*types.SessionAssignment, error) {
	return r.assignments.List(ctx, sq.Eq{"session_id": sessionID}, Page{})
}

// SetAssignment creates the member's monthly amount or replaces it.
func (r *SessionRepository) SetAssignment(ctx context.Context, assignment *types.SessionAssignment) (*types.SessionAssignment, error) {
	return r.assignments.Upsert(ctx, assignment, []string{"session_id", "user_id"}, []string{"monthly_amount"})
}

func (r *SessionRepository) RemoveAssignment(ctx context.Context, sessionID, userID string) (bool, error) {
	removed, err := r.assignments.DeleteWhere(ctx, sq.Eq{"session_id": sessionID, "user_id": userID})
	return removed == 1, err
}

func sessionProgressQuery(sessionID string) (string, []any, error) {
	assigned := sq.Eq{"session_id": sessionID}

	return psql().
		Select().
		Column(sq.Alias(scalar("COALESCE(SUM(monthly_amount), 0)", sessionAssignmentTableName, assigned), "expected_monthly")).
		Column(sq.Alias(scalar("COUNT(*)", sessionAssignmentTableName, assigned), "members")).
		Column(sq.Alias(raisedFor(types.SourceTypeMonthly, sessionID), "collected")).
		ToSql()
}

// Progress compares what assigned members owe over the whole session with the
// monthly contributions collected so far.
func (r *SessionRepository) Progress(ctx context.Context, sessionID string) (*types.SessionProgress, error) {
	session, err := r.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query, args, err := sessionProgressQuery(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session progress query: %w", err)
	}

	progress := &types.SessionProgress{SessionID: sessionID}

	err = r.db.QueryRow(ctx, query, args...).
		Scan(&progress.ExpectedMonthly, &progress.Members, &progress.Collected)
	if err != nil {
		return nil, wrapErr(err, "failed to compute session progress")
	}

	progress.ExpectedTotal = progress.ExpectedMonthly.Mul(decimal.NewFromInt(int64(session.DurationMonths)))

	return progress, nil
}
