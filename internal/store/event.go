package store

import (
	"context"
	"fmt"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const (
	eventTableName            = "events"
	eventParticipantTableName = "event_participants"
	eventAssignmentTableName  = "event_contribution_assignments"
)

type EventRepository struct {
	db           DB
	events       *Table[types.Event]
	participants *Table[types.EventParticipant]
	assignments  *Table[types.EventAssignment]
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{
		db:           db,
		events:       NewTable[types.Event](db, eventTableName).Immutable("created_by").OrderBy("start_date DESC", "created_at DESC"),
		participants: NewTable[types.EventParticipant](db, eventParticipantTableName).Immutable("event_id", "user_id").OrderBy("created_at ASC"),
		assignments:  NewTable[types.EventAssignment](db, eventAssignmentTableName).Immutable("event_id", "user_id").OrderBy("created_at ASC"),
	}
}

func (r *EventRepository) Event(ctx context.Context, id string) (*types.Event, error) {
	return r.events.Get(ctx, id)
}

func (r *EventRepository) Events(ctx context.Context, filter types.EventFilter, page Page) ([]*types.Event, error) {
	where := sq.And{}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	where = dateRange(where, "start_date", filter.From, filter.To)
	where = search(where, filter.Search, "name", "description")

	return r.events.List(ctx, where, page)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *types.Event) (*types.Event, error) {
	if event.Status == "" {
		event.Status = types.EventStatusPlanned
	}
	return r.events.Create(ctx, event)
}

func (r *EventRepository) UpdateEvent(ctx context.Context, id string, changes types.Changes) (*types.Event, error) {
	return r.events.Update(ctx, id, changes)
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) (bool, error) {
	return r.events.Delete(ctx, id)
}

func (r *EventRepository) Participants(ctx context.Context, eventID string) ([]*types.EventParticipant, error) {
	return r.participants.List(ctx, sq.Eq{"event_id": eventID}, Page{})
}

func (r *EventRepository) Participant(ctx context.Context, eventID, userID string) (*types.EventParticipant, error) {
	return r.participants.FindOne(ctx, sq.Eq{"event_id": eventID, "user_id": userID})
}

// AddParticipant returns types.ErrConflict when the member already takes part.
func (r *EventRepository) AddParticipant(ctx context.Context, participant *types.EventParticipant) (*types.EventParticipant, error) {
	if participant.Status == "" {
		participant.Status = types.ParticipantStatusInvited
	}
	return r.participants.Create(ctx, participant)
}

func (r *EventRepository) UpdateParticipant(ctx context.Context, eventID, userID string, changes types.Changes) (*types.EventParticipant, error) {
	participant, err := r.Participant(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	return r.participants.Update(ctx, participant.ID, changes)
}

func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	removed, err := r.participants.DeleteWhere(ctx, sq.Eq{"event_id": eventID, "user_id": userID})
	return removed == 1, err
}

func (r *EventRepository) Assignments(ctx context.Context, eventID string) ([]*types.EventAssignment, error) {
	return r.assignments.List(ctx, sq.Eq{"event_id": eventID}, Page{})
}

// SetAssignment creates the member's assignment or replaces its amount.
func (r *EventRepository) SetAssignment(ctx context.Context, assignment *types.EventAssignment) (*types.EventAssignment, error) {
	return r.assignments.Upsert(ctx, assignment, []string{"event_id", "user_id"}, []string{"amount"})
}

func (r *EventRepository) RemoveAssignment(ctx context.Context, eventID, userID string) (bool, error) {
	removed, err := r.assignments.DeleteWhere(ctx, sq.Eq{"event_id": eventID, "user_id": userID})
	return removed == 1, err
}

func eventProgressQuery(eventID string) (string, []any, error) {
	return psql().
		Select().
		Column(sq.Alias(scalar("COALESCE(SUM(amount), 0)", eventAssignmentTableName, sq.Eq{"event_id": eventID}), "assigned_amount")).
		Column(sq.Alias(raisedFor(types.SourceTypeEvent, eventID), "raised_amount")).
		Column(sq.Alias(scalar("COUNT(*)", eventParticipantTableName, sq.Eq{"event_id": eventID}), "participants")).
		ToSql()
}

// Progress compares the event target with what was assigned and raised.
// Cancelled contributions do not count as raised.
func (r *EventRepository) Progress(ctx context.Context, eventID string) (*types.EventProgress, error) {
	event, err := r.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}

	progress := &types.EventProgress{
		EventID:      eventID,
		TargetAmount: event.TargetAmount,
	}

	query, args, err := eventProgressQuery(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate event progress query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).
		Scan(&progress.AssignedAmount, &progress.RaisedAmount, &progress.Participants)
	if err != nil {
		return nil, wrapErr(err, "failed to compute event progress")
	}

	return progress, nil
}
