package server

import (
	"context"
	"net/http"
	"testing"

	"familyhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	EventStore

	current *types.Event
	updated []types.Changes
	created []*types.Event
}

func (f *fakeEvents) Event(_ context.Context, id string) (*types.Event, error) {
	if f.current == nil || f.current.ID != id {
		return nil, types.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeEvents) CreateEvent(_ context.Context, event *types.Event) (*types.Event, error) {
	event.ID = "event-new"
	f.created = append(f.created, event)
	return event, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, id string, changes types.Changes) (*types.Event, error) {
	f.updated = append(f.updated, changes)
	return f.Event(context.Background(), id)
}

func newEventHarness(t *testing.T) (*harness, *fakeEvents) {
	end := types.NewDate(2024, 8, 3)
	events := &fakeEvents{current: &types.Event{
		ID:        "event-1",
		Name:      "Family reunion",
		StartDate: types.NewDate(2024, 8, 1),
		EndDate:   &end,
		Status:    types.EventStatusPlanned,
		CreatedBy: "secretary",
	}}
	return newHarness(t, Deps{Events: events}), events
}

func TestEmptyEventPatchRecordsNoop(t *testing.T) {
	h, events := newEventHarness(t)

	rec := h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, events.updated, 1)
	assert.Empty(t, events.updated[0])

	entry := h.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, types.AuditUpdate, entry.Action)
	assert.Equal(t, map[string]any{"noop": true}, entry.Details)
	assert.Equal(t, "event-1", targetOf(entry))
}

func TestEventPatchChecksStoredDates(t *testing.T) {
	h, events := newEventHarness(t)

	// end before the stored start
	rec := h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{"end_date": "2024-07-30"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "end_date")

	// start moved after the stored end
	rec = h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{"start_date": "2024-08-05"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// clearing the end date lifts the constraint
	rec = h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{"start_date": "2024-08-05", "end_date": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, events.updated, 1)
	assert.ElementsMatch(t, []string{"start_date", "end_date"}, events.updated[0].Columns())
}

func TestCreateEvent(t *testing.T) {
	h, events := newEventHarness(t)

	input := map[string]any{
		"name":          "Wedding",
		"start_date":    "2024-09-14",
		"end_date":      "2024-09-13",
		"target_amount": "2500",
	}

	rec := h.do(http.MethodPost, "/api/events", "secretary", input)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	input["end_date"] = "2024-09-15"
	rec = h.do(http.MethodPost, "/api/events", "alice", input)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/api/events", "treasurer", input)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, events.created, 1)
	assert.Equal(t, "treasurer", events.created[0].CreatedBy)
	require.NotNil(t, events.created[0].TargetAmount)
	assert.Equal(t, "2500", events.created[0].TargetAmount.String())
}

func TestEventPatchRejectsZeroTarget(t *testing.T) {
	h, events := newEventHarness(t)

	rec := h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{"target_amount": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "target_amount")

	assert.Empty(t, events.updated)
	assert.Empty(t, h.audit.actions())

	// null clears the target
	rec = h.do(http.MethodPatch, "/api/events/event-1", "secretary", map[string]any{"target_amount": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, events.updated, 1)
	assert.Equal(t, []string{"target_amount"}, events.updated[0].Columns())
}
