package server

import (
	"net/http"

	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

func checkEventDates(start types.Date, end *types.Date) error {
	if end != nil && !end.IsZero() && end.Before(start.Time) {
		return types.NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}

func (s *Service) handleListEvents(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.EventFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.deps.Events.Events(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, events)
}

func (s *Service) handleGetEvent(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	event, err := s.deps.Events.Event(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.EventInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkEventDates(input.StartDate, input.EndDate); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	event, err := s.deps.Events.CreateEvent(r.Context(), &types.Event{
		Name:         input.Name,
		Description:  utils.NullableString(input.Description),
		Location:     utils.NullableString(input.Location),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		TargetAmount: input.TargetAmount,
		Status:       input.Status,
		CreatedBy:    actor.UserID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetEvent, event.ID, map[string]any{"name": event.Name})

	writeJSON(w, http.StatusCreated, event)
}

func (s *Service) handleUpdateEvent(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.EventPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	// the date range can only be checked against the stored row
	if (patch.StartDate.IsSet() && !patch.StartDate.IsNull()) || (patch.EndDate.IsSet() && !patch.EndDate.IsNull()) {
		current, err := s.deps.Events.Event(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		start, end := current.StartDate, current.EndDate
		if patch.StartDate.IsSet() && !patch.StartDate.IsNull() {
			start = patch.StartDate.Value
		}
		if patch.EndDate.IsSet() {
			end = nil
			if !patch.EndDate.IsNull() {
				end = &patch.EndDate.Value
			}
		}
		if err := checkEventDates(start, end); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	changes := utils.ChangesFromPatch(patch)

	event, err := s.deps.Events.UpdateEvent(r.Context(), id, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetEvent, event.ID, changes)

	writeJSON(w, http.StatusOK, event)
}

func (s *Service) handleDeleteEvent(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Events.DeleteEvent(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetEvent, id, nil)

	noContent(w)
}

func (s *Service) handleEventProgress(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	progress, err := s.deps.Events.Progress(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (s *Service) handleListParticipants(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	participants, err := s.deps.Events.Participants(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, participants)
}

func (s *Service) handleAddParticipant(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var input types.ParticipantInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	participant, err := s.deps.Events.AddParticipant(r.Context(), &types.EventParticipant{
		EventID: eventID,
		UserID:  input.UserID,
		Status:  input.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetParticipant, participant.ID, map[string]any{
		"event_id": eventID,
		"user_id":  participant.UserID,
	})

	writeJSON(w, http.StatusCreated, participant)
}

// handleUpdateParticipant lets a member answer their own invitation.
func (s *Service) handleUpdateParticipant(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.ParticipantPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if userID != actor.UserID {
		if err := s.policy.Authorize(actor, entityEvents); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	changes := utils.ChangesFromPatch(patch)

	participant, err := s.deps.Events.UpdateParticipant(r.Context(), eventID, userID, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetParticipant, participant.ID, changes)

	writeJSON(w, http.StatusOK, participant)
}

func (s *Service) handleRemoveParticipant(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Events.RemoveParticipant(r.Context(), eventID, userID)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetParticipant, eventID, map[string]any{"user_id": userID})

	noContent(w)
}

func (s *Service) handleListEventAssignments(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assignments, err := s.deps.Events.Assignments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, assignments)
}

func (s *Service) handleSetEventAssignment(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var input types.EventAssignmentInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	assignment, err := s.deps.Events.SetAssignment(r.Context(), &types.EventAssignment{
		EventID: eventID,
		UserID:  input.UserID,
		Amount:  input.Amount,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditAssign, actor, targetEventAssign, assignment.ID, map[string]any{
		"event_id": eventID,
		"user_id":  assignment.UserID,
		"amount":   assignment.Amount.String(),
	})

	writeJSON(w, http.StatusOK, assignment)
}

func (s *Service) handleRemoveEventAssignment(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	eventID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityEvents); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Events.RemoveAssignment(r.Context(), eventID, userID)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditUnassign, actor, targetEventAssign, eventID, map[string]any{"user_id": userID})

	noContent(w)
}
