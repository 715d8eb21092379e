package server

import (
	"net/http"

	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

func (s *Service) handleListSessions(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.SessionFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sessions, err := s.deps.Sessions.Sessions(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, sessions)
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.deps.Sessions.Session(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.MonthlySessionInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entitySessions); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.deps.Sessions.CreateSession(r.Context(), &types.MonthlySession{
		Name:                input.Name,
		Description:         utils.NullableString(input.Description),
		StartDate:           input.StartDate,
		MonthlyTargetAmount: input.MonthlyTargetAmount,
		DurationMonths:      input.DurationMonths,
		PaymentDeadlineDay:  input.PaymentDeadlineDay,
		Status:              input.Status,
		CreatedBy:           actor.UserID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetSession, session.ID, map[string]any{
		"name":                  session.Name,
		"monthly_target_amount": session.MonthlyTargetAmount.String(),
	})

	writeJSON(w, http.StatusCreated, session)
}

func (s *Service) handleUpdateSession(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.MonthlySessionPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entitySessions); err != nil {
		s.writeError(w, r, err)
		return
	}

	changes := utils.ChangesFromPatch(patch)

	session, err := s.deps.Sessions.UpdateSession(r.Context(), id, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetSession, session.ID, changes)

	writeJSON(w, http.StatusOK, session)
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entitySessions); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Sessions.DeleteSession(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetSession, id, nil)

	noContent(w)
}

func (s *Service) handleSessionProgress(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	progress, err := s.deps.Sessions.Progress(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (s *Service) handleListSessionAssignments(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assignments, err := s.deps.Sessions.Assignments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, assignments)
}

func (s *Service) handleSetSessionAssignment(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var input types.SessionAssignmentInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entitySessions); err != nil {
		s.writeError(w, r, err)
		return
	}

	assignment, err := s.deps.Sessions.SetAssignment(r.Context(), &types.SessionAssignment{
		SessionID:     sessionID,
		UserID:        input.UserID,
		MonthlyAmount: input.MonthlyAmount,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditAssign, actor, targetSessionAssign, assignment.ID, map[string]any{
		"session_id":     sessionID,
		"user_id":        assignment.UserID,
		"monthly_amount": assignment.MonthlyAmount.String(),
	})

	writeJSON(w, http.StatusOK, assignment)
}

func (s *Service) handleRemoveSessionAssignment(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entitySessions); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Sessions.RemoveAssignment(r.Context(), sessionID, userID)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditUnassign, actor, targetSessionAssign, sessionID, map[string]any{"user_id": userID})

	noContent(w)
}
