package server

import (
	"net/http"
	"strings"

	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

func (s *Service) handleListMembers(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.MemberFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	members, err := s.deps.Members.Members(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, members)
}

func (s *Service) handleGetMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	member, err := s.deps.Members.Member(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (s *Service) handleCreateMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.MemberInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityMembers); err != nil {
		s.writeError(w, r, err)
		return
	}

	member, err := s.deps.Members.CreateMember(r.Context(), &types.Member{
		Email:    strings.TrimSpace(input.Email),
		FullName: strings.TrimSpace(input.FullName),
		Phone:    utils.NullableString(input.Phone),
		Role:     input.Role,
		IsActive: true,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetMember, member.ID, map[string]any{
		"email": member.Email,
		"role":  member.Role,
	})

	writeJSON(w, http.StatusCreated, member)
}

// handleUpdateMember lets members edit their own name and phone. Everything
// else needs the member management role.
func (s *Service) handleUpdateMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.MemberPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	self := id == actor.UserID
	if self && patch.IsActive.IsSet() && (patch.IsActive.IsNull() || !patch.IsActive.Value) {
		s.writeError(w, r, types.NewValidationError("is_active", "you cannot deactivate your own account"))
		return
	}

	if !self || !patch.SelfEditable() {
		if err := s.policy.Authorize(actor, entityMembers); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	changes := utils.ChangesFromPatch(patch)

	member, err := s.deps.Members.UpdateMember(r.Context(), id, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetMember, member.ID, changes)

	writeJSON(w, http.StatusOK, member)
}

func (s *Service) handleSetMemberActive(active bool) actorHandler {
	return func(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
		id, err := pathID(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if !active && id == actor.UserID {
			s.writeError(w, r, types.NewValidationError("id", "you cannot deactivate your own account"))
			return
		}

		if err := s.policy.Authorize(actor, entityMembers); err != nil {
			s.writeError(w, r, err)
			return
		}

		member, err := s.deps.Members.SetActive(r.Context(), id, active)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		action := types.AuditDeactivate
		if active {
			action = types.AuditActivate
		}
		s.record(r, action, actor, targetMember, member.ID, nil)

		writeJSON(w, http.StatusOK, member)
	}
}

func (s *Service) handleDeleteMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if id == actor.UserID {
		s.writeError(w, r, types.NewValidationError("id", "you cannot delete your own account"))
		return
	}

	if err := s.policy.Authorize(actor, entityMembers); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Members.DeleteMember(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetMember, id, nil)

	noContent(w)
}
