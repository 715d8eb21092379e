package server

import (
	"net/http"

	"familyhub/pkg/types"
)

const (
	targetMember        = "member"
	targetContribution  = "contribution"
	targetEvent         = "event"
	targetParticipant   = "event_participant"
	targetEventAssign   = "event_assignment"
	targetSession       = "monthly_session"
	targetSessionAssign = "session_assignment"
	targetCategory      = "document_category"
	targetDocument      = "document"
	targetMessage       = "message"
	targetAttachment    = "message_attachment"
	targetTreeMember    = "family_tree_member"
)

func (s *Service) record(r *http.Request, action types.AuditAction, actor *types.Actor, targetType, targetID string, details map[string]any) {
	if s.deps.Audit == nil {
		return
	}
	s.deps.Audit.Record(r.Context(), action, actor.UserID, targetType, targetID, details)
}

// recordUpdate logs one update entry, even when the patch changed nothing.
func (s *Service) recordUpdate(r *http.Request, actor *types.Actor, targetType, targetID string, changes types.Changes) {
	details := map[string]any{"fields": changes.Columns()}
	if len(changes) == 0 {
		details = map[string]any{"noop": true}
	}
	s.record(r, types.AuditUpdate, actor, targetType, targetID, details)
}
