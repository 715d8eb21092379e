package server

import (
	"net/http"

	"familyhub/pkg/types"
)

func (s *Service) handleListAuditLogs(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	if err := s.policy.Authorize(actor, entityAuditLogs); err != nil {
		s.writeError(w, r, err)
		return
	}

	var filter types.AuditFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.deps.AuditLogs.AuditEntries(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, entries)
}
