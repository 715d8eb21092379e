package server

import (
	"net/http"
	"strings"

	"familyhub/internal/storage"
	"familyhub/pkg/types"
)

func (s *Service) handleInbox(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.InboxFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.deps.Messages.Inbox(r.Context(), actor.UserID, filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, items)
}

func (s *Service) handleSent(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	page, err := decodeQuery(r, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	messages, err := s.deps.Messages.Sent(r.Context(), actor.UserID, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, messages)
}

func (s *Service) handleSendMessage(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.MessageInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	staged, err := s.stageFiles(r, "attachments")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.discardAll(staged)

	attachments := make([]*types.MessageAttachment, 0, len(staged))
	var keys []string
	for _, file := range staged {
		key, err := s.deps.Files.Commit(r.Context(), file, storage.FolderAttachments)
		if err != nil {
			s.deps.Files.PurgeQuietly(r.Context(), keys...)
			s.writeError(w, r, err)
			return
		}
		keys = append(keys, key)

		attachments = append(attachments, &types.MessageAttachment{
			FileName: file.Name,
			FilePath: key,
			FileType: file.ContentType,
			FileSize: file.Size,
		})
	}

	thread, err := s.deps.Messages.CreateMessage(r.Context(), &types.Message{
		SenderID: actor.UserID,
		Subject:  strings.TrimSpace(input.Subject),
		Content:  input.Content,
	}, input.RecipientIDs, attachments)
	if err != nil {
		s.deps.Files.PurgeQuietly(r.Context(), keys...)
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetMessage, thread.ID, map[string]any{
		"recipients":  len(thread.Recipients),
		"attachments": len(thread.Attachments),
	})

	writeJSON(w, http.StatusCreated, thread)
}

// thread loads a message the actor takes part in, as sender or recipient.
func (s *Service) thread(r *http.Request, actor *types.Actor) (*types.MessageThread, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}

	thread, err := s.deps.Messages.Thread(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !thread.CanAccess(actor.UserID) {
		return nil, types.ErrForbidden
	}

	return thread, nil
}

// handleGetMessage marks the message read the first time a recipient opens it.
func (s *Service) handleGetMessage(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if recipient := thread.Recipient(actor.UserID); recipient != nil && recipient.ReadAt == nil {
		updated, err := s.deps.Messages.MarkRead(r.Context(), thread.ID, actor.UserID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		*recipient = *updated

		s.record(r, types.AuditMarkRead, actor, targetMessage, thread.ID, nil)
	}

	writeJSON(w, http.StatusOK, thread)
}

func (s *Service) handleMarkRead(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thread.Recipient(actor.UserID) == nil {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	recipient, err := s.deps.Messages.MarkRead(r.Context(), thread.ID, actor.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditMarkRead, actor, targetMessage, thread.ID, nil)

	writeJSON(w, http.StatusOK, recipient)
}

func (s *Service) handleTrashMessage(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thread.Recipient(actor.UserID) == nil {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	recipient, err := s.deps.Messages.SoftDelete(r.Context(), thread.ID, actor.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetMessage, thread.ID, map[string]any{"soft": true})

	writeJSON(w, http.StatusOK, recipient)
}

func (s *Service) handleRestoreMessage(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thread.Recipient(actor.UserID) == nil {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	recipient, err := s.deps.Messages.Restore(r.Context(), thread.ID, actor.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditRestore, actor, targetMessage, thread.ID, nil)

	writeJSON(w, http.StatusOK, recipient)
}

// handleDeleteMessage removes the message for everyone. Only the sender may.
func (s *Service) handleDeleteMessage(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thread.SenderID != actor.UserID {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	ok, paths, err := s.deps.Messages.DeleteMessage(r.Context(), thread.ID)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.deps.Files.PurgeQuietly(r.Context(), paths...)

	s.record(r, types.AuditPermanentDelete, actor, targetMessage, thread.ID, map[string]any{
		"subject":     thread.Subject,
		"attachments": len(paths),
	})

	noContent(w)
}

func (s *Service) handleDownloadAttachment(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	thread, err := s.thread(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	attachmentID, err := pathID(r, "attachmentID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	attachment, err := s.deps.Messages.Attachment(r.Context(), thread.ID, attachmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.download(w, r, actor, attachment.FilePath, attachment.FileName, attachment.FileType, targetAttachment, attachment.ID)
}
