package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"familyhub/internal/storage"
	"familyhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessages struct {
	MessageStore

	thread  *types.MessageThread
	marked  []string
	deleted []string
}

func (f *fakeMessages) Thread(_ context.Context, id string) (*types.MessageThread, error) {
	if f.thread == nil || f.thread.ID != id {
		return nil, types.ErrNotFound
	}
	// handlers mutate the recipient rows they are given
	clone := *f.thread
	clone.Recipients = nil
	for _, r := range f.thread.Recipients {
		rc := *r
		clone.Recipients = append(clone.Recipients, &rc)
	}
	return &clone, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, messageID, recipientID string) (*types.MessageRecipient, error) {
	f.marked = append(f.marked, recipientID)
	for _, r := range f.thread.Recipients {
		if r.RecipientID == recipientID {
			if r.ReadAt == nil {
				now := time.Now().UTC()
				r.ReadAt = &now
			}
			out := *r
			return &out, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeMessages) DeleteMessage(_ context.Context, id string) (bool, []string, error) {
	f.deleted = append(f.deleted, id)
	var paths []string
	for _, a := range f.thread.Attachments {
		paths = append(paths, a.FilePath)
	}
	return true, paths, nil
}

func (f *fakeMessages) CreateMessage(_ context.Context, message *types.Message, recipientIDs []string, attachments []*types.MessageAttachment) (*types.MessageThread, error) {
	message.ID = "msg-new"
	thread := &types.MessageThread{Message: *message, Attachments: attachments}
	for _, id := range recipientIDs {
		thread.Recipients = append(thread.Recipients, &types.MessageRecipient{MessageID: message.ID, RecipientID: id})
	}
	f.thread = thread
	return thread, nil
}

// commitFile writes body into the upload root and returns its key.
func (h *harness) commitFile(folder storage.Folder, name, body string) string {
	h.t.Helper()

	staged, err := h.files.Stage(name, "", strings.NewReader(body))
	require.NoError(h.t, err)
	defer h.files.Discard(staged)

	key, err := h.files.Commit(context.Background(), staged, folder)
	require.NoError(h.t, err)
	return key
}

func newMessageHarness(t *testing.T) (*harness, *fakeMessages) {
	messages := &fakeMessages{}
	h := newHarness(t, Deps{Messages: messages})

	key := h.commitFile(storage.FolderAttachments, "agenda.txt", "1. budget")
	messages.thread = &types.MessageThread{
		Message: types.Message{ID: "msg-1", SenderID: "alice", Subject: "Reunion", Content: "See agenda"},
		Recipients: []*types.MessageRecipient{
			{ID: "rcpt-1", MessageID: "msg-1", RecipientID: "bob"},
		},
		Attachments: []*types.MessageAttachment{
			{ID: "att-1", MessageID: "msg-1", FileName: "agenda.txt", FilePath: key, FileType: "text/plain", FileSize: 9},
		},
	}
	return h, messages
}

func TestMessageAccess(t *testing.T) {
	h, messages := newMessageHarness(t)

	rec := h.do(http.MethodGet, "/api/messages/msg-1", "carol", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/api/messages/msg-1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, messages.marked, "the sender opening a message does not mark it read")

	rec = h.do(http.MethodGet, "/api/messages/missing", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecipientOpeningMarksRead(t *testing.T) {
	h, messages := newMessageHarness(t)

	rec := h.do(http.MethodGet, "/api/messages/msg-1", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	thread := decodeBody[types.MessageThread](t, rec)
	require.Len(t, thread.Recipients, 1)
	assert.NotNil(t, thread.Recipients[0].ReadAt)
	assert.Equal(t, []string{"bob"}, messages.marked)
	assert.Equal(t, []types.AuditAction{types.AuditMarkRead}, h.audit.actions())

	// already read, nothing further to record
	rec = h.do(http.MethodGet, "/api/messages/msg-1", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, messages.marked, 1)
	assert.Len(t, h.audit.actions(), 1)
}

func TestRecipientOnlyActions(t *testing.T) {
	h, _ := newMessageHarness(t)

	for _, action := range []string{"read", "trash", "restore"} {
		rec := h.do(http.MethodPost, "/api/messages/msg-1/"+action, "alice", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, action)
	}
}

func TestDeleteMessageIsSenderOnly(t *testing.T) {
	h, messages := newMessageHarness(t)
	key := messages.thread.Attachments[0].FilePath

	rec := h.do(http.MethodDelete, "/api/messages/msg-1", "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, messages.deleted)
	assert.FileExists(t, filepath.Join(h.root, filepath.FromSlash(key)))

	rec = h.do(http.MethodDelete, "/api/messages/msg-1", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"msg-1"}, messages.deleted)

	_, err := os.Stat(filepath.Join(h.root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err), "attachment should be purged")

	entry := h.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, types.AuditPermanentDelete, entry.Action)
}

func TestDownloadAttachmentRequiresAccess(t *testing.T) {
	h, _ := newMessageHarness(t)

	rec := h.do(http.MethodGet, "/api/messages/msg-1/attachments/att-1", "carol", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSendMessageWithAttachments(t *testing.T) {
	h, messages := newMessageHarness(t)

	rec := h.sendMultipart(http.MethodPost, "/api/messages", "bob", map[string][]string{
		"subject":       {"Photos"},
		"content":       {"From the wedding"},
		"recipient_ids": {"alice", "carol"},
	}, upload{field: "attachments", name: "one.jpg", body: "jpeg-1"}, upload{field: "attachments", name: "two.jpg", body: "jpeg-2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	thread := messages.thread
	assert.Equal(t, "bob", thread.SenderID)
	require.Len(t, thread.Recipients, 2)
	require.Len(t, thread.Attachments, 2)
	for _, a := range thread.Attachments {
		assert.True(t, strings.HasPrefix(a.FilePath, "attachments/"), a.FilePath)
		assert.FileExists(t, filepath.Join(h.root, filepath.FromSlash(a.FilePath)))
	}
}

func TestSendMessageRequiresRecipients(t *testing.T) {
	h, _ := newMessageHarness(t)

	rec := h.do(http.MethodPost, "/api/messages", "bob", map[string]any{
		"subject": "Hello",
		"content": "Anyone?",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[errorBody](t, rec)
	assert.Contains(t, body.Fields, "recipient_ids")
}
