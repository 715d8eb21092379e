package server

import (
	"net/http"
	"testing"

	"familyhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfDeactivationRejected(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, "/api/members/admin/deactivate", "admin", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPatch, "/api/members/admin", "admin", map[string]any{"is_active": false})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[errorBody](t, rec)
	assert.Contains(t, body.Fields, "is_active")

	assert.Empty(t, h.members.toggled)
	assert.Empty(t, h.members.updates)
	assert.True(t, h.members.byID["admin"].IsActive)
	assert.Empty(t, h.audit.actions())
}

func TestSelfDeleteRejected(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodDelete, "/api/members/admin", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, h.members.byID, "admin")
}

func TestDeactivateAndDeleteOthers(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, "/api/members/carol/deactivate", "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/api/members/carol/deactivate", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[types.Member](t, rec).IsActive)
	assert.Equal(t, []string{"carol"}, h.members.toggled)

	rec = h.do(http.MethodPost, "/api/members/carol/activate", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodDelete, "/api/members/carol", "admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, h.members.byID, "carol")

	rec = h.do(http.MethodDelete, "/api/members/carol", "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []types.AuditAction{types.AuditDeactivate, types.AuditActivate, types.AuditDelete}, h.audit.actions())
}

func TestMemberEditsOwnProfile(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPatch, "/api/members/alice", "alice", map[string]any{"phone": "+237 6 99 00 11 22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	member := decodeBody[types.Member](t, rec)
	require.NotNil(t, member.Phone)
	assert.Equal(t, "+237 6 99 00 11 22", *member.Phone)

	entry := h.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, types.AuditUpdate, entry.Action)
	assert.Equal(t, []string{"phone"}, entry.Details["fields"])
}

func TestMemberCannotChangeOwnRole(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPatch, "/api/members/alice", "alice", map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPatch, "/api/members/bob", "alice", map[string]any{"phone": "123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, h.members.updates)
	assert.Equal(t, types.RoleMember, h.members.byID["alice"].Role)
}

func TestMemberPatchValidation(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPatch, "/api/members/bob", "admin", map[string]any{"role": "overlord", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[errorBody](t, rec)
	assert.Contains(t, body.Fields, "role")
	assert.Contains(t, body.Fields, "email")
}

func TestMemberPatchRejectsEmptyRole(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPatch, "/api/members/bob", "admin", map[string]any{"role": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "role")

	rec = h.do(http.MethodPatch, "/api/members/bob", "admin", map[string]any{"full_name": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "full_name")

	assert.Empty(t, h.members.updates)
	assert.Empty(t, h.audit.actions())
}
