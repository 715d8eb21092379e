package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"familyhub/internal/audit"
	"familyhub/internal/storage"
	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fakeAuth struct{}

// Verify accepts "token-<member id>" and maps it to subject "sub-<member id>".
func (fakeAuth) Verify(_ context.Context, token string) (*Identity, error) {
	id, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, types.ErrUnauthenticated
	}
	return &Identity{Subject: "sub-" + id}, nil
}

type fakeMembers struct {
	MemberStore

	mu      sync.Mutex
	byID    map[string]*types.Member
	updates []types.Changes
	toggled []string
}

func newFakeMembers(members ...*types.Member) *fakeMembers {
	f := &fakeMembers{byID: map[string]*types.Member{}}
	for _, m := range members {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMembers) Member(_ context.Context, id string) (*types.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) MemberBySubject(_ context.Context, subject, _ string) (*types.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.AuthSubject != nil && *m.AuthSubject == subject {
			return m, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeMembers) UpdateMember(_ context.Context, id string, changes types.Changes) (*types.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	f.updates = append(f.updates, changes)
	for _, c := range changes {
		if c.Column == "phone" {
			if v, ok := c.Value.(string); ok {
				m.Phone = &v
			}
		}
	}
	return m, nil
}

func (f *fakeMembers) SetActive(_ context.Context, id string, active bool) (*types.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	f.toggled = append(f.toggled, id)
	m.IsActive = active
	return m, nil
}

func (f *fakeMembers) DeleteMember(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	delete(f.byID, id)
	return ok, nil
}

type auditSink struct {
	mu      sync.Mutex
	entries []*types.AuditEntry
}

func (a *auditSink) InsertAuditEntry(_ context.Context, entry *types.AuditEntry) (*types.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return entry, nil
}

func (a *auditSink) actions() []types.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.AuditAction, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

func (a *auditSink) last() *types.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return nil
	}
	return a.entries[len(a.entries)-1]
}

func testMember(id string, role types.Role) *types.Member {
	return &types.Member{
		ID:          id,
		AuthSubject: strPtr("sub-" + id),
		Email:       id + "@family.test",
		FullName:    strings.ToUpper(id[:1]) + id[1:],
		Role:        role,
		IsActive:    true,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
}

type harness struct {
	t       *testing.T
	service *Service
	members *fakeMembers
	audit   *auditSink
	files   *storage.Manager
	root    string
	logs    *test.Hook
}

// newHarness builds a service with admin, treasurer, secretary and the plain
// members alice, bob and carol. Deps left nil in deps are filled in.
func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	root := t.TempDir()
	backend, err := storage.NewLocalBackend(root)
	require.NoError(t, err)
	files, err := storage.NewManager(root, backend, logger)
	require.NoError(t, err)

	members := newFakeMembers(
		testMember("admin", types.RoleAdmin),
		testMember("treasurer", types.RoleTreasurer),
		testMember("secretary", types.RoleSecretary),
		testMember("alice", types.RoleMember),
		testMember("bob", types.RoleMember),
		testMember("carol", types.RoleMember),
	)
	sink := &auditSink{}

	if deps.Members == nil {
		deps.Members = members
	}
	deps.Audit = audit.NewLogger(sink, logger)
	deps.Files = files
	deps.Auth = fakeAuth{}

	config := &types.Config{
		Environment:       "test",
		MaxUploadMB:       1,
		CookieName:        "familyhub_token",
		ContributionRoles: []string{"admin", "treasurer"},
		EventRoles:        []string{"admin", "secretary", "treasurer"},
		SessionRoles:      []string{"admin", "treasurer"},
		DocumentRoles:     []string{"admin", "secretary"},
		FamilyTreeRoles:   []string{"admin", "secretary"},
		MemberRoles:       []string{"admin"},
		AuditRoles:        []string{"admin"},
	}

	service, err := New(config, logger, deps)
	require.NoError(t, err)

	return &harness{
		t:       t,
		service: service,
		members: members,
		audit:   sink,
		files:   files,
		root:    root,
		logs:    hook,
	}
}

func (h *harness) serve(req *http.Request, as string) *httptest.ResponseRecorder {
	if as != "" {
		req.Header.Set("Authorization", "Bearer token-"+as)
	}
	rec := httptest.NewRecorder()
	h.service.Handler().ServeHTTP(rec, req)
	return rec
}

func (h *harness) do(method, path, as string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.serve(req, as)
}

type upload struct {
	field, name, body string
}

func (h *harness) sendMultipart(method, path, as string, fields map[string][]string, files ...upload) *httptest.ResponseRecorder {
	h.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(h.t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(h.t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.serve(req, as)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func targetOf(entry *types.AuditEntry) string {
	if entry == nil || entry.TargetID == nil {
		return ""
	}
	return *entry.TargetID
}
