package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"familyhub/internal/audit"
	"familyhub/internal/storage"
	"familyhub/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators a Service is built from. Repositories are
// consumed through the interfaces in stores.go.
type Deps struct {
	Members       MemberStore
	Contributions ContributionStore
	Events        EventStore
	Sessions      SessionStore
	Categories    CategoryStore
	Documents     DocumentStore
	Messages      MessageStore
	FamilyTree    FamilyTreeStore
	AuditLogs     AuditLogStore

	Audit *audit.Logger
	Files *storage.Manager
	Auth  Authenticator

	// Optional. Login is disabled without it.
	Cognito CognitoAPI
	// Optional. /healthz only reports the process when nil.
	Pinger Pinger
}

type Service struct {
	logger *logrus.Logger
	config *types.Config
	deps   Deps
	policy Policy
	cookie *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Deps) (*Service, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie block key: %w", err)
	}

	policy, err := NewPolicy(config)
	if err != nil {
		return nil, err
	}

	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,
		deps:   deps,
		policy: policy,
		cookie: newCookie(hashKey, blockKey),
	}

	s.buildRouter(mux)
	s.handler = s.StripTrailingSlash(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// newCookie returns nil when no hash key is configured; cookie sessions are
// then disabled and only bearer tokens are accepted.
func newCookie(hashKey, blockKey []byte) *securecookie.SecureCookie {
	if len(hashKey) == 0 {
		return nil
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}
	return securecookie.New(hashKey, blockKey)
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.RecoverMiddleware)

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, types.ErrNotFound)
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handlePostLogout, http.MethodPost)
	r.HandleFunc("/api/auth/me", s.withActor(s.handleGetMe), http.MethodGet)

	r.HandleFunc("/api/members", s.withActor(s.handleListMembers), http.MethodGet)
	r.HandleFunc("/api/members", s.withActor(s.handleCreateMember), http.MethodPost)
	r.HandleFunc("/api/members/:id", s.withActor(s.handleGetMember), http.MethodGet)
	r.HandleFunc("/api/members/:id", s.withActor(s.handleUpdateMember), http.MethodPatch)
	r.HandleFunc("/api/members/:id", s.withActor(s.handleDeleteMember), http.MethodDelete)
	r.HandleFunc("/api/members/:id/deactivate", s.withActor(s.handleSetMemberActive(false)), http.MethodPost)
	r.HandleFunc("/api/members/:id/activate", s.withActor(s.handleSetMemberActive(true)), http.MethodPost)

	r.HandleFunc("/api/contributions", s.withActor(s.handleListContributions), http.MethodGet)
	r.HandleFunc("/api/contributions", s.withActor(s.handleCreateContribution), http.MethodPost)
	r.HandleFunc("/api/contributions/summary", s.withActor(s.handleContributionSummary), http.MethodGet)
	r.HandleFunc("/api/contributions/:id", s.withActor(s.handleGetContribution), http.MethodGet)
	r.HandleFunc("/api/contributions/:id", s.withActor(s.handleUpdateContribution), http.MethodPatch)
	r.HandleFunc("/api/contributions/:id", s.withActor(s.handleDeleteContribution), http.MethodDelete)
	r.HandleFunc("/api/contributions/:id/receipt", s.withActor(s.handleDownloadReceipt), http.MethodGet)

	r.HandleFunc("/api/events", s.withActor(s.handleListEvents), http.MethodGet)
	r.HandleFunc("/api/events", s.withActor(s.handleCreateEvent), http.MethodPost)
	r.HandleFunc("/api/events/:id", s.withActor(s.handleGetEvent), http.MethodGet)
	r.HandleFunc("/api/events/:id", s.withActor(s.handleUpdateEvent), http.MethodPatch)
	r.HandleFunc("/api/events/:id", s.withActor(s.handleDeleteEvent), http.MethodDelete)
	r.HandleFunc("/api/events/:id/progress", s.withActor(s.handleEventProgress), http.MethodGet)
	r.HandleFunc("/api/events/:id/participants", s.withActor(s.handleListParticipants), http.MethodGet)
	r.HandleFunc("/api/events/:id/participants", s.withActor(s.handleAddParticipant), http.MethodPost)
	r.HandleFunc("/api/events/:id/participants/:userID", s.withActor(s.handleUpdateParticipant), http.MethodPatch)
	r.HandleFunc("/api/events/:id/participants/:userID", s.withActor(s.handleRemoveParticipant), http.MethodDelete)
	r.HandleFunc("/api/events/:id/assignments", s.withActor(s.handleListEventAssignments), http.MethodGet)
	r.HandleFunc("/api/events/:id/assignments", s.withActor(s.handleSetEventAssignment), http.MethodPost)
	r.HandleFunc("/api/events/:id/assignments/:userID", s.withActor(s.handleRemoveEventAssignment), http.MethodDelete)

	r.HandleFunc("/api/sessions", s.withActor(s.handleListSessions), http.MethodGet)
	r.HandleFunc("/api/sessions", s.withActor(s.handleCreateSession), http.MethodPost)
	r.HandleFunc("/api/sessions/:id", s.withActor(s.handleGetSession), http.MethodGet)
	r.HandleFunc("/api/sessions/:id", s.withActor(s.handleUpdateSession), http.MethodPatch)
	r.HandleFunc("/api/sessions/:id", s.withActor(s.handleDeleteSession), http.MethodDelete)
	r.HandleFunc("/api/sessions/:id/progress", s.withActor(s.handleSessionProgress), http.MethodGet)
	r.HandleFunc("/api/sessions/:id/assignments", s.withActor(s.handleListSessionAssignments), http.MethodGet)
	r.HandleFunc("/api/sessions/:id/assignments", s.withActor(s.handleSetSessionAssignment), http.MethodPost)
	r.HandleFunc("/api/sessions/:id/assignments/:userID", s.withActor(s.handleRemoveSessionAssignment), http.MethodDelete)

	r.HandleFunc("/api/document-categories", s.withActor(s.handleListCategories), http.MethodGet)
	r.HandleFunc("/api/document-categories", s.withActor(s.handleCreateCategory), http.MethodPost)
	r.HandleFunc("/api/document-categories/:id", s.withActor(s.handleUpdateCategory), http.MethodPatch)
	r.HandleFunc("/api/document-categories/:id", s.withActor(s.handleDeleteCategory), http.MethodDelete)

	r.HandleFunc("/api/documents", s.withActor(s.handleListDocuments), http.MethodGet)
	r.HandleFunc("/api/documents", s.withActor(s.handleCreateDocument), http.MethodPost)
	r.HandleFunc("/api/documents/:id", s.withActor(s.handleGetDocument), http.MethodGet)
	r.HandleFunc("/api/documents/:id", s.withActor(s.handleUpdateDocument), http.MethodPatch)
	r.HandleFunc("/api/documents/:id", s.withActor(s.handleDeleteDocument), http.MethodDelete)
	r.HandleFunc("/api/documents/:id/download", s.withActor(s.handleDownloadDocument), http.MethodGet)

	r.HandleFunc("/api/messages/inbox", s.withActor(s.handleInbox), http.MethodGet)
	r.HandleFunc("/api/messages/sent", s.withActor(s.handleSent), http.MethodGet)
	r.HandleFunc("/api/messages", s.withActor(s.handleSendMessage), http.MethodPost)
	r.HandleFunc("/api/messages/:id", s.withActor(s.handleGetMessage), http.MethodGet)
	r.HandleFunc("/api/messages/:id", s.withActor(s.handleDeleteMessage), http.MethodDelete)
	r.HandleFunc("/api/messages/:id/read", s.withActor(s.handleMarkRead), http.MethodPost)
	r.HandleFunc("/api/messages/:id/trash", s.withActor(s.handleTrashMessage), http.MethodPost)
	r.HandleFunc("/api/messages/:id/restore", s.withActor(s.handleRestoreMessage), http.MethodPost)
	r.HandleFunc("/api/messages/:id/attachments/:attachmentID", s.withActor(s.handleDownloadAttachment), http.MethodGet)

	r.HandleFunc("/api/family-tree", s.withActor(s.handleFamilyTree), http.MethodGet)
	r.HandleFunc("/api/family-tree", s.withActor(s.handleCreateTreeMember), http.MethodPost)
	r.HandleFunc("/api/family-tree/:id", s.withActor(s.handleGetTreeMember), http.MethodGet)
	r.HandleFunc("/api/family-tree/:id", s.withActor(s.handleUpdateTreeMember), http.MethodPatch)
	r.HandleFunc("/api/family-tree/:id", s.withActor(s.handleDeleteTreeMember), http.MethodDelete)
	r.HandleFunc("/api/family-tree/:id/photo", s.withActor(s.handleDownloadTreePhoto), http.MethodGet)

	r.HandleFunc("/api/audit-logs", s.withActor(s.handleListAuditLogs), http.MethodGet)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.deps.Pinger.Ping(ctx); err != nil {
			s.logger.WithError(err).Error("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
