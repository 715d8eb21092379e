package server

import (
	"context"

	"familyhub/internal/store"
	"familyhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

type MemberStore interface {
	Member(ctx context.Context, id string) (*types.Member, error)
	MemberBySubject(ctx context.Context, subject, email string) (*types.Member, error)
	LinkSubject(ctx context.Context, memberID, subject string) error
	Members(ctx context.Context, filter types.MemberFilter, page store.Page) ([]*types.Member, error)
	CreateMember(ctx context.Context, member *types.Member) (*types.Member, error)
	UpdateMember(ctx context.Context, id string, changes types.Changes) (*types.Member, error)
	SetActive(ctx context.Context, id string, active bool) (*types.Member, error)
	DeleteMember(ctx context.Context, id string) (bool, error)
}

type ContributionStore interface {
	Contribution(ctx context.Context, id string) (*types.ContributionDetail, error)
	Contributions(ctx context.Context, filter types.ContributionFilter, page store.Page) ([]*types.ContributionDetail, error)
	CreateContribution(ctx context.Context, contribution *types.Contribution) (*types.Contribution, error)
	UpdateContribution(ctx context.Context, id string, changes types.Changes) (*types.Contribution, error)
	DeleteContribution(ctx context.Context, id string) (bool, error)
	Summary(ctx context.Context, filter types.ContributionFilter) (*types.FinancialSummary, error)
}

type EventStore interface {
	Event(ctx context.Context, id string) (*types.Event, error)
	Events(ctx context.Context, filter types.EventFilter, page store.Page) ([]*types.Event, error)
	CreateEvent(ctx context.Context, event *types.Event) (*types.Event, error)
	UpdateEvent(ctx context.Context, id string, changes types.Changes) (*types.Event, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)
	Participants(ctx context.Context, eventID string) ([]*types.EventParticipant, error)
	AddParticipant(ctx context.Context, participant *types.EventParticipant) (*types.EventParticipant, error)
	UpdateParticipant(ctx context.Context, eventID, userID string, changes types.Changes) (*types.EventParticipant, error)
	RemoveParticipant(ctx context.Context, eventID, userID string) (bool, error)
	Assignments(ctx context.Context, eventID string) ([]*types.EventAssignment, error)
	SetAssignment(ctx context.Context, assignment *types.EventAssignment) (*types.EventAssignment, error)
	RemoveAssignment(ctx context.Context, eventID, userID string) (bool, error)
	Progress(ctx context.Context, eventID string) (*types.EventProgress, error)
}

type SessionStore interface {
	Session(ctx context.Context, id string) (*types.MonthlySession, error)
	Sessions(ctx context.Context, filter types.SessionFilter, page store.Page) ([]*types.MonthlySession, error)
	CreateSession(ctx context.Context, session *types.MonthlySession) (*types.MonthlySession, error)
	UpdateSession(ctx context.Context, id string, changes types.Changes) (*types.MonthlySession, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
	Assignments(ctx context.Context, sessionID string) ([]*types.SessionAssignment, error)
	SetAssignment(ctx context.Context, assignment *types.SessionAssignment) (*types.SessionAssignment, error)
	RemoveAssignment(ctx context.Context, sessionID, userID string) (bool, error)
	Progress(ctx context.Context, sessionID string) (*types.SessionProgress, error)
}

type CategoryStore interface {
	Categories(ctx context.Context) ([]*types.DocumentCategory, error)
	CreateCategory(ctx context.Context, category *types.DocumentCategory) (*types.DocumentCategory, error)
	UpdateCategory(ctx context.Context, id string, changes types.Changes) (*types.DocumentCategory, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type DocumentStore interface {
	Document(ctx context.Context, id string) (*types.Document, error)
	Documents(ctx context.Context, filter types.DocumentFilter, page store.Page) ([]*types.Document, error)
	CreateDocument(ctx context.Context, document *types.Document) (*types.Document, error)
	UpdateDocument(ctx context.Context, id string, changes types.Changes) (*types.Document, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *types.Message, recipientIDs []string, attachments []*types.MessageAttachment) (*types.MessageThread, error)
	Thread(ctx context.Context, id string) (*types.MessageThread, error)
	Inbox(ctx context.Context, recipientID string, filter types.InboxFilter, page store.Page) ([]*types.InboxItem, error)
	Sent(ctx context.Context, senderID string, page store.Page) ([]*types.Message, error)
	MarkRead(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error)
	SoftDelete(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error)
	Restore(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error)
	Attachment(ctx context.Context, messageID, attachmentID string) (*types.MessageAttachment, error)
	DeleteMessage(ctx context.Context, id string) (bool, []string, error)
}

type FamilyTreeStore interface {
	TreeMember(ctx context.Context, id string) (*types.FamilyTreeMember, error)
	Tree(ctx context.Context) ([]*types.FamilyTreeMember, error)
	Children(ctx context.Context, id string) ([]*types.FamilyTreeMember, error)
	CreateTreeMember(ctx context.Context, member *types.FamilyTreeMember) (*types.FamilyTreeMember, error)
	UpdateTreeMember(ctx context.Context, id string, changes types.Changes) (*types.FamilyTreeMember, error)
	DeleteTreeMember(ctx context.Context, id string) (bool, error)
}

type AuditLogStore interface {
	AuditEntries(ctx context.Context, filter types.AuditFilter, page store.Page) ([]*types.AuditEntry, error)
}

// CognitoAPI is the part of the identity provider client used for login.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
