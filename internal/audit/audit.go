package audit

import (
	"context"
	"fmt"
	"time"

	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

type Repository interface {
	InsertAuditEntry(ctx context.Context, entry *types.AuditEntry) (*types.AuditEntry, error)
}

// Logger records audit entries on a best effort basis. Record never fails
// from the caller's point of view; problems end up in the operational log.
type Logger struct {
	repo   Repository
	logger *logrus.Logger
}

func NewLogger(repo Repository, logger *logrus.Logger) *Logger {
	return &Logger{repo: repo, logger: logger}
}

// Record writes one audit entry. targetID and targetType may be empty.
func (l *Logger) Record(ctx context.Context, action types.AuditAction, actorID, targetType, targetID string, details map[string]any) {
	entry := &types.AuditEntry{
		Action:  action,
		ActorID: actorID,
		Details: details,
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if targetType != "" {
		entry.TargetType = &targetType
	}

	if err := l.insert(ctx, entry); err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"actor_id":    actorID,
			"target_type": targetType,
			"target_id":   targetID,
		}).Error("failed to record audit entry")
	}
}

func (l *Logger) insert(ctx context.Context, entry *types.AuditEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit insert panicked: %v", r)
		}
	}()

	// detached from request cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	_, err = l.repo.InsertAuditEntry(ctx, entry)
	return err
}
