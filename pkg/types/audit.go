package types

import "time"

type AuditAction string

const (
	AuditCreate          AuditAction = "create"
	AuditUpdate          AuditAction = "update"
	AuditDelete          AuditAction = "delete"
	AuditDownload        AuditAction = "download"
	AuditRestore         AuditAction = "restore"
	AuditPermanentDelete AuditAction = "permanent_delete"
	AuditMarkRead        AuditAction = "mark_read"
	AuditAssign          AuditAction = "assign"
	AuditUnassign        AuditAction = "unassign"
	AuditActivate        AuditAction = "activate"
	AuditDeactivate      AuditAction = "deactivate"
)

// AuditEntry is an immutable record of an action taken by a member.
type AuditEntry struct {
	ID         string         `db:"id" json:"id"`
	Action     AuditAction    `db:"action" json:"action"`
	ActorID    string         `db:"actor_id" json:"actor_id"`
	TargetID   *string        `db:"target_id" json:"target_id"`
	TargetType *string        `db:"target_type" json:"target_type"`
	Details    map[string]any `db:"details" json:"details"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

type AuditFilter struct {
	ActorID    string      `form:"actor_id"`
	TargetID   string      `form:"target_id"`
	TargetType string      `form:"target_type"`
	Action     AuditAction `form:"action"`
	From       *Date       `form:"from"`
	To         *Date       `form:"to"`
}
