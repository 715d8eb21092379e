package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusPlanned   EventStatus = "planned"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

type ParticipantStatus string

const (
	ParticipantStatusInvited   ParticipantStatus = "invited"
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
	ParticipantStatusDeclined  ParticipantStatus = "declined"
)

type Event struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Description  *string          `db:"description" json:"description"`
	Location     *string          `db:"location" json:"location"`
	StartDate    Date             `db:"start_date" json:"start_date"`
	EndDate      *Date            `db:"end_date" json:"end_date"`
	TargetAmount *decimal.Decimal `db:"target_amount" json:"target_amount"`
	Status       EventStatus      `db:"status" json:"status"`
	CreatedBy    string           `db:"created_by" json:"created_by"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

type EventInput struct {
	Name         string           `json:"name" validate:"required,max=200"`
	Description  string           `json:"description" validate:"max=5000"`
	Location     string           `json:"location" validate:"max=200"`
	StartDate    Date             `json:"start_date" validate:"required"`
	EndDate      *Date            `json:"end_date"`
	TargetAmount *decimal.Decimal `json:"target_amount" validate:"omitempty,gt=0"`
	Status       EventStatus      `json:"status" validate:"omitempty,oneof=planned ongoing completed cancelled"`
}

type EventPatch struct {
	Name         Optional[string]          `db:"name" json:"name" validate:"omitnil,min=1,max=200"`
	Description  Optional[string]          `db:"description" json:"description" validate:"omitnil,max=5000"`
	Location     Optional[string]          `db:"location" json:"location" validate:"omitnil,max=200"`
	StartDate    Optional[Date]            `db:"start_date" json:"start_date"`
	EndDate      Optional[Date]            `db:"end_date" json:"end_date"`
	TargetAmount Optional[decimal.Decimal] `db:"target_amount" json:"target_amount" validate:"omitnil,gt=0"`
	Status       Optional[EventStatus]     `db:"status" json:"status" validate:"omitnil,oneof=planned ongoing completed cancelled"`
}

type EventFilter struct {
	Search string      `form:"search"`
	Status EventStatus `form:"status"`
	From   *Date       `form:"from"`
	To     *Date       `form:"to"`
}

type EventParticipant struct {
	ID        string            `db:"id" json:"id"`
	EventID   string            `db:"event_id" json:"event_id"`
	UserID    string            `db:"user_id" json:"user_id"`
	Status    ParticipantStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

type ParticipantInput struct {
	UserID string            `json:"user_id" validate:"required"`
	Status ParticipantStatus `json:"status" validate:"omitempty,oneof=invited confirmed declined"`
}

type ParticipantPatch struct {
	Status Optional[ParticipantStatus] `db:"status" json:"status" validate:"omitnil,oneof=invited confirmed declined"`
}

// EventAssignment is the amount a member is expected to contribute to an event.
type EventAssignment struct {
	ID        string          `db:"id" json:"id"`
	EventID   string          `db:"event_id" json:"event_id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type EventAssignmentInput struct {
	UserID string          `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

type EventProgress struct {
	EventID        string           `json:"event_id"`
	TargetAmount   *decimal.Decimal `json:"target_amount"`
	AssignedAmount decimal.Decimal  `json:"assigned_amount"`
	RaisedAmount   decimal.Decimal  `json:"raised_amount"`
	Participants   int64            `json:"participants"`
}
