package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// MonthlySession is a period during which members pay a fixed monthly amount.
type MonthlySession struct {
	ID                  string          `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	Description         *string         `db:"description" json:"description"`
	StartDate           Date            `db:"start_date" json:"start_date"`
	MonthlyTargetAmount decimal.Decimal `db:"monthly_target_amount" json:"monthly_target_amount"`
	DurationMonths      int             `db:"duration_months" json:"duration_months"`
	PaymentDeadlineDay  int             `db:"payment_deadline_day" json:"payment_deadline_day"`
	Status              SessionStatus   `db:"status" json:"status"`
	CreatedBy           string          `db:"created_by" json:"created_by"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

type MonthlySessionInput struct {
	Name                string          `json:"name" validate:"required,max=200"`
	Description         string          `json:"description" validate:"max=5000"`
	StartDate           Date            `json:"start_date" validate:"required"`
	MonthlyTargetAmount decimal.Decimal `json:"monthly_target_amount" validate:"required,gt=0"`
	DurationMonths      int             `json:"duration_months" validate:"required,min=1,max=120"`
	PaymentDeadlineDay  int             `json:"payment_deadline_day" validate:"required,min=1,max=31"`
	Status              SessionStatus   `json:"status" validate:"omitempty,oneof=active completed cancelled"`
}

type MonthlySessionPatch struct {
	Name                Optional[string]          `db:"name" json:"name" validate:"omitnil,min=1,max=200"`
	Description         Optional[string]          `db:"description" json:"description" validate:"omitnil,max=5000"`
	StartDate           Optional[Date]            `db:"start_date" json:"start_date"`
	MonthlyTargetAmount Optional[decimal.Decimal] `db:"monthly_target_amount" json:"monthly_target_amount" validate:"omitnil,gt=0"`
	DurationMonths      Optional[int]             `db:"duration_months" json:"duration_months" validate:"omitnil,min=1,max=120"`
	PaymentDeadlineDay  Optional[int]             `db:"payment_deadline_day" json:"payment_deadline_day" validate:"omitnil,min=1,max=31"`
	Status              Optional[SessionStatus]   `db:"status" json:"status" validate:"omitnil,oneof=active completed cancelled"`
}

type SessionFilter struct {
	Search string        `form:"search"`
	Status SessionStatus `form:"status"`
}

type SessionAssignment struct {
	ID            string          `db:"id" json:"id"`
	SessionID     string          `db:"session_id" json:"session_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	MonthlyAmount decimal.Decimal `db:"monthly_amount" json:"monthly_amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

type SessionAssignmentInput struct {
	UserID        string          `json:"user_id" validate:"required"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" validate:"required,gt=0"`
}

type SessionProgress struct {
	SessionID       string          `json:"session_id"`
	ExpectedMonthly decimal.Decimal `json:"expected_monthly"`
	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	Collected       decimal.Decimal `json:"collected"`
	Members         int64           `json:"members"`
}
