package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContributionStatus string

const (
	ContributionStatusPending   ContributionStatus = "pending"
	ContributionStatusCompleted ContributionStatus = "completed"
	ContributionStatusRefunded  ContributionStatus = "refunded"
	ContributionStatusCancelled ContributionStatus = "cancelled"
)

type SourceType string

const (
	SourceTypeMonthly SourceType = "monthly"
	SourceTypeEvent   SourceType = "event"
	SourceTypeProject SourceType = "project"
	SourceTypeOther   SourceType = "other"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOther        PaymentMethod = "other"
)

type Contribution struct {
	ID            string             `db:"id" json:"id"`
	UserID        string             `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal    `db:"amount" json:"amount"`
	PaymentDate   Date               `db:"payment_date" json:"payment_date"`
	PaymentMethod PaymentMethod      `db:"payment_method" json:"payment_method"`
	Status        ContributionStatus `db:"status" json:"status"`
	SourceType    SourceType         `db:"source_type" json:"source_type"`
	SourceID      *string            `db:"source_id" json:"source_id"`
	Reference     *string            `db:"reference" json:"reference"`
	Notes         *string            `db:"notes" json:"notes"`
	ReceiptPath   *string            `db:"receipt_path" json:"receipt_path"`
	CreatedBy     string             `db:"created_by" json:"created_by"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// ContributionDetail is a contribution enriched with the contributing member's name.
type ContributionDetail struct {
	Contribution
	MemberName *string `db:"member_name" json:"member_name"`
}

type ContributionInput struct {
	UserID        string             `json:"user_id" form:"user_id" validate:"required"`
	Amount        decimal.Decimal    `json:"amount" form:"amount" validate:"required,gt=0"`
	PaymentDate   Date               `json:"payment_date" form:"payment_date" validate:"required"`
	PaymentMethod PaymentMethod      `json:"payment_method" form:"payment_method" validate:"required,oneof=cash bank_transfer mobile_money card other"`
	Status        ContributionStatus `json:"status" form:"status" validate:"omitempty,oneof=pending completed refunded cancelled"`
	SourceType    SourceType         `json:"source_type" form:"source_type" validate:"required,oneof=monthly event project other"`
	SourceID      string             `json:"source_id" form:"source_id" validate:"required_unless=SourceType other"`
	Reference     string             `json:"reference" form:"reference" validate:"max=120"`
	Notes         string             `json:"notes" form:"notes" validate:"max=2000"`
}

type ContributionPatch struct {
	UserID        Optional[string]             `db:"user_id" json:"user_id" form:"user_id"`
	Amount        Optional[decimal.Decimal]    `db:"amount" json:"amount" form:"amount" validate:"omitnil,gt=0"`
	PaymentDate   Optional[Date]               `db:"payment_date" json:"payment_date" form:"payment_date"`
	PaymentMethod Optional[PaymentMethod]      `db:"payment_method" json:"payment_method" form:"payment_method" validate:"omitnil,oneof=cash bank_transfer mobile_money card other"`
	Status        Optional[ContributionStatus] `db:"status" json:"status" form:"status" validate:"omitnil,oneof=pending completed refunded cancelled"`
	SourceType    Optional[SourceType]         `db:"source_type" json:"source_type" form:"source_type" validate:"omitnil,oneof=monthly event project other"`
	SourceID      Optional[string]             `db:"source_id" json:"source_id" form:"source_id"`
	Reference     Optional[string]             `db:"reference" json:"reference" form:"reference" validate:"omitnil,max=120"`
	Notes         Optional[string]             `db:"notes" json:"notes" form:"notes" validate:"omitnil,max=2000"`
}

type ContributionFilter struct {
	UserID     string             `form:"user_id"`
	Status     ContributionStatus `form:"status"`
	SourceType SourceType         `form:"source_type"`
	SourceID   string             `form:"source_id"`
	From       *Date              `form:"from"`
	To         *Date              `form:"to"`
}

// FinancialSummary totals contributions per status. Cancelled contributions are
// left out of TotalContributions and only counted in TotalCancelled.
type FinancialSummary struct {
	TotalContributions decimal.Decimal              `json:"total_contributions"`
	TotalCompleted     decimal.Decimal              `json:"total_completed"`
	TotalPending       decimal.Decimal              `json:"total_pending"`
	TotalRefunded      decimal.Decimal              `json:"total_refunded"`
	TotalCancelled     decimal.Decimal              `json:"total_cancelled"`
	Count              int64                        `json:"count"`
	BySource           map[SourceType]SourceSummary `json:"by_source"`
	ByMonth            []PeriodSummary              `json:"by_month"`
}

type SourceSummary struct {
	Total          decimal.Decimal `json:"total"`
	TotalCancelled decimal.Decimal `json:"total_cancelled"`
	Count          int64           `json:"count"`
}

type PeriodSummary struct {
	Period         string          `json:"period"` // YYYY-MM
	Total          decimal.Decimal `json:"total"`
	TotalCancelled decimal.Decimal `json:"total_cancelled"`
	Count          int64           `json:"count"`
}
