package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientCredit status values. Status is always derived from the amounts —
// never set by hand.
const (
	CreditPending       = "PENDING"
	CreditPartiallyPaid = "PARTIALLY_PAID"
	CreditPaid          = "PAID"
)

// ClientCredit is a deferred-payment balance owed by a client, created when
// a cash sale falls short and the shortfall fits under the client's limit.
// The only mutation it ever receives is the application of a CreditPayment.
type ClientCredit struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName      *string         `gorm:"type:varchar(120)"`
	OriginalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	SourceSaleID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time
	PaidAt          *time.Time
}

// Open reports whether the credit still counts against the client's limit.
func (c *ClientCredit) Open() bool {
	return c.Status == CreditPending || c.Status == CreditPartiallyPaid
}

// CreditPayment is an immutable repayment event against one ClientCredit.
// It also lands in the drawer of the shift that collected it.
type CreditPayment struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShiftID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Method: cash | card.
	Method    string `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}
