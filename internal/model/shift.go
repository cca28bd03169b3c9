package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift status values. A shift is created OPEN, transitions exactly once to
// CLOSED (normal reconciliation) or CANCELLED (abnormal close, reconciled the
// same way), and is never mutated afterwards.
const (
	ShiftOpen      = "OPEN"
	ShiftClosed    = "CLOSED"
	ShiftCancelled = "CANCELLED"
)

// Shift is the working session of one register. Running totals are an eagerly
// maintained projection of the shift's events; the event rows remain the
// source of truth and RecomputeTotals can rebuild them at any time.
//
// At most one OPEN shift may exist per (branch, register) — enforced by a
// partial unique index, not by in-process locking, because several terminals
// share the store.
type Shift struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Branch   string    `gorm:"not null;index:idx_shifts_branch_register"`
	Register int       `gorm:"not null;index:idx_shifts_branch_register"`
	// Number is monotonic within (branch, register) and never reused.
	Number      int     `gorm:"not null"`
	Status      string  `gorm:"type:varchar(20);not null;default:'OPEN'"`
	CashierName *string `gorm:"type:varchar(120)"`

	InitialCash decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Sale revenue per tender bucket.
	TotalCash     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCard     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTransfer decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalOther    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// MovementsNet is the net of manual ENTRADA/SALIDA cash movements,
	// tracked apart from sale revenue. May go negative (overdraw is a
	// close-time signal, not a blocked operation).
	MovementsNet decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Credit repayments collected during the shift. Drawer effect is
	// identical to sales cash/card, reported separately.
	CreditPaymentsCash decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditPaymentsCard decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Reconciliation fields, set exactly once at close.
	FinalCash    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedCash *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes        *string

	OpenedAt time.Time
	ClosedAt *time.Time

	Movements []CashMovement `gorm:"foreignKey:ShiftID"`
}

// Cash movement types. Amounts are always positive; SALIDA subtracts.
const (
	MovementIn  = "ENTRADA"
	MovementOut = "SALIDA"
)

// CashMovement is an immutable manual drawer event (change fund top-up,
// cash drop, petty expense). Rows are never edited; removing a mistaken
// movement while its shift is still OPEN flags it voided and appends the
// inverse to the running total — history stays append-only.
type CashMovement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type      string          `gorm:"type:varchar(10);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason    string          `gorm:"not null"`
	Notes     *string
	CreatedBy string `gorm:"type:varchar(120)"`
	Voided    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// Signed returns the movement's effect on the drawer: positive for ENTRADA,
// negative for SALIDA.
func (m *CashMovement) Signed() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Amount.Neg()
	}
	return m.Amount
}
