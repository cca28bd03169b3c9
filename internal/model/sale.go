package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable record of a completed checkout, attributed to the
// shift that was open on its register when it was made.
type Sale struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number   int       `gorm:"uniqueIndex;not null"`
	Branch   string    `gorm:"not null"`
	Register int       `gorm:"not null"`
	ShiftID  uuid.UUID `gorm:"type:uuid;not null;index"`

	ClientID   *uuid.UUID `gorm:"type:uuid;index"`
	ClientName *string    `gorm:"type:varchar(120)"`

	Total decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DepositTotal is the container-deposit portion of Total. Deposits are
	// collected in cash only.
	DepositTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Method is the resolved tender descriptor: cash | card | transfer |
	// gift | mixed. The per-bucket amounts live in Payments.
	Method string `gorm:"type:varchar(10);not null"`

	CreatedBy string `gorm:"type:varchar(120)"`
	CreatedAt time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment is one tender bucket of a sale. A mixed sale has one cash row
// and one card row; simple sales have a single row.
type SalePayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method string          `gorm:"type:varchar(10);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
