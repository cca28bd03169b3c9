package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inventory movement types. ENTRADA and SALIDA are deltas, AJUSTE sets the
// absolute stock, TRANSFERENCIA folds per the configured transfer direction.
const (
	StockIn       = "ENTRADA"
	StockOut      = "SALIDA"
	StockAdjust   = "AJUSTE"
	StockTransfer = "TRANSFERENCIA"
)

// InventoryMovement is one row of a product's Kardex. Rows are immutable and
// replayed in (created_at, id) order. StockBefore/StockAfter capture the
// projection at write time for display; the authoritative running balance is
// always recomputed by folding, because a later AJUSTE resets the baseline.
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(15);not null"`
	// Quantity is > 0 for ENTRADA/SALIDA/TRANSFERENCIA and >= 0 (the
	// absolute target) for AJUSTE.
	Quantity    int    `gorm:"not null"`
	Reason      string `gorm:"not null"`
	Reference   *string
	Branch      string `gorm:"not null"`
	Register    int    `gorm:"not null"`
	StockBefore int    `gorm:"not null"`
	StockAfter  int    `gorm:"not null"`
	CreatedBy   string `gorm:"type:varchar(120)"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (InventoryMovement) TableName() string { return "inventory_movements" }

// Product carries the cached stock projection next to catalog data. The
// projection may go negative in storage (oversell is a reporting signal, not
// a guarded error); reads clamp it to zero.
type Product struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode string          `gorm:"uniqueIndex;not null"`
	Name    string          `gorm:"index;not null"`
	Price   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DepositPrice is the per-unit container deposit, zero for most products.
	// Deposits are collected in cash only.
	DepositPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// CurrentStock is the eagerly maintained fold of inventory_movements.
	CurrentStock   int  `gorm:"not null;default:0"`
	MinStock       int  `gorm:"not null;default:5"`
	TrackInventory bool `gorm:"not null;default:true"`
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayStock is CurrentStock clamped at zero, the value shown to callers.
func (p *Product) DisplayStock() int {
	if p.CurrentStock < 0 {
		return 0
	}
	return p.CurrentStock
}
