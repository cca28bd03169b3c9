package dto

type InventoryMovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type"       validate:"required,oneof=ENTRADA SALIDA AJUSTE TRANSFERENCIA"`
	// Quantity: delta for ENTRADA/SALIDA/TRANSFERENCIA (> 0), absolute
	// target for AJUSTE (>= 0).
	Quantity  int     `json:"quantity"`
	Reason    string  `json:"reason" validate:"required,min=3"`
	Reference *string `json:"reference"`
	Branch    string  `json:"branch"   validate:"required,min=1"`
	Register  int     `json:"register" validate:"required,min=1"`
	Actor     string  `json:"actor"`
}

type InventoryMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Reason      string  `json:"reason"`
	Reference   *string `json:"reference"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	CreatedAt   string  `json:"created_at"`
}

// KardexRow is one line of the per-product movement ledger. Balance is the
// running stock after this row, recomputed by folding from the first
// movement — not read from the cached columns.
type KardexRow struct {
	MovementID string  `json:"movement_id"`
	Type       string  `json:"type"`
	Quantity   int     `json:"quantity"`
	Balance    int     `json:"balance"`
	Reason     string  `json:"reason"`
	Reference  *string `json:"reference"`
	CreatedAt  string  `json:"created_at"`
}

type KardexResponse struct {
	ProductID string      `json:"product_id"`
	Rows      []KardexRow `json:"rows"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	Limit     int         `json:"limit"`
}

type StockResponse struct {
	ProductID      string `json:"product_id"`
	CurrentStock   int    `json:"current_stock"`
	MinStock       int    `json:"min_stock"`
	TrackInventory bool   `json:"track_inventory"`
	LowStock       bool   `json:"low_stock"`
}
