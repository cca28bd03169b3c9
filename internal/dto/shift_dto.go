package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	Branch      string          `json:"branch"       validate:"required,min=1"`
	Register    int             `json:"register"     validate:"required,min=1"`
	CashierName *string         `json:"cashier_name"`
	InitialCash decimal.Decimal `json:"initial_cash" validate:"min=0"`
}

type CloseShiftRequest struct {
	ShiftID   string          `json:"shift_id"   validate:"required,uuid"`
	FinalCash decimal.Decimal `json:"final_cash" validate:"min=0"`
	Notes     *string         `json:"notes"`
}

type CancelShiftRequest struct {
	ShiftID string `json:"shift_id" validate:"required,uuid"`
	Reason  string `json:"reason"   validate:"required,min=3"`
}

type CashMovementRequest struct {
	ShiftID string          `json:"shift_id" validate:"required,uuid"`
	Type    string          `json:"type"     validate:"required,oneof=ENTRADA SALIDA"`
	Amount  decimal.Decimal `json:"amount"   validate:"required,gt=0"`
	Reason  string          `json:"reason"   validate:"required,min=3"`
	Notes   *string         `json:"notes"`
	Actor   string          `json:"actor"`
}

type CreditPaymentRequest struct {
	CreditID string          `json:"credit_id" validate:"required,uuid"`
	ShiftID  string          `json:"shift_id"  validate:"required,uuid"`
	Amount   decimal.Decimal `json:"amount"    validate:"required,gt=0"`
	Method   string          `json:"method"    validate:"required,oneof=cash card"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShiftTotals struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
	Other    decimal.Decimal `json:"other"`
}

type ReconciliationResponse struct {
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	FinalCash    decimal.Decimal `json:"final_cash"`
	// Difference = final - expected. Positive is surplus, negative shortage.
	Difference decimal.Decimal `json:"difference"`
}

type ShiftResponse struct {
	ID                 string                  `json:"id"`
	Branch             string                  `json:"branch"`
	Register           int                     `json:"register"`
	Number             int                     `json:"number"`
	Status             string                  `json:"status"`
	CashierName        *string                 `json:"cashier_name"`
	InitialCash        decimal.Decimal         `json:"initial_cash"`
	SaleTotals         ShiftTotals             `json:"sale_totals"`
	MovementsNet       decimal.Decimal         `json:"movements_net"`
	CreditPaymentsCash decimal.Decimal         `json:"credit_payments_cash"`
	CreditPaymentsCard decimal.Decimal         `json:"credit_payments_card"`
	Reconciliation     *ReconciliationResponse `json:"reconciliation,omitempty"`
	Notes              *string                 `json:"notes"`
	OpenedAt           string                  `json:"opened_at"`
	ClosedAt           *string                 `json:"closed_at"`
}

type CashMovementResponse struct {
	ID        string          `json:"id"`
	ShiftID   string          `json:"shift_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Notes     *string         `json:"notes"`
	Voided    bool            `json:"voided"`
	CreatedBy string          `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

// ShiftAuditResponse compares the incrementally maintained totals with a
// full refold of the shift's events from the store.
type ShiftAuditResponse struct {
	ExpectedCashProjected decimal.Decimal `json:"expected_cash_projected"`
	ExpectedCashRefolded  decimal.Decimal `json:"expected_cash_refolded"`
	Match                 bool            `json:"match"`
	EventCount            int             `json:"event_count"`
}

type ShiftSummaryResponse struct {
	Shift         ShiftResponse          `json:"shift"`
	CashMovements []CashMovementResponse `json:"cash_movements"`
	SaleCount     int                    `json:"sale_count"`
	Audit         ShiftAuditResponse     `json:"audit"`
}

type ShiftListResponse struct {
	Data  []ShiftResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
