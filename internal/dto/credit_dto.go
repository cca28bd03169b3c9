package dto

import "github.com/shopspring/decimal"

type CreditResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	ClientName      *string         `json:"client_name"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	SourceSaleID    *string         `json:"source_sale_id"`
	CreatedAt       string          `json:"created_at"`
	PaidAt          *string         `json:"paid_at"`
}

type CreditSummaryResponse struct {
	ClientID     string           `json:"client_id"`
	Credits      []CreditResponse `json:"credits"`
	TotalPending decimal.Decimal  `json:"total_pending"`
	// AvailableCredit = credit_limit - total_pending, floored at zero.
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
}
