package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type RegisterSaleRequest struct {
	Branch   string            `json:"branch"   validate:"required,min=1"`
	Register int               `json:"register" validate:"required,min=1"`
	Items    []SaleItemRequest `json:"items"    validate:"required,min=1,dive"`

	// Method: cash | card | transfer | gift | mixed. Resolved once into the
	// payment.Method variant — never re-parsed downstream.
	Method string `json:"method" validate:"required,oneof=cash card transfer gift mixed"`
	// AmountReceived: cash handed over (cash tender only).
	AmountReceived decimal.Decimal `json:"amount_received" validate:"min=0"`
	// CashAmount / CardAmount: declared split for mixed tender.
	CashAmount decimal.Decimal `json:"cash_amount" validate:"min=0"`
	CardAmount decimal.Decimal `json:"card_amount" validate:"min=0"`

	ClientID   *string         `json:"client_id" validate:"omitempty,uuid"`
	ClientName *string         `json:"client_name"`
	// CreditLimit is the caller-resolved limit for ClientID, bounding any
	// shortfall deferral.
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"min=0"`

	Actor string `json:"actor"`
}

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type AllocationResponse struct {
	CashDeposit  decimal.Decimal `json:"cash_deposit"`
	CashProducts decimal.Decimal `json:"cash_products"`
	Card         decimal.Decimal `json:"card"`
	Transfer     decimal.Decimal `json:"transfer"`
	Gift         decimal.Decimal `json:"gift"`
	Credit       decimal.Decimal `json:"credit"`
	Change       decimal.Decimal `json:"change"`
}

type SaleResponse struct {
	ID         string             `json:"id"`
	Number     int                `json:"number"`
	ShiftID    string             `json:"shift_id"`
	Total      decimal.Decimal    `json:"total"`
	Deposit    decimal.Decimal    `json:"deposit"`
	Method     string             `json:"method"`
	Items      []SaleItemResponse `json:"items"`
	Allocation AllocationResponse `json:"allocation"`
	// Warnings surface non-fatal downstream failures (e.g. an inventory
	// movement that could not be applied). The sale itself is never undone.
	Warnings  []string `json:"warnings,omitempty"`
	CreatedAt string   `json:"created_at"`
}
