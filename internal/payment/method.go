// Package payment resolves tender descriptors once at the API boundary and
// splits sale totals into drawer buckets. Downstream code only ever sees the
// closed Method variant — never a free-text method string.
package payment

import (
	"github.com/shopspring/decimal"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
)

type Kind int

const (
	Cash Kind = iota
	Card
	Transfer
	Gift
	Mixed
)

func (k Kind) String() string {
	switch k {
	case Cash:
		return "cash"
	case Card:
		return "card"
	case Transfer:
		return "transfer"
	case Gift:
		return "gift"
	case Mixed:
		return "mixed"
	}
	return "unknown"
}

// Method is the resolved tender for one sale. CashAmount/CardAmount are only
// meaningful for Mixed, where they carry the declared split.
type Method struct {
	Kind       Kind
	CashAmount decimal.Decimal
	CardAmount decimal.Decimal
}

// Parse resolves a wire-level method descriptor exactly once. Mixed requires
// both declared sub-amounts to be positive; every other kind rejects them.
func Parse(raw string, cashAmount, cardAmount decimal.Decimal) (Method, error) {
	switch raw {
	case "cash":
		return Method{Kind: Cash}, nil
	case "card":
		return Method{Kind: Card}, nil
	case "transfer":
		return Method{Kind: Transfer}, nil
	case "gift":
		return Method{Kind: Gift}, nil
	case "mixed":
		if cashAmount.LessThanOrEqual(decimal.Zero) || cardAmount.LessThanOrEqual(decimal.Zero) {
			return Method{}, apperr.New(apperr.Validation, "mixed tender requires positive cash_amount and card_amount")
		}
		return Method{Kind: Mixed, CashAmount: cashAmount, CardAmount: cardAmount}, nil
	}
	return Method{}, apperr.Newf(apperr.Validation, "unknown payment method %q", raw)
}

// Epsilon is the currency comparison tolerance: one cent.
var Epsilon = decimal.NewFromFloat(0.01)

// approxEqual reports |a-b| <= Epsilon.
func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// definitelyLess reports a < b beyond the Epsilon tolerance.
func definitelyLess(a, b decimal.Decimal) bool {
	return b.Sub(a).GreaterThan(Epsilon)
}

// RoundMoney normalizes an amount to 2 decimal places, half up, for
// persistence.
func RoundMoney(a decimal.Decimal) decimal.Decimal {
	return a.Round(2)
}
