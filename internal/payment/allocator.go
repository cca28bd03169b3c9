package payment

import (
	"github.com/shopspring/decimal"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
)

// Input describes one sale total to be split into drawer buckets.
type Input struct {
	// Total is the full sale amount, deposit included.
	Total decimal.Decimal
	// Deposit is the container-deposit portion of Total. Deposits are
	// collected in cash only, non-negotiable.
	Deposit decimal.Decimal
	Method  Method
	// AmountReceived is the cash physically handed over. Only read for
	// Kind == Cash.
	AmountReceived decimal.Decimal
	// ClientPresent and AvailableCredit gate shortfall deferral: a cash
	// shortfall can become store credit only for an identified client with
	// room under their limit.
	ClientPresent   bool
	AvailableCredit decimal.Decimal
}

// Allocation is the resolved split. Drawer effect is CashDeposit +
// CashProducts; Card/Transfer settle outside the drawer; Gift is recorded
// for audit with zero drawer effect.
type Allocation struct {
	CashDeposit  decimal.Decimal
	CashProducts decimal.Decimal
	Card         decimal.Decimal
	Transfer     decimal.Decimal
	Gift         decimal.Decimal
	// Credit is the cash shortfall deferred to the client's store credit.
	Credit decimal.Decimal
	// Change is cash returned to the client (cash tender only).
	Change decimal.Decimal
}

// CashTotal is the total landing in the drawer.
func (a Allocation) CashTotal() decimal.Decimal {
	return a.CashDeposit.Add(a.CashProducts)
}

// Allocate splits in.Total into tender buckets, enforcing the deposit and
// mixed-tender rules. All comparisons tolerate the one-cent Epsilon.
func Allocate(in Input) (Allocation, error) {
	if in.Total.IsNegative() || in.Deposit.IsNegative() {
		return Allocation{}, apperr.New(apperr.Validation, "amounts must be non-negative")
	}
	if in.Deposit.GreaterThan(in.Total.Add(Epsilon)) {
		return Allocation{}, apperr.New(apperr.Validation, "deposit exceeds sale total")
	}

	switch in.Method.Kind {
	case Cash:
		return allocateCash(in)
	case Card, Transfer:
		if in.Deposit.GreaterThan(decimal.Zero) {
			return Allocation{}, apperr.New(apperr.Validation, "container deposits must be paid in cash")
		}
		if in.Method.Kind == Card {
			return Allocation{Card: in.Total}, nil
		}
		return Allocation{Transfer: in.Total}, nil
	case Gift:
		if in.Deposit.GreaterThan(decimal.Zero) {
			return Allocation{}, apperr.New(apperr.Validation, "container deposits must be paid in cash")
		}
		return Allocation{Gift: in.Total}, nil
	case Mixed:
		return allocateMixed(in)
	}
	return Allocation{}, apperr.New(apperr.Validation, "unresolved payment method")
}

func allocateCash(in Input) (Allocation, error) {
	received := in.AmountReceived
	if definitelyLess(received, in.Deposit) {
		// Deposits can never ride on store credit.
		return Allocation{}, apperr.New(apperr.Validation, "cash received does not cover the container deposit")
	}

	if !definitelyLess(received, in.Total) {
		// Within the tolerance, received may sit a fraction under Total;
		// change is money handed back and can never go negative.
		change := received.Sub(in.Total)
		if change.IsNegative() {
			change = decimal.Zero
		}
		return Allocation{
			CashDeposit:  in.Deposit,
			CashProducts: in.Total.Sub(in.Deposit),
			Change:       change,
		}, nil
	}

	// Shortfall: defer to store credit when the client has room.
	shortfall := in.Total.Sub(received)
	if !in.ClientPresent || shortfall.GreaterThan(in.AvailableCredit.Add(Epsilon)) {
		return Allocation{}, apperr.Newf(apperr.InsufficientFunds,
			"cash received %s short of total %s and shortfall exceeds available credit",
			received.StringFixed(2), in.Total.StringFixed(2))
	}
	return Allocation{
		CashDeposit:  in.Deposit,
		CashProducts: received.Sub(in.Deposit),
		Credit:       shortfall,
	}, nil
}

func allocateMixed(in Input) (Allocation, error) {
	cash, card := in.Method.CashAmount, in.Method.CardAmount
	if definitelyLess(cash, in.Deposit) {
		return Allocation{}, apperr.New(apperr.Validation, "mixed tender cash portion below the container deposit")
	}
	if !approxEqual(cash.Add(card), in.Total) {
		return Allocation{}, apperr.Newf(apperr.Validation,
			"mixed tender %s + %s does not equal total %s",
			cash.StringFixed(2), card.StringFixed(2), in.Total.StringFixed(2))
	}
	return Allocation{
		CashDeposit:  in.Deposit,
		CashProducts: cash.Sub(in.Deposit),
		Card:         card,
	}, nil
}
