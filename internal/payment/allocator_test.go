package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestParse(t *testing.T) {
	t.Run("simple kinds", func(t *testing.T) {
		for raw, kind := range map[string]Kind{
			"cash": Cash, "card": Card, "transfer": Transfer, "gift": Gift,
		} {
			m, err := Parse(raw, decimal.Zero, decimal.Zero)
			require.NoError(t, err)
			assert.Equal(t, kind, m.Kind)
		}
	})

	t.Run("mixed requires positive split", func(t *testing.T) {
		_, err := Parse("mixed", d("0"), d("40"))
		assert.True(t, apperr.IsKind(err, apperr.Validation))

		m, err := Parse("mixed", d("60"), d("40"))
		require.NoError(t, err)
		assert.Equal(t, Mixed, m.Kind)
		assert.True(t, m.CashAmount.Equal(d("60")))
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := Parse("cheque", decimal.Zero, decimal.Zero)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})
}

func TestAllocateCash(t *testing.T) {
	t.Run("exact payment splits deposit from products", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:          d("100"),
			Deposit:        d("20"),
			Method:         Method{Kind: Cash},
			AmountReceived: d("100"),
		})
		require.NoError(t, err)
		assert.True(t, alloc.CashDeposit.Equal(d("20")))
		assert.True(t, alloc.CashProducts.Equal(d("80")))
		assert.True(t, alloc.Change.IsZero())
		assert.True(t, alloc.CashTotal().Equal(d("100")))
	})

	t.Run("overpayment returns change", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:          d("100"),
			Method:         Method{Kind: Cash},
			AmountReceived: d("150"),
		})
		require.NoError(t, err)
		assert.True(t, alloc.Change.Equal(d("50")))
	})

	t.Run("one-cent underpayment settles with zero change", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:          d("100"),
			Method:         Method{Kind: Cash},
			AmountReceived: d("99.995"),
		})
		require.NoError(t, err)
		assert.True(t, alloc.Change.IsZero())
		assert.True(t, alloc.Credit.IsZero())
		assert.True(t, alloc.CashTotal().Equal(d("100")))
	})

	t.Run("cash below deposit is rejected", func(t *testing.T) {
		_, err := Allocate(Input{
			Total:          d("100"),
			Deposit:        d("20"),
			Method:         Method{Kind: Cash},
			AmountReceived: d("15"),
			ClientPresent:  true,
			AvailableCredit: d("1000"),
		})
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("shortfall becomes credit for identified client", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:           d("250"),
			Method:          Method{Kind: Cash},
			AmountReceived:  d("100"),
			ClientPresent:   true,
			AvailableCredit: d("300"),
		})
		require.NoError(t, err)
		assert.True(t, alloc.Credit.Equal(d("150")))
		assert.True(t, alloc.CashProducts.Equal(d("100")))
		assert.True(t, alloc.Change.IsZero())
	})

	t.Run("shortfall without client is insufficient funds", func(t *testing.T) {
		_, err := Allocate(Input{
			Total:          d("250"),
			Method:         Method{Kind: Cash},
			AmountReceived: d("100"),
		})
		assert.True(t, apperr.IsKind(err, apperr.InsufficientFunds))
	})

	t.Run("shortfall beyond available credit is insufficient funds", func(t *testing.T) {
		_, err := Allocate(Input{
			Total:           d("250"),
			Method:          Method{Kind: Cash},
			AmountReceived:  d("100"),
			ClientPresent:   true,
			AvailableCredit: d("149.98"),
		})
		assert.True(t, apperr.IsKind(err, apperr.InsufficientFunds))
	})

	t.Run("deposit still cash-covered when the rest defers", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:           d("100"),
			Deposit:         d("20"),
			Method:          Method{Kind: Cash},
			AmountReceived:  d("30"),
			ClientPresent:   true,
			AvailableCredit: d("100"),
		})
		require.NoError(t, err)
		assert.True(t, alloc.CashDeposit.Equal(d("20")))
		assert.True(t, alloc.CashProducts.Equal(d("10")))
		assert.True(t, alloc.Credit.Equal(d("70")))
	})
}

func TestAllocateCardTransferGift(t *testing.T) {
	t.Run("card takes the full total", func(t *testing.T) {
		alloc, err := Allocate(Input{Total: d("80"), Method: Method{Kind: Card}})
		require.NoError(t, err)
		assert.True(t, alloc.Card.Equal(d("80")))
		assert.True(t, alloc.CashTotal().IsZero())
	})

	t.Run("transfer takes the full total", func(t *testing.T) {
		alloc, err := Allocate(Input{Total: d("80"), Method: Method{Kind: Transfer}})
		require.NoError(t, err)
		assert.True(t, alloc.Transfer.Equal(d("80")))
	})

	t.Run("gift has zero drawer effect", func(t *testing.T) {
		alloc, err := Allocate(Input{Total: d("80"), Method: Method{Kind: Gift}})
		require.NoError(t, err)
		assert.True(t, alloc.Gift.Equal(d("80")))
		assert.True(t, alloc.CashTotal().IsZero())
		assert.True(t, alloc.Card.IsZero())
	})

	t.Run("deposits reject non-cash tender", func(t *testing.T) {
		for _, kind := range []Kind{Card, Transfer, Gift} {
			_, err := Allocate(Input{Total: d("100"), Deposit: d("20"), Method: Method{Kind: kind}})
			assert.True(t, apperr.IsKind(err, apperr.Validation), "kind %s", kind)
		}
	})
}

func TestAllocateMixed(t *testing.T) {
	t.Run("declared split must sum to total", func(t *testing.T) {
		_, err := Allocate(Input{
			Total:  d("100"),
			Method: Method{Kind: Mixed, CashAmount: d("50"), CardAmount: d("40")},
		})
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("cash portion must cover the deposit", func(t *testing.T) {
		_, err := Allocate(Input{
			Total:   d("100"),
			Deposit: d("30"),
			Method:  Method{Kind: Mixed, CashAmount: d("20"), CardAmount: d("80")},
		})
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("valid split lands in both buckets", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:   d("100"),
			Deposit: d("20"),
			Method:  Method{Kind: Mixed, CashAmount: d("60"), CardAmount: d("40")},
		})
		require.NoError(t, err)
		assert.True(t, alloc.CashDeposit.Equal(d("20")))
		assert.True(t, alloc.CashProducts.Equal(d("40")))
		assert.True(t, alloc.Card.Equal(d("40")))
	})

	t.Run("one-cent drift is tolerated", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Total:  d("100"),
			Method: Method{Kind: Mixed, CashAmount: d("59.99"), CardAmount: d("40")},
		})
		require.NoError(t, err)
		assert.True(t, alloc.Card.Equal(d("40")))
	})
}

func TestAllocateValidation(t *testing.T) {
	t.Run("negative amounts", func(t *testing.T) {
		_, err := Allocate(Input{Total: d("-1"), Method: Method{Kind: Cash}})
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("deposit above total", func(t *testing.T) {
		_, err := Allocate(Input{Total: d("10"), Deposit: d("20"), Method: Method{Kind: Cash}, AmountReceived: d("30")})
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})
}
