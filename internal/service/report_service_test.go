package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/model"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
)

func TestShiftSummary(t *testing.T) {
	f := newShiftFixture()
	report := NewReportService(f.svc, f.shiftRepo, f.saleRepo)
	ctx := context.Background()
	opened := f.open(t, "1000")
	shiftID := uuid.MustParse(opened.ID)

	sale := &model.Sale{
		Number: 1, Branch: "central", Register: 1, ShiftID: shiftID,
		Total: d("150"), Method: "cash",
		Payments: []model.SalePayment{{Method: "cash", Amount: d("150")}},
	}
	require.NoError(t, f.saleRepo.Create(ctx, nil, sale))
	require.NoError(t, f.svc.RecordSaleTx(nil, shiftID, BucketDelta{Cash: d("150")}))

	_, err := f.svc.RecordCashMovement(ctx, dto.CashMovementRequest{
		ShiftID: opened.ID, Type: model.MovementOut, Amount: d("50"), Reason: "cash drop to safe",
	})
	require.NoError(t, err)

	summary, err := report.ShiftSummary(ctx, shiftID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SaleCount)
	assert.Len(t, summary.CashMovements, 1)
	assert.True(t, summary.Audit.Match)
	assert.True(t, summary.Audit.ExpectedCashProjected.Equal(d("1100")))
	assert.True(t, summary.Audit.ExpectedCashRefolded.Equal(d("1100")))
	assert.Equal(t, 2, summary.Audit.EventCount)

	_, err = report.ShiftSummary(ctx, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestListShifts(t *testing.T) {
	f := newShiftFixture()
	report := NewReportService(f.svc, f.shiftRepo, f.saleRepo)
	ctx := context.Background()

	first := f.open(t, "100")
	_, err := f.svc.Close(ctx, dto.CloseShiftRequest{ShiftID: first.ID, FinalCash: d("100")})
	require.NoError(t, err)
	f.open(t, "200")

	all, err := report.ListShifts(ctx, repository.ShiftFilter{Branch: "central"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	open, err := report.ListShifts(ctx, repository.ShiftFilter{Branch: "central", Status: model.ShiftOpen})
	require.NoError(t, err)
	require.Equal(t, int64(1), open.Total)
	assert.Equal(t, 2, open.Data[0].Number)
}
