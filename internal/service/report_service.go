package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
)

// ReportService is the read-only aggregation surface for the UI layer.
// It never mutates anything.
type ReportService interface {
	ShiftSummary(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftSummaryResponse, error)
	ListShifts(ctx context.Context, filter repository.ShiftFilter) (*dto.ShiftListResponse, error)
}

type reportService struct {
	shift     ShiftService
	shiftRepo repository.ShiftRepository
	saleRepo  repository.SaleRepository
}

func NewReportService(shift ShiftService, shiftRepo repository.ShiftRepository, saleRepo repository.SaleRepository) ReportService {
	return &reportService{shift: shift, shiftRepo: shiftRepo, saleRepo: saleRepo}
}

func (s *reportService) ShiftSummary(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftSummaryResponse, error) {
	shift, err := s.shift.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	movements, err := s.shift.ListCashMovements(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	// The refold doubles as a projection audit: a mismatch means the
	// running totals drifted from the event log.
	fold, err := s.shift.RecomputeTotals(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	projected := shift.InitialCash.
		Add(shift.SaleTotals.Cash).
		Add(shift.MovementsNet).
		Add(shift.CreditPaymentsCash)

	return &dto.ShiftSummaryResponse{
		Shift:         *shift,
		CashMovements: movements,
		SaleCount:     len(sales),
		Audit: dto.ShiftAuditResponse{
			ExpectedCashProjected: projected,
			ExpectedCashRefolded:  fold.ExpectedCash,
			Match:                 projected.Equal(fold.ExpectedCash),
			EventCount:            fold.EventCount,
		},
	}, nil
}

func (s *reportService) ListShifts(ctx context.Context, filter repository.ShiftFilter) (*dto.ShiftListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	shifts, total, err := s.shiftRepo.ListShifts(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		items = append(items, *shiftToResponse(&shifts[i]))
	}
	return &dto.ShiftListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
