package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/model"
	"github.com/IngCuriel/MariamPos-sub000/internal/payment"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
)

// BucketDelta is one sale's contribution to a shift's per-tender running
// totals, as produced by the payment allocator.
type BucketDelta struct {
	Cash     decimal.Decimal
	Card     decimal.Decimal
	Transfer decimal.Decimal
	Other    decimal.Decimal
}

type ShiftService interface {
	Open(ctx context.Context, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	// GetActive returns the OPEN shift for (branch, register), or nil when
	// the register has none.
	GetActive(ctx context.Context, branch string, register int) (*dto.ShiftResponse, error)
	Get(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error)
	Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	Cancel(ctx context.Context, req dto.CancelShiftRequest) (*dto.ShiftResponse, error)

	RecordCashMovement(ctx context.Context, req dto.CashMovementRequest) (*dto.CashMovementResponse, error)
	// DeleteCashMovement voids a movement while its shift is still OPEN and
	// reverses its effect on the running total. The row stays in the ledger.
	DeleteCashMovement(ctx context.Context, movementID uuid.UUID) error
	ListCashMovements(ctx context.Context, shiftID uuid.UUID) ([]dto.CashMovementResponse, error)

	// RecordSaleTx folds an allocated sale into the shift's buckets. Runs
	// inside the caller's transaction; the shift row is locked first.
	RecordSaleTx(tx *gorm.DB, shiftID uuid.UUID, delta BucketDelta) error
	// RecordCreditPaymentTx folds a collected repayment into the shift's
	// drawer (cash or card bucket) inside the caller's transaction.
	RecordCreditPaymentTx(tx *gorm.DB, shiftID uuid.UUID, amount decimal.Decimal, method string) error

	// RecomputeTotals refolds every event attributed to the shift in
	// (created_at, id) order — the audit/recovery path. It never writes.
	RecomputeTotals(ctx context.Context, shiftID uuid.UUID) (*ShiftFold, error)
}

// ShiftFold is the result of replaying a shift's events from the store.
type ShiftFold struct {
	SaleCash           decimal.Decimal
	SaleCard           decimal.Decimal
	SaleTransfer       decimal.Decimal
	SaleOther          decimal.Decimal
	MovementsNet       decimal.Decimal
	CreditPaymentsCash decimal.Decimal
	CreditPaymentsCard decimal.Decimal
	ExpectedCash       decimal.Decimal
	EventCount         int
}

type shiftService struct {
	repo       repository.ShiftRepository
	saleRepo   repository.SaleRepository
	creditRepo repository.CreditRepository
}

func NewShiftService(repo repository.ShiftRepository, saleRepo repository.SaleRepository, creditRepo repository.CreditRepository) ShiftService {
	return &shiftService{repo: repo, saleRepo: saleRepo, creditRepo: creditRepo}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *shiftService) Open(ctx context.Context, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if req.InitialCash.IsNegative() {
		return nil, apperr.New(apperr.Validation, "initial cash must be >= 0")
	}

	// Friendly pre-check. The partial unique index remains the authoritative
	// guard against a concurrent open from another terminal.
	if existing, err := s.repo.FindOpenShift(ctx, req.Branch, req.Register); err == nil && existing != nil {
		return nil, apperr.Newf(apperr.Conflict,
			"register %s/%d already has open shift #%d", req.Branch, req.Register, existing.Number)
	}

	var shift model.Shift
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextShiftNumber(ctx, tx, req.Branch, req.Register)
		if err != nil {
			return err
		}
		shift = model.Shift{
			Branch:      req.Branch,
			Register:    req.Register,
			Number:      number,
			Status:      model.ShiftOpen,
			CashierName: req.CashierName,
			InitialCash: payment.RoundMoney(req.InitialCash),
			OpenedAt:    time.Now(),
		}
		return s.repo.CreateShift(ctx, tx, &shift)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.Conflict,
				"register %s/%d already has an open shift", req.Branch, req.Register)
		}
		return nil, txErr
	}

	return shiftToResponse(&shift), nil
}

// ── Lookups ───────────────────────────────────────────────────────────────────

func (s *shiftService) GetActive(ctx context.Context, branch string, register int) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpenShift(ctx, branch, register)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if shift == nil {
		return nil, nil
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) Get(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindShiftByID(ctx, shiftID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "shift not found", err)
	}
	return shiftToResponse(shift), nil
}

// ── Close / Cancel ────────────────────────────────────────────────────────────

// Close freezes the shift and performs the reconciliation:
//
//	expected = initial + cash sales + net manual movements + cash credit payments
//	difference = counted - expected  (positive surplus, negative shortage)
//
// The OPEN check inside the locked read makes a second close fail with
// Conflict regardless of interleaving.
func (s *shiftService) Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	if req.FinalCash.IsNegative() {
		return nil, apperr.New(apperr.Validation, "final cash must be >= 0")
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid shift_id", err)
	}

	var shift *model.Shift
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		shift, err = s.repo.FindShiftByIDTx(tx, shiftID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "shift not found", err)
		}
		if shift.Status != model.ShiftOpen {
			return apperr.Newf(apperr.Conflict, "shift #%d is %s, not OPEN", shift.Number, shift.Status)
		}

		expected := expectedCash(shift)
		finalCash := payment.RoundMoney(req.FinalCash)
		difference := finalCash.Sub(expected)

		now := time.Now()
		shift.Status = model.ShiftClosed
		shift.FinalCash = &finalCash
		shift.ExpectedCash = &expected
		shift.Difference = &difference
		shift.Notes = req.Notes
		shift.ClosedAt = &now
		return s.repo.UpdateShiftTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}
	return shiftToResponse(shift), nil
}

// Cancel is the abnormal terminal transition. The expected cash is computed
// and frozen for the audit trail, but no counted amount exists, so the
// reconciliation difference stays unset.
func (s *shiftService) Cancel(ctx context.Context, req dto.CancelShiftRequest) (*dto.ShiftResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid shift_id", err)
	}

	var shift *model.Shift
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		shift, err = s.repo.FindShiftByIDTx(tx, shiftID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "shift not found", err)
		}
		if shift.Status != model.ShiftOpen {
			return apperr.Newf(apperr.Conflict, "shift #%d is %s, not OPEN", shift.Number, shift.Status)
		}

		expected := expectedCash(shift)
		now := time.Now()
		shift.Status = model.ShiftCancelled
		shift.ExpectedCash = &expected
		shift.Notes = &req.Reason
		shift.ClosedAt = &now
		return s.repo.UpdateShiftTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}
	return shiftToResponse(shift), nil
}

func expectedCash(shift *model.Shift) decimal.Decimal {
	return shift.InitialCash.
		Add(shift.TotalCash).
		Add(shift.MovementsNet).
		Add(shift.CreditPaymentsCash)
}

// ── Manual cash movements ─────────────────────────────────────────────────────

func (s *shiftService) RecordCashMovement(ctx context.Context, req dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.Validation, "movement amount must be > 0")
	}
	if req.Reason == "" {
		return nil, apperr.New(apperr.Validation, "movement reason is required")
	}
	if req.Type != model.MovementIn && req.Type != model.MovementOut {
		return nil, apperr.Newf(apperr.Validation, "unknown movement type %q", req.Type)
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid shift_id", err)
	}

	mov := model.CashMovement{
		ShiftID:   shiftID,
		Type:      req.Type,
		Amount:    payment.RoundMoney(req.Amount),
		Reason:    req.Reason,
		Notes:     req.Notes,
		CreatedBy: req.Actor,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		shift, err := s.repo.FindShiftByIDTx(tx, shiftID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "shift not found", err)
		}
		if shift.Status != model.ShiftOpen {
			return apperr.Newf(apperr.Conflict, "shift #%d is %s, not OPEN", shift.Number, shift.Status)
		}

		// Append first, then fold. Both become durable at commit.
		if err := s.repo.CreateCashMovementTx(tx, &mov); err != nil {
			return err
		}
		// No negative-balance guard: an overdrawn drawer is surfaced by the
		// close-time difference, not blocked here.
		shift.MovementsNet = shift.MovementsNet.Add(mov.Signed())
		return s.repo.UpdateShiftTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := cashMovementToResponse(&mov)
	return &resp, nil
}

func (s *shiftService) DeleteCashMovement(ctx context.Context, movementID uuid.UUID) error {
	mov, err := s.repo.FindCashMovementByID(ctx, movementID)
	if err != nil {
		return apperr.Wrap(apperr.NotFound, "cash movement not found", err)
	}
	if mov.Voided {
		return apperr.New(apperr.Conflict, "cash movement is already voided")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		shift, err := s.repo.FindShiftByIDTx(tx, mov.ShiftID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "shift not found", err)
		}
		if shift.Status != model.ShiftOpen {
			return apperr.New(apperr.Conflict, "cash movements can only be deleted while the shift is OPEN")
		}
		if err := s.repo.VoidCashMovementTx(tx, movementID); err != nil {
			return err
		}
		shift.MovementsNet = shift.MovementsNet.Sub(mov.Signed())
		return s.repo.UpdateShiftTx(tx, shift)
	})
}

func (s *shiftService) ListCashMovements(ctx context.Context, shiftID uuid.UUID) ([]dto.CashMovementResponse, error) {
	movs, err := s.repo.ListCashMovements(ctx, shiftID, true)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashMovementResponse, 0, len(movs))
	for i := range movs {
		out = append(out, cashMovementToResponse(&movs[i]))
	}
	return out, nil
}

// ── Folds from collaborators ──────────────────────────────────────────────────

func (s *shiftService) RecordSaleTx(tx *gorm.DB, shiftID uuid.UUID, delta BucketDelta) error {
	shift, err := s.repo.FindShiftByIDTx(tx, shiftID)
	if err != nil {
		return apperr.Wrap(apperr.NotFound, "shift not found", err)
	}
	if shift.Status != model.ShiftOpen {
		return apperr.Newf(apperr.NotFound, "no open shift %s", shiftID)
	}
	shift.TotalCash = shift.TotalCash.Add(delta.Cash)
	shift.TotalCard = shift.TotalCard.Add(delta.Card)
	shift.TotalTransfer = shift.TotalTransfer.Add(delta.Transfer)
	shift.TotalOther = shift.TotalOther.Add(delta.Other)
	return s.repo.UpdateShiftTx(tx, shift)
}

func (s *shiftService) RecordCreditPaymentTx(tx *gorm.DB, shiftID uuid.UUID, amount decimal.Decimal, method string) error {
	shift, err := s.repo.FindShiftByIDTx(tx, shiftID)
	if err != nil {
		return apperr.Wrap(apperr.NotFound, "shift not found", err)
	}
	if shift.Status != model.ShiftOpen {
		return apperr.Newf(apperr.Conflict, "shift #%d is %s, not OPEN", shift.Number, shift.Status)
	}
	switch method {
	case "cash":
		shift.CreditPaymentsCash = shift.CreditPaymentsCash.Add(amount)
	case "card":
		shift.CreditPaymentsCard = shift.CreditPaymentsCard.Add(amount)
	default:
		return apperr.Newf(apperr.Validation, "credit payments accept cash or card, got %q", method)
	}
	return s.repo.UpdateShiftTx(tx, shift)
}

// ── Recompute (audit path) ────────────────────────────────────────────────────

// shiftEvent is the uniform view of anything foldable into a shift total.
type shiftEvent struct {
	createdAt time.Time
	id        uuid.UUID
	apply     func(*ShiftFold)
}

func (s *shiftService) RecomputeTotals(ctx context.Context, shiftID uuid.UUID) (*ShiftFold, error) {
	if _, err := s.repo.FindShiftByID(ctx, shiftID); err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "shift not found", err)
	}

	sales, err := s.saleRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListCashMovements(ctx, shiftID, false)
	if err != nil {
		return nil, err
	}
	creditPays, err := s.creditRepo.ListPaymentsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	events := make([]shiftEvent, 0, len(sales)+len(movs)+len(creditPays))
	for i := range sales {
		sale := sales[i]
		events = append(events, shiftEvent{sale.CreatedAt, sale.ID, func(f *ShiftFold) {
			for _, p := range sale.Payments {
				switch p.Method {
				case "cash":
					f.SaleCash = f.SaleCash.Add(p.Amount)
				case "card":
					f.SaleCard = f.SaleCard.Add(p.Amount)
				case "transfer":
					f.SaleTransfer = f.SaleTransfer.Add(p.Amount)
				default:
					f.SaleOther = f.SaleOther.Add(p.Amount)
				}
			}
		}})
	}
	for i := range movs {
		mov := movs[i]
		events = append(events, shiftEvent{mov.CreatedAt, mov.ID, func(f *ShiftFold) {
			f.MovementsNet = f.MovementsNet.Add(mov.Signed())
		}})
	}
	for i := range creditPays {
		pay := creditPays[i]
		events = append(events, shiftEvent{pay.CreatedAt, pay.ID, func(f *ShiftFold) {
			if pay.Method == "card" {
				f.CreditPaymentsCard = f.CreditPaymentsCard.Add(pay.Amount)
			} else {
				f.CreditPaymentsCash = f.CreditPaymentsCash.Add(pay.Amount)
			}
		}})
	}

	// Tie-break on id keeps the replay deterministic for same-instant events.
	sort.Slice(events, func(i, j int) bool {
		if events[i].createdAt.Equal(events[j].createdAt) {
			return events[i].id.String() < events[j].id.String()
		}
		return events[i].createdAt.Before(events[j].createdAt)
	})

	fold := &ShiftFold{EventCount: len(events)}
	for _, ev := range events {
		ev.apply(fold)
	}

	shift, err := s.repo.FindShiftByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	fold.ExpectedCash = shift.InitialCash.
		Add(fold.SaleCash).
		Add(fold.MovementsNet).
		Add(fold.CreditPaymentsCash)
	return fold, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func shiftToResponse(shift *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:          shift.ID.String(),
		Branch:      shift.Branch,
		Register:    shift.Register,
		Number:      shift.Number,
		Status:      shift.Status,
		CashierName: shift.CashierName,
		InitialCash: shift.InitialCash,
		SaleTotals: dto.ShiftTotals{
			Cash:     shift.TotalCash,
			Card:     shift.TotalCard,
			Transfer: shift.TotalTransfer,
			Other:    shift.TotalOther,
		},
		MovementsNet:       shift.MovementsNet,
		CreditPaymentsCash: shift.CreditPaymentsCash,
		CreditPaymentsCard: shift.CreditPaymentsCard,
		Notes:              shift.Notes,
		OpenedAt:           shift.OpenedAt.UTC().Format(time.RFC3339),
	}
	if shift.FinalCash != nil && shift.ExpectedCash != nil && shift.Difference != nil {
		resp.Reconciliation = &dto.ReconciliationResponse{
			ExpectedCash: *shift.ExpectedCash,
			FinalCash:    *shift.FinalCash,
			Difference:   *shift.Difference,
		}
	}
	if shift.ClosedAt != nil {
		t := shift.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func cashMovementToResponse(m *model.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:        m.ID.String(),
		ShiftID:   m.ShiftID.String(),
		Type:      m.Type,
		Amount:    m.Amount,
		Reason:    m.Reason,
		Notes:     m.Notes,
		Voided:    m.Voided,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
