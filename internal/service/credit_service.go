package service

import (
	"context"
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

type CreditService interface {
	// IssueTx creates a PENDING credit inside the caller's transaction —
	// used by sale registration when the allocator approves a shortfall.
	IssueTx(tx *gorm.DB, clientID uuid.UUID, clientName *string, amount decimal.Decimal, sourceSaleID *uuid.UUID) (*model.ClientCredit, error)
	// Pay applies a repayment: the only mutator a ClientCredit ever sees.
	// The collected money is folded into the collecting shift's drawer in
	// the same transaction.
	Pay(ctx context.Context, req dto.CreditPaymentRequest) (*dto.CreditResponse, error)
	// AvailableCredit is creditLimit minus the remaining amounts of all
	// open credits. May be negative when a limit was lowered after issuance.
	AvailableCredit(ctx context.Context, clientID uuid.UUID, creditLimit decimal.Decimal) (decimal.Decimal, error)
	Summary(ctx context.Context, clientID uuid.UUID, creditLimit decimal.Decimal) (*dto.CreditSummaryResponse, error)
}

type creditService struct {
	repo  repository.CreditRepository
	shift ShiftService
}

func NewCreditService(repo repository.CreditRepository, shift ShiftService) CreditService {
	return &creditService{repo: repo, shift: shift}
}

func (s *creditService) IssueTx(tx *gorm.DB, clientID uuid.UUID, clientName *string, amount decimal.Decimal, sourceSaleID *uuid.UUID) (*model.ClientCredit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.Validation, "credit amount must be > 0")
	}
	amount = payment.RoundMoney(amount)
	credit := &model.ClientCredit{
		ClientID:        clientID,
		ClientName:      clientName,
		OriginalAmount:  amount,
		PaidAmount:      decimal.Zero,
		RemainingAmount: amount,
		Status:          model.CreditPending,
		SourceSaleID:    sourceSaleID,
	}
	if err := s.repo.CreateCreditTx(tx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

func (s *creditService) Pay(ctx context.Context, req dto.CreditPaymentRequest) (*dto.CreditResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.Validation, "payment amount must be > 0")
	}
	creditID, err := uuid.Parse(req.CreditID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid credit_id", err)
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid shift_id", err)
	}
	amount := payment.RoundMoney(req.Amount)

	var credit *model.ClientCredit
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		credit, err = s.repo.FindCreditByIDTx(tx, creditID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "credit not found", err)
		}
		if credit.Status == model.CreditPaid {
			return apperr.New(apperr.Conflict, "credit is already fully paid")
		}
		if amount.Sub(credit.RemainingAmount).GreaterThan(payment.Epsilon) {
			return apperr.Newf(apperr.Validation,
				"payment %s exceeds remaining amount %s",
				amount.StringFixed(2), credit.RemainingAmount.StringFixed(2))
		}

		// Append the payment event first, then fold the aggregate.
		pay := &model.CreditPayment{
			CreditID: creditID,
			ShiftID:  shiftID,
			Amount:   amount,
			Method:   req.Method,
		}
		if err := s.repo.CreatePaymentTx(tx, pay); err != nil {
			return err
		}

		credit.PaidAmount = credit.PaidAmount.Add(amount)
		credit.RemainingAmount = credit.OriginalAmount.Sub(credit.PaidAmount)
		// Status is derived, never hand-set from the outside.
		if credit.RemainingAmount.Abs().LessThanOrEqual(payment.Epsilon) {
			credit.RemainingAmount = decimal.Zero
			credit.Status = model.CreditPaid
			now := time.Now()
			credit.PaidAt = &now
		} else {
			credit.Status = model.CreditPartiallyPaid
		}
		if err := s.repo.UpdateCreditTx(tx, credit); err != nil {
			return err
		}

		// Same drawer effect as sale revenue, reported separately.
		return s.shift.RecordCreditPaymentTx(tx, shiftID, amount, req.Method)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := creditToResponse(credit)
	return &resp, nil
}

func (s *creditService) AvailableCredit(ctx context.Context, clientID uuid.UUID, creditLimit decimal.Decimal) (decimal.Decimal, error) {
	pending, err := s.pendingTotal(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return creditLimit.Sub(pending), nil
}

func (s *creditService) pendingTotal(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	credits, err := s.repo.ListOpenByClient(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range credits {
		total = total.Add(credits[i].RemainingAmount)
	}
	return total, nil
}

func (s *creditService) Summary(ctx context.Context, clientID uuid.UUID, creditLimit decimal.Decimal) (*dto.CreditSummaryResponse, error) {
	credits, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CreditResponse, 0, len(credits))
	pending := decimal.Zero
	for i := range credits {
		out = append(out, creditToResponse(&credits[i]))
		if credits[i].Open() {
			pending = pending.Add(credits[i].RemainingAmount)
		}
	}

	available := creditLimit.Sub(pending)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &dto.CreditSummaryResponse{
		ClientID:        clientID.String(),
		Credits:         out,
		TotalPending:    pending,
		CreditLimit:     creditLimit,
		AvailableCredit: available,
	}, nil
}

func creditToResponse(c *model.ClientCredit) dto.CreditResponse {
	resp := dto.CreditResponse{
		ID:              c.ID.String(),
		ClientID:        c.ClientID.String(),
		ClientName:      c.ClientName,
		OriginalAmount:  c.OriginalAmount,
		PaidAmount:      c.PaidAmount,
		RemainingAmount: c.RemainingAmount,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.SourceSaleID != nil {
		id := c.SourceSaleID.String()
		resp.SourceSaleID = &id
	}
	if c.PaidAt != nil {
		t := c.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &t
	}
	return resp
}
