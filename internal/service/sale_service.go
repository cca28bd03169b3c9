package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/model"
	"github.com/IngCuriel/MariamPos-sub000/internal/payment"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
)

type SaleService interface {
	Register(ctx context.Context, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	productRepo repository.ProductRepository
	shift       ShiftService
	credit      CreditService
	inventory   InventoryService
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	shift ShiftService,
	credit CreditService,
	inventory InventoryService,
) SaleService {
	return &saleService{
		repo:        repo,
		productRepo: productRepo,
		shift:       shift,
		credit:      credit,
		inventory:   inventory,
	}
}

// ── Register ──────────────────────────────────────────────────────────────────
// Flow:
//  1. Resolve the register's OPEN shift and the tender variant.
//  2. Resolve products and totals (pre-flight, outside the tx).
//  3. Allocate the payment into drawer buckets.
//  4. TX: sale number, create sale + items + payment rows, fold the shift
//     buckets, issue the shortfall credit if approved.
//  5. AFTER COMMIT: apply inventory movements. A failure there is returned
//     as a warning — the sale is never undone by a downstream ledger error.

func (s *saleService) Register(ctx context.Context, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	method, err := payment.Parse(req.Method, req.CashAmount, req.CardAmount)
	if err != nil {
		return nil, err
	}

	active, err := s.shift.GetActive(ctx, req.Branch, req.Register)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apperr.Newf(apperr.Conflict, "no open shift on register %s/%d", req.Branch, req.Register)
	}
	shiftID, err := uuid.Parse(active.ID)
	if err != nil {
		return nil, err
	}

	var clientID *uuid.UUID
	if req.ClientID != nil {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid client_id", err)
		}
		clientID = &id
	}

	// Pre-flight resolve: prices, deposit, totals.
	type resolvedItem struct {
		product  *model.Product
		quantity int
		subtotal decimal.Decimal
	}
	resolved := make([]resolvedItem, 0, len(req.Items))
	total := decimal.Zero
	deposit := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid product_id", err)
		}
		if item.Quantity < 1 {
			return nil, apperr.New(apperr.Validation, "item quantity must be >= 1")
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apperr.Newf(apperr.NotFound, "product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, apperr.Newf(apperr.Validation, "product %s is inactive", p.Name)
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineSubtotal := p.Price.Mul(qty)
		lineDeposit := p.DepositPrice.Mul(qty)
		total = total.Add(lineSubtotal).Add(lineDeposit)
		deposit = deposit.Add(lineDeposit)
		resolved = append(resolved, resolvedItem{product: p, quantity: item.Quantity, subtotal: lineSubtotal})
	}
	total = payment.RoundMoney(total)
	deposit = payment.RoundMoney(deposit)

	available := decimal.Zero
	if clientID != nil {
		available, err = s.credit.AvailableCredit(ctx, *clientID, req.CreditLimit)
		if err != nil {
			return nil, err
		}
	}

	alloc, err := payment.Allocate(payment.Input{
		Total:           total,
		Deposit:         deposit,
		Method:          method,
		AmountReceived:  req.AmountReceived,
		ClientPresent:   clientID != nil,
		AvailableCredit: available,
	})
	if err != nil {
		return nil, err
	}
	if alloc.Credit.GreaterThan(decimal.Zero) && clientID == nil {
		return nil, apperr.New(apperr.InsufficientFunds, "shortfall requires an identified client")
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextSaleNumber(ctx, tx)
		if err != nil {
			return err
		}
		sale = model.Sale{
			Number:       number,
			Branch:       req.Branch,
			Register:     req.Register,
			ShiftID:      shiftID,
			ClientID:     clientID,
			ClientName:   req.ClientName,
			Total:        total,
			DepositTotal: deposit,
			Method:       method.Kind.String(),
			CreatedBy:    req.Actor,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.product.ID,
				Quantity:  r.quantity,
				UnitPrice: r.product.Price,
				Subtotal:  r.subtotal,
			})
		}
		for _, p := range paymentRows(alloc) {
			sale.Payments = append(sale.Payments, p)
		}
		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		if err := s.shift.RecordSaleTx(tx, shiftID, BucketDelta{
			Cash:     alloc.CashTotal(),
			Card:     alloc.Card,
			Transfer: alloc.Transfer,
			Other:    alloc.Gift,
		}); err != nil {
			return err
		}

		if alloc.Credit.GreaterThan(decimal.Zero) {
			saleID := sale.ID
			if _, err := s.credit.IssueTx(tx, *clientID, req.ClientName, alloc.Credit, &saleID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Inventory runs outside the sale transaction: the sale stands even if
	// a movement cannot be applied; the discrepancy goes back as a warning.
	var warnings []string
	for _, r := range resolved {
		if !r.product.TrackInventory {
			continue
		}
		ref := sale.ID.String()
		_, invErr := s.inventory.ApplyMovement(ctx, dto.InventoryMovementRequest{
			ProductID: r.product.ID.String(),
			Type:      model.StockOut,
			Quantity:  r.quantity,
			Reason:    fmt.Sprintf("Sale #%d", sale.Number),
			Reference: &ref,
			Branch:    req.Branch,
			Register:  req.Register,
			Actor:     req.Actor,
		})
		if invErr != nil {
			log.Warn().Err(invErr).
				Str("sale_id", sale.ID.String()).
				Str("product_id", r.product.ID.String()).
				Msg("inventory movement failed after sale commit")
			warnings = append(warnings,
				fmt.Sprintf("inventory movement failed for %s: %v", r.product.Name, invErr))
		}
	}

	names := make(map[uuid.UUID]string, len(resolved))
	for _, r := range resolved {
		names[r.product.ID] = r.product.Name
	}
	resp := s.saleToResponse(&sale, names)
	resp.Allocation = allocationToResponse(alloc)
	resp.Warnings = warnings
	return resp, nil
}

// paymentRows materializes the allocation's non-zero buckets as sale
// payment events. Gift is kept for audit despite its zero drawer effect.
// A deferred shortfall is NOT a payment row — the ClientCredit record,
// linked by source sale id, is its ledger entry.
func paymentRows(alloc payment.Allocation) []model.SalePayment {
	var rows []model.SalePayment
	if cash := alloc.CashTotal(); cash.GreaterThan(decimal.Zero) {
		rows = append(rows, model.SalePayment{Method: "cash", Amount: cash})
	}
	if alloc.Card.GreaterThan(decimal.Zero) {
		rows = append(rows, model.SalePayment{Method: "card", Amount: alloc.Card})
	}
	if alloc.Transfer.GreaterThan(decimal.Zero) {
		rows = append(rows, model.SalePayment{Method: "transfer", Amount: alloc.Transfer})
	}
	if alloc.Gift.GreaterThan(decimal.Zero) {
		rows = append(rows, model.SalePayment{Method: "gift", Amount: alloc.Gift})
	}
	return rows
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "sale not found", err)
	}
	names := make(map[uuid.UUID]string, len(sale.Items))
	for _, item := range sale.Items {
		if item.Product != nil {
			names[item.ProductID] = item.Product.Name
		}
	}
	return s.saleToResponse(sale, names), nil
}

func (s *saleService) saleToResponse(sale *model.Sale, names map[uuid.UUID]string) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   names[item.ProductID],
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:        sale.ID.String(),
		Number:    sale.Number,
		ShiftID:   sale.ShiftID.String(),
		Total:     sale.Total,
		Deposit:   sale.DepositTotal,
		Method:    sale.Method,
		Items:     items,
		CreatedAt: sale.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func allocationToResponse(alloc payment.Allocation) dto.AllocationResponse {
	return dto.AllocationResponse{
		CashDeposit:  alloc.CashDeposit,
		CashProducts: alloc.CashProducts,
		Card:         alloc.Card,
		Transfer:     alloc.Transfer,
		Gift:         alloc.Gift,
		Credit:       alloc.Credit,
		Change:       alloc.Change,
	}
}
