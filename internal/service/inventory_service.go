package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/apperr"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/model"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
	"github.com/IngCuriel/MariamPos-sub000/internal/worker"
)

// TransferDirection decides how TRANSFERENCIA movements fold. The historical
// behavior treats a transfer as an inflow at the receiving register; a
// source-location deployment flips it to an outflow. Explicit and testable on
// purpose — never hardcoded at a call site.
type TransferDirection int

const (
	TransferIn TransferDirection = iota
	TransferOut
)

func ParseTransferDirection(raw string) (TransferDirection, error) {
	switch raw {
	case "", "in":
		return TransferIn, nil
	case "out":
		return TransferOut, nil
	}
	return TransferIn, fmt.Errorf("invalid transfer direction %q (want in|out)", raw)
}

const stockCacheTTL = 5 * time.Minute

func stockCacheKey(productID uuid.UUID) string { return "stock:" + productID.String() }

type InventoryService interface {
	ApplyMovement(ctx context.Context, req dto.InventoryMovementRequest) (*dto.InventoryMovementResponse, error)
	// CurrentStock folds the product's full movement log and clamps the
	// result at zero — the authoritative read, cached best-effort in Redis.
	CurrentStock(ctx context.Context, productID uuid.UUID) (*dto.StockResponse, error)
	// StockAsOf folds movements up to and including the given one: the
	// Kardex running-balance-per-row computation. Returns the raw
	// (unclamped) balance.
	StockAsOf(ctx context.Context, productID, movementID uuid.UUID) (int, error)
	Kardex(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.KardexResponse, error)
	IsLowStock(ctx context.Context, productID uuid.UUID) (bool, error)
	// VerifySnapshot compares the cached projection against the fold.
	VerifySnapshot(ctx context.Context, productID uuid.UUID) (match bool, folded, cached int, err error)
	// RebuildSnapshot rewrites the projection from the fold (worker job).
	RebuildSnapshot(ctx context.Context, productID uuid.UUID) error
}

type inventoryService struct {
	repo        repository.InventoryRepository
	productRepo repository.ProductRepository
	rdb         *redis.Client
	dispatcher  *worker.Dispatcher
	direction   TransferDirection
}

func NewInventoryService(
	repo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	direction TransferDirection,
) InventoryService {
	return &inventoryService{
		repo:        repo,
		productRepo: productRepo,
		rdb:         rdb,
		dispatcher:  dispatcher,
		direction:   direction,
	}
}

// transferDelta is the signed effect of one TRANSFERENCIA under the
// configured direction.
func (s *inventoryService) transferDelta(quantity int) int {
	if s.direction == TransferOut {
		return -quantity
	}
	return quantity
}

// ── ApplyMovement ─────────────────────────────────────────────────────────────
// Append-then-fold: the movement row and the projection update commit
// together. Insufficient stock never rejects here — negative stock is a
// reporting signal; the point-of-sale layer pre-validates before building
// the movement.

func (s *inventoryService) ApplyMovement(ctx context.Context, req dto.InventoryMovementRequest) (*dto.InventoryMovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid product_id", err)
	}
	switch req.Type {
	case model.StockIn, model.StockOut, model.StockTransfer:
		if req.Quantity <= 0 {
			return nil, apperr.Newf(apperr.Validation, "%s quantity must be > 0", req.Type)
		}
	case model.StockAdjust:
		if req.Quantity < 0 {
			return nil, apperr.New(apperr.Validation, "AJUSTE target must be >= 0")
		}
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown movement type %q", req.Type)
	}
	if req.Reason == "" {
		return nil, apperr.New(apperr.Validation, "movement reason is required")
	}

	var (
		mov     model.InventoryMovement
		product *model.Product
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		product, err = s.productRepo.FindByIDTx(tx, productID)
		if err != nil {
			return apperr.Wrap(apperr.NotFound, "product not found", err)
		}

		before := product.CurrentStock
		after := before
		switch req.Type {
		case model.StockIn:
			after = before + req.Quantity
		case model.StockOut:
			after = before - req.Quantity
		case model.StockAdjust:
			// Absolute set, not a delta.
			after = req.Quantity
		case model.StockTransfer:
			after = before + s.transferDelta(req.Quantity)
		}

		mov = model.InventoryMovement{
			ProductID:   productID,
			Type:        req.Type,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
			Reference:   req.Reference,
			Branch:      req.Branch,
			Register:    req.Register,
			StockBefore: before,
			StockAfter:  after,
			CreatedBy:   req.Actor,
		}
		if err := s.repo.CreateMovementTx(tx, &mov); err != nil {
			return err
		}
		product.CurrentStock = after
		return s.productRepo.SetStockTx(tx, productID, after)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.refreshCache(ctx, productID, product.CurrentStock)

	// Low-stock alerting is best-effort and must never fail the movement.
	if s.dispatcher != nil && product.TrackInventory && product.CurrentStock <= product.MinStock {
		if err := s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlertPayload{
			ProductID:    productID.String(),
			ProductName:  product.Name,
			CurrentStock: product.DisplayStock(),
			MinStock:     product.MinStock,
		}); err != nil {
			log.Warn().Err(err).Str("product_id", productID.String()).Msg("failed to enqueue low stock alert")
		}
	}

	resp := movementToResponse(&mov)
	return &resp, nil
}

// ── Folds ─────────────────────────────────────────────────────────────────────

// foldMovements replays movements (already in (created_at, id) order) from
// zero and returns the raw balance. AJUSTE resets the baseline, which is why
// every balance question starts from the first row.
func (s *inventoryService) foldMovements(movs []model.InventoryMovement) int {
	stock := 0
	for i := range movs {
		stock = s.foldOne(stock, &movs[i])
	}
	return stock
}

func (s *inventoryService) foldOne(stock int, m *model.InventoryMovement) int {
	switch m.Type {
	case model.StockIn:
		return stock + m.Quantity
	case model.StockOut:
		return stock - m.Quantity
	case model.StockAdjust:
		return m.Quantity
	case model.StockTransfer:
		return stock + s.transferDelta(m.Quantity)
	}
	return stock
}

func clampStock(raw int) int {
	if raw < 0 {
		return 0
	}
	return raw
}

func (s *inventoryService) CurrentStock(ctx context.Context, productID uuid.UUID) (*dto.StockResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "product not found", err)
	}

	stock, ok := s.cachedStock(ctx, productID)
	if !ok {
		movs, err := s.repo.ListByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		stock = clampStock(s.foldMovements(movs))
		s.refreshCache(ctx, productID, stock)
	}

	return &dto.StockResponse{
		ProductID:      productID.String(),
		CurrentStock:   stock,
		MinStock:       product.MinStock,
		TrackInventory: product.TrackInventory,
		LowStock:       product.TrackInventory && stock <= product.MinStock,
	}, nil
}

func (s *inventoryService) StockAsOf(ctx context.Context, productID, movementID uuid.UUID) (int, error) {
	movs, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	stock := 0
	for i := range movs {
		stock = s.foldOne(stock, &movs[i])
		if movs[i].ID == movementID {
			return stock, nil
		}
	}
	return 0, apperr.Newf(apperr.NotFound, "movement %s not found for product %s", movementID, productID)
}

func (s *inventoryService) Kardex(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.KardexResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "product not found", err)
	}
	movs, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Balances must be folded over the FULL history before paging: a page
	// cannot start from a cached column because an AJUSTE anywhere earlier
	// rewrites every later balance.
	rows := make([]dto.KardexRow, 0, len(movs))
	stock := 0
	for i := range movs {
		stock = s.foldOne(stock, &movs[i])
		rows = append(rows, dto.KardexRow{
			MovementID: movs[i].ID.String(),
			Type:       movs[i].Type,
			Quantity:   movs[i].Quantity,
			Balance:    stock,
			Reason:     movs[i].Reason,
			Reference:  movs[i].Reference,
			CreatedAt:  movs[i].CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	total := int64(len(rows))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	return &dto.KardexResponse{
		ProductID: productID.String(),
		Rows:      rows[start:end],
		Total:     total,
		Page:      page,
		Limit:     limit,
	}, nil
}

func (s *inventoryService) IsLowStock(ctx context.Context, productID uuid.UUID) (bool, error) {
	stock, err := s.CurrentStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return stock.LowStock, nil
}

// ── Projection maintenance ────────────────────────────────────────────────────

func (s *inventoryService) VerifySnapshot(ctx context.Context, productID uuid.UUID) (bool, int, int, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return false, 0, 0, apperr.Wrap(apperr.NotFound, "product not found", err)
	}
	movs, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return false, 0, 0, err
	}
	folded := s.foldMovements(movs)
	return folded == product.CurrentStock, folded, product.CurrentStock, nil
}

func (s *inventoryService) RebuildSnapshot(ctx context.Context, productID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.productRepo.FindByIDTx(tx, productID); err != nil {
			return apperr.Wrap(apperr.NotFound, "product not found", err)
		}
		movs, err := s.repo.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		folded := s.foldMovements(movs)
		if err := s.productRepo.SetStockTx(tx, productID, folded); err != nil {
			return err
		}
		s.refreshCache(ctx, productID, clampStock(folded))
		log.Info().Str("product_id", productID.String()).Int("stock", folded).Msg("stock snapshot rebuilt")
		return nil
	})
}

// ── Redis snapshot cache ──────────────────────────────────────────────────────
// The cache holds the CLAMPED display value and is purely an optimization:
// any miss or error falls back to the fold.

func (s *inventoryService) cachedStock(ctx context.Context, productID uuid.UUID) (int, bool) {
	if s.rdb == nil {
		return 0, false
	}
	val, err := s.rdb.Get(ctx, stockCacheKey(productID)).Int()
	if err != nil {
		return 0, false
	}
	return val, true
}

func (s *inventoryService) refreshCache(ctx context.Context, productID uuid.UUID, rawStock int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, stockCacheKey(productID), clampStock(rawStock), stockCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("failed to refresh stock cache")
	}
}

func movementToResponse(m *model.InventoryMovement) dto.InventoryMovementResponse {
	return dto.InventoryMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Reference:   m.Reference,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
