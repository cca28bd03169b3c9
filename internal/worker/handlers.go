package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// alertLogKey is the capped Redis list where recent low-stock alerts are
// kept for the dashboard to poll.
const (
	alertLogKey = "alerts:low_stock"
	alertLogCap = 500
)

// LowStockWorker records low-stock notifications. Alerting is advisory:
// failures here never affect the inventory ledger.
type LowStockWorker struct {
	rdb *redis.Client
}

func NewLowStockWorker(rdb *redis.Client) *LowStockWorker { return &LowStockWorker{rdb: rdb} }

func (w *LowStockWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var alert LowStockAlertPayload
	if err := json.Unmarshal(payload, &alert); err != nil {
		return err
	}

	log.Warn().
		Str("product_id", alert.ProductID).
		Str("product", alert.ProductName).
		Int("current_stock", alert.CurrentStock).
		Int("min_stock", alert.MinStock).
		Msg("low stock alert")

	entry, err := json.Marshal(struct {
		LowStockAlertPayload
		At string `json:"at"`
	}{alert, time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	pipe := w.rdb.TxPipeline()
	pipe.LPush(ctx, alertLogKey, entry)
	pipe.LTrim(ctx, alertLogKey, 0, alertLogCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// SnapshotRebuilder recomputes a product's stock projection from its
// movement log. Satisfied by the inventory service.
type SnapshotRebuilder interface {
	RebuildSnapshot(ctx context.Context, productID uuid.UUID) error
}

// SnapshotWorker applies snapshot_rebuild jobs.
type SnapshotWorker struct {
	rebuilder SnapshotRebuilder
}

func NewSnapshotWorker(rebuilder SnapshotRebuilder) *SnapshotWorker {
	return &SnapshotWorker{rebuilder: rebuilder}
}

func (w *SnapshotWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var req SnapshotRebuildPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return err
	}
	return w.rebuilder.RebuildSnapshot(ctx, productID)
}
