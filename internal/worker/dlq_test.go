package worker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterKey(t *testing.T) {
	assert.Equal(t, "dead:jobs:low_stock", deadLetterKey(QueueLowStock))
	assert.Equal(t, "dead:jobs:snapshot_rebuild", deadLetterKey(QueueSnapshotRebuild))
}

func TestDeadJobCarriesReplayContext(t *testing.T) {
	payload, err := json.Marshal(LowStockAlertPayload{ProductID: "p1", CurrentStock: 1, MinStock: 5})
	require.NoError(t, err)

	dead := DeadJob{
		Queue:    QueueLowStock,
		Type:     "low_stock_alert",
		Payload:  payload,
		Error:    "redis timeout",
		Attempts: 3,
		FailedAt: "2025-06-01T09:00:00Z",
	}
	data, err := json.Marshal(dead)
	require.NoError(t, err)

	var restored DeadJob
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, dead.Queue, restored.Queue)
	assert.Equal(t, dead.Attempts, restored.Attempts)

	// The payload survives untouched, so the original job can be re-pushed.
	var alert LowStockAlertPayload
	require.NoError(t, json.Unmarshal(restored.Payload, &alert))
	assert.Equal(t, "p1", alert.ProductID)
}
