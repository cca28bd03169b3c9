package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that exhaust their retries land in a per-queue dead letter list
// (dead:jobs:low_stock, dead:jobs:snapshot_rebuild) for manual inspection.
// Nothing consumes these automatically; an operator replays or discards them.

const deadLetterPrefix = "dead:"

func deadLetterKey(queue string) string { return deadLetterPrefix + queue }

// DeadJob is a failed job frozen with enough context to replay it by hand.
type DeadJob struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
	Attempts int             `json:"attempts"`
	FailedAt string          `json:"failed_at"`
}

// SendToDLQ parks an exhausted job on its queue's dead letter list. The push
// is best-effort: losing a low-stock alert or a snapshot rebuild is
// recoverable, so a Redis failure here is logged and swallowed.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	dead := DeadJob{
		Queue:    queue,
		Type:     jobType,
		Payload:  payload,
		Error:    reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead letter: marshal failed")
		return
	}

	key := deadLetterKey(queue)
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("dead letter: push failed")
		return
	}

	depth, _ := rdb.LLen(ctx, key).Result()
	log.Warn().
		Str("queue", queue).
		Str("type", jobType).
		Str("error", reason).
		Int("attempts", attempts).
		Int64("dead_letter_depth", depth).
		Msg("job moved to dead letter list")
}
