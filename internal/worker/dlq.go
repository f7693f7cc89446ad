package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DLQEntry wraps a failed job with failure context for later inspection.
type DLQEntry struct {
	Job      Job       `json:"job"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func dlqKey(queue string) string { return "dlq:" + queue }

// SendToDLQ parks a failed job on the queue's dead letter list.
func SendToDLQ(ctx context.Context, rdb *redis.Client, job Job, reason string, log zerolog.Logger) {
	entry := DLQEntry{Job: job, Reason: reason, FailedAt: time.Now().UTC()}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("cannot marshal DLQ entry")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(job.Queue), data).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("cannot push to DLQ")
		return
	}
	log.Warn().Str("job_id", job.ID).Str("queue", job.Queue).Str("reason", reason).Msg("job sent to DLQ")
}

func sendRawToDLQ(ctx context.Context, rdb *redis.Client, queue, raw, reason string, log zerolog.Logger) {
	entry := map[string]interface{}{
		"raw":       raw,
		"reason":    reason,
		"failed_at": time.Now().UTC(),
	}
	data, _ := json.Marshal(entry)
	if err := rdb.LPush(ctx, dlqKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Msg("cannot push raw entry to DLQ")
	}
}

// DLQLen reports how many entries a queue's DLQ holds.
func DLQLen(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// RequeueFromDLQ moves up to max entries from the DLQ back onto the live
// queue, bumping Attempts. Returns how many were requeued.
func RequeueFromDLQ(ctx context.Context, rdb *redis.Client, queue string, max int, log zerolog.Logger) (int, error) {
	moved := 0
	for i := 0; i < max; i++ {
		raw, err := rdb.RPop(ctx, dlqKey(queue)).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("dlq: rpop: %w", err)
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("unparseable DLQ entry dropped from requeue")
			continue
		}
		entry.Job.Attempts++
		data, err := json.Marshal(entry.Job)
		if err != nil {
			continue
		}
		if err := rdb.LPush(ctx, queue, data).Err(); err != nil {
			return moved, fmt.Errorf("dlq: requeue: %w", err)
		}
		moved++
	}
	return moved, nil
}
