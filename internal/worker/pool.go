// Package worker implements the async job pipeline: a Redis-backed
// dispatcher, a BRPOP worker pool, a dead letter queue for poisoned jobs
// and a cron that re-enqueues failed extractions.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Job queues consumed by the pool.
const (
	QueueExtracao  = "jobs:extracao"
	QueueRelatorio = "jobs:relatorio"
	QueueEmail     = "jobs:email"
)

var allQueues = []string{QueueExtracao, QueueRelatorio, QueueEmail}

// Job is the envelope pushed onto a queue.
type Job struct {
	ID         string          `json:"id"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// Dispatcher enqueues jobs for the worker pool.
type Dispatcher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewDispatcher(rdb *redis.Client, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{rdb: rdb, log: log.With().Str("component", "dispatcher").Logger()}
}

// Enqueue marshals the payload and pushes it onto the queue (LPUSH; the
// pool pops with BRPOP, so queues behave FIFO).
func (d *Dispatcher) Enqueue(ctx context.Context, queue string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dispatcher: marshal payload: %w", err)
	}
	job := Job{
		ID:         uuid.NewString(),
		Queue:      queue,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("dispatcher: marshal job: %w", err)
	}
	if err := d.rdb.LPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("dispatcher: lpush %s: %w", queue, err)
	}
	d.log.Debug().Str("queue", queue).Str("job_id", job.ID).Msg("job enqueued")
	return nil
}

// Handler processes one job from its queue.
type Handler func(ctx context.Context, job Job) error

// WorkerHandlers binds each queue to its handler.
type WorkerHandlers struct {
	Extracao  Handler
	Relatorio Handler
	Email     Handler
}

func (h WorkerHandlers) forQueue(queue string) Handler {
	switch queue {
	case QueueExtracao:
		return h.Extracao
	case QueueRelatorio:
		return h.Relatorio
	case QueueEmail:
		return h.Email
	}
	return nil
}

// StartWorkerPool launches size workers that block-pop jobs from every
// queue until ctx is cancelled. Jobs whose handler fails go to the DLQ;
// they are never silently dropped.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, size int, log zerolog.Logger) *sync.WaitGroup {
	wg := &sync.WaitGroup{}
	for i := 0; i < size; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runWorker(ctx, rdb, handlers, workerID, log)
		}(i)
	}
	return wg
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, workerID int, log zerolog.Logger) {
	wlog := log.With().Int("worker", workerID).Logger()
	wlog.Info().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			wlog.Info().Msg("worker stopped")
			return
		default:
		}

		res, err := rdb.BRPop(ctx, 5*time.Second, allQueues...).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			wlog.Error().Err(err).Msg("brpop failed")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [queue, value]
		if len(res) != 2 {
			continue
		}
		processJob(ctx, rdb, handlers, res[0], res[1], wlog)
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, queue, raw string, log zerolog.Logger) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("malformed job, sending to DLQ")
		sendRawToDLQ(ctx, rdb, queue, raw, "malformed job envelope", log)
		return
	}

	handler := handlers.forQueue(queue)
	if handler == nil {
		log.Error().Str("queue", queue).Str("job_id", job.ID).Msg("no handler for queue")
		SendToDLQ(ctx, rdb, job, "no handler registered", log)
		return
	}

	start := time.Now()
	if err := handler(ctx, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("job_id", job.ID).
			Dur("elapsed", time.Since(start)).Msg("job failed")
		SendToDLQ(ctx, rdb, job, err.Error(), log)
		return
	}
	log.Info().Str("queue", queue).Str("job_id", job.ID).
		Dur("elapsed", time.Since(start)).Msg("job done")
}
