package worker

import (
	"context"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const retryBatchLimit = 50

// RetryCron periodically re-enqueues extraction for documents whose retry
// backoff has elapsed. Skips entire ticks while the extraction circuit is
// open — re-enqueueing would only burn retry budget against a dead provider.
type RetryCron struct {
	docRepo    repository.DocumentoRepository
	dispatcher *Dispatcher
	cb         *infra.CircuitBreaker
	interval   time.Duration
	maxRetry   int
	log        zerolog.Logger
}

func NewRetryCron(docRepo repository.DocumentoRepository, dispatcher *Dispatcher, cb *infra.CircuitBreaker, interval time.Duration, maxRetry int, log zerolog.Logger) *RetryCron {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RetryCron{
		docRepo:    docRepo,
		dispatcher: dispatcher,
		cb:         cb,
		interval:   interval,
		maxRetry:   maxRetry,
		log:        log.With().Str("component", "retry_cron").Logger(),
	}
}

// Start blocks until ctx is cancelled; run it in its own goroutine.
func (c *RetryCron) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.log.Info().Dur("interval", c.interval).Msg("retry cron started")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("retry cron stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *RetryCron) tick(ctx context.Context) {
	if c.cb.State() == infra.CBOpen {
		c.log.Debug().Msg("circuito aberto, pulando tick de retry")
		return
	}

	docs, err := c.docRepo.ListPendingRetries(ctx, time.Now(), c.maxRetry, retryBatchLimit)
	if err != nil {
		c.log.Error().Err(err).Msg("falha ao listar documentos para retry")
		return
	}
	if len(docs) == 0 {
		return
	}

	// One reprocessing job per pedido covers all of its due documents.
	porPedido := map[uuid.UUID]int{}
	for _, d := range docs {
		porPedido[d.PedidoID]++
	}
	for pedidoID, n := range porPedido {
		payload := ExtracaoPayload{PedidoID: pedidoID.String(), SomenteErros: true}
		if err := c.dispatcher.Enqueue(ctx, QueueExtracao, payload); err != nil {
			c.log.Error().Err(err).Str("pedido_id", pedidoID.String()).Msg("falha ao re-enfileirar extração")
			continue
		}
		c.log.Info().Str("pedido_id", pedidoID.String()).Int("documentos", n).Msg("extração re-enfileirada")
	}
}
