package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ExtracaoPayload asks for extraction of a whole pedido. SomenteErros=true
// restricts the run to previously failed documents (reprocessing).
type ExtracaoPayload struct {
	PedidoID     string `json:"pedido_id"`
	SomenteErros bool   `json:"somente_erros"`
}

// Extrator is the extraction provider contract (satisfied by
// infra.ExtractionClient). Kept narrow so tests can stub it.
type Extrator interface {
	Extrair(ctx context.Context, imagem []byte, mimeType, textoApoio string) (*infra.ExtracaoResultado, error)
}

// TextoDetector supplements extraction with OCR text when available.
type TextoDetector interface {
	DetectarTexto(ctx context.Context, imagem []byte) (string, error)
}

// ExtracaoWorker runs AI extraction over a pedido's documents in bounded
// parallel batches: batchSize documents in flight, a join barrier between
// batches, one document's failure never aborting its siblings.
type ExtracaoWorker struct {
	docRepo    repository.DocumentoRepository
	pedidoRepo repository.PedidoRepository
	extrator   Extrator
	ocr        TextoDetector // nil when OCR is disabled
	cb         *infra.CircuitBreaker
	batchSize  int
	maxRetry   int
	log        zerolog.Logger
}

func NewExtracaoWorker(
	docRepo repository.DocumentoRepository,
	pedidoRepo repository.PedidoRepository,
	extrator Extrator,
	ocr TextoDetector,
	cb *infra.CircuitBreaker,
	batchSize, maxRetry int,
	log zerolog.Logger,
) *ExtracaoWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ExtracaoWorker{
		docRepo:    docRepo,
		pedidoRepo: pedidoRepo,
		extrator:   extrator,
		ocr:        ocr,
		cb:         cb,
		batchSize:  batchSize,
		maxRetry:   maxRetry,
		log:        log.With().Str("worker", "extracao").Logger(),
	}
}

// Handle is the queue entry point.
func (w *ExtracaoWorker) Handle(ctx context.Context, job Job) error {
	var payload ExtracaoPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("extracao: payload inválido: %w", err)
	}
	pedidoID, err := uuid.Parse(payload.PedidoID)
	if err != nil {
		return fmt.Errorf("extracao: pedido_id inválido: %w", err)
	}
	return w.ProcessarPedido(ctx, pedidoID, payload.SomenteErros)
}

// ProcessarPedido extracts every eligible document of the pedido and moves
// the pedido processando → revisao when done. Document failures are
// recorded per row, not returned: only infrastructure errors bubble up.
func (w *ExtracaoWorker) ProcessarPedido(ctx context.Context, pedidoID uuid.UUID, somenteErros bool) error {
	pedido, err := w.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return fmt.Errorf("extracao: carregar pedido: %w", err)
	}
	// A concluded pedido is frozen: a stale retry job or a late queue entry
	// must not drag it back to processando/revisao.
	if pedido.Status == model.PedidoConcluida {
		w.log.Warn().Str("pedido_id", pedidoID.String()).Msg("pedido concluído, job de extração descartado")
		return nil
	}

	if err := w.pedidoRepo.UpdateStatus(ctx, pedidoID, model.PedidoProcessando); err != nil {
		return fmt.Errorf("extracao: marcar pedido processando: %w", err)
	}

	docs, err := w.documentosElegiveis(ctx, pedidoID, somenteErros)
	if err != nil {
		return err
	}
	w.log.Info().Str("pedido_id", pedidoID.String()).Int("documentos", len(docs)).
		Bool("somente_erros", somenteErros).Msg("iniciando extração")

	for inicio := 0; inicio < len(docs); inicio += w.batchSize {
		fim := inicio + w.batchSize
		if fim > len(docs) {
			fim = len(docs)
		}
		var g errgroup.Group
		for i := inicio; i < fim; i++ {
			doc := docs[i]
			g.Go(func() error {
				w.processarDocumento(ctx, &doc)
				return nil
			})
		}
		// Barrier: the next batch only starts when this one finishes.
		_ = g.Wait()
	}

	if err := w.pedidoRepo.UpdateStatus(ctx, pedidoID, model.PedidoRevisao); err != nil {
		return fmt.Errorf("extracao: marcar pedido em revisão: %w", err)
	}
	return nil
}

func (w *ExtracaoWorker) documentosElegiveis(ctx context.Context, pedidoID uuid.UUID, somenteErros bool) ([]model.Documento, error) {
	if somenteErros {
		return w.docRepo.ListByPedidoStatus(ctx, pedidoID, model.DocumentoErro)
	}
	docs, err := w.docRepo.ListByPedido(ctx, pedidoID)
	if err != nil {
		return nil, err
	}
	elegiveis := docs[:0]
	for _, d := range docs {
		if d.Status == model.DocumentoPendente || d.Status == model.DocumentoErro {
			elegiveis = append(elegiveis, d)
		}
	}
	return elegiveis, nil
}

// processarDocumento runs one document end to end, recording the outcome on
// the row. It never returns an error so that sibling documents in the same
// batch are unaffected.
func (w *ExtracaoWorker) processarDocumento(ctx context.Context, doc *model.Documento) {
	dlog := w.log.With().Str("documento_id", doc.ID.String()).Logger()

	if err := w.docRepo.MarcarProcessando(ctx, doc.ID); err != nil {
		dlog.Error().Err(err).Msg("falha ao marcar documento processando")
		return
	}

	imagem, err := os.ReadFile(doc.CaminhoArquivo)
	if err != nil {
		w.registrarFalha(ctx, doc, fmt.Sprintf("arquivo ilegível: %v", err), dlog)
		return
	}

	textoApoio := ""
	if w.ocr != nil {
		texto, err := w.ocr.DetectarTexto(ctx, imagem)
		switch {
		case err == nil:
			textoApoio = texto
		case errors.Is(err, infra.ErrOCRSemTexto):
			// blank page or handwriting Vision cannot read; the vision
			// model still sees the image itself
		default:
			dlog.Warn().Err(err).Msg("ocr indisponível, seguindo sem texto de apoio")
		}
	}

	var resultado *infra.ExtracaoResultado
	err = w.cb.Execute(func() error {
		var innerErr error
		resultado, innerErr = w.extrator.Extrair(ctx, imagem, doc.MimeType, textoApoio)
		return innerErr
	})
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			w.registrarFalha(ctx, doc, "provedor de extração indisponível (circuito aberto)", dlog)
			return
		}
		w.registrarFalha(ctx, doc, err.Error(), dlog)
		return
	}

	aplicarResultado(doc, resultado)
	if err := w.docRepo.MarcarSucesso(ctx, doc); err != nil {
		dlog.Error().Err(err).Msg("falha ao persistir resultado da extração")
		return
	}
	dlog.Info().Int("materiais", len(doc.Materiais)).Msg("documento extraído")
}

// registrarFalha records the error and schedules a retry with exponential
// backoff while budget remains.
func (w *ExtracaoWorker) registrarFalha(ctx context.Context, doc *model.Documento, mensagem string, dlog zerolog.Logger) {
	var nextRetry *time.Time
	if doc.RetryCount+1 < w.maxRetry {
		at := time.Now().Add(retryBackoff(doc.RetryCount))
		nextRetry = &at
	}
	if err := w.docRepo.MarcarErro(ctx, doc.ID, mensagem, nextRetry); err != nil {
		dlog.Error().Err(err).Msg("falha ao registrar erro do documento")
		return
	}
	evt := dlog.Warn().Str("erro", mensagem).Int("tentativa", doc.RetryCount+1)
	if nextRetry == nil {
		evt.Msg("extração falhou, tentativas esgotadas")
	} else {
		evt.Time("proxima_tentativa", *nextRetry).Msg("extração falhou, retry agendado")
	}
}

// retryBackoff: 1m, 2m, 4m... capped at 30m.
func retryBackoff(retryCount int) time.Duration {
	d := time.Minute << uint(retryCount)
	if d > 30*time.Minute {
		return 30 * time.Minute
	}
	return d
}

func aplicarResultado(doc *model.Documento, r *infra.ExtracaoResultado) {
	doc.PacienteNome = ponteiroOuNil(r.PacienteNome)
	doc.PacienteNascimento = ponteiroOuNil(r.PacienteNascimento)
	doc.DataCirurgia = ponteiroOuNil(r.DataCirurgia)
	doc.Procedimento = ponteiroOuNil(r.Procedimento)
	doc.Medico = ponteiroOuNil(r.Medico)

	materiais := make([]model.MaterialConsumido, 0, len(r.Materiais))
	for _, m := range r.Materiais {
		if strings.TrimSpace(m.Descricao) == "" {
			continue
		}
		quantidade := m.Quantidade
		if quantidade <= 0 {
			quantidade = 1
		}
		materiais = append(materiais, model.MaterialConsumido{
			Descricao:   strings.TrimSpace(m.Descricao),
			Codigo:      ponteiroOuNil(m.Codigo),
			Lote:        ponteiroOuNil(m.Lote),
			Quantidade:  quantidade,
			Observacao:  ponteiroOuNil(m.Observacao),
			Contaminado: m.Contaminado,
		})
	}
	doc.Materiais = materiais
}

func ponteiroOuNil(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
