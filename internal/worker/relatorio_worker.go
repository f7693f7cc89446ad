package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RelatorioPayload requests PDF generation for a concluded pedido.
type RelatorioPayload struct {
	PedidoID    string `json:"pedido_id"`
	EnviarEmail bool   `json:"enviar_email"`
}

// RelatorioWorker renders the replenishment report PDF and, when asked,
// chains an email job with the report attached.
type RelatorioWorker struct {
	pedidoRepo repository.PedidoRepository
	dispatcher *Dispatcher
	cfg        *config.Config
	log        zerolog.Logger
}

func NewRelatorioWorker(pedidoRepo repository.PedidoRepository, dispatcher *Dispatcher, cfg *config.Config, log zerolog.Logger) *RelatorioWorker {
	return &RelatorioWorker{
		pedidoRepo: pedidoRepo,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log.With().Str("worker", "relatorio").Logger(),
	}
}

func (w *RelatorioWorker) Handle(ctx context.Context, job Job) error {
	var payload RelatorioPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("relatorio: payload inválido: %w", err)
	}
	pedidoID, err := uuid.Parse(payload.PedidoID)
	if err != nil {
		return fmt.Errorf("relatorio: pedido_id inválido: %w", err)
	}

	pedido, err := w.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return fmt.Errorf("relatorio: carregar pedido: %w", err)
	}

	pdfPath, err := infra.GeneratePedidoPDF(pedido, w.cfg.PDFStoragePath)
	if err != nil {
		return fmt.Errorf("relatorio: gerar PDF: %w", err)
	}
	if err := w.pedidoRepo.UpdatePDFPath(ctx, pedidoID, pdfPath); err != nil {
		return fmt.Errorf("relatorio: salvar caminho do PDF: %w", err)
	}
	w.log.Info().Str("pedido_id", payload.PedidoID).Str("pdf", pdfPath).Msg("relatório gerado")

	if !payload.EnviarEmail {
		return nil
	}
	if pedido.Hospital == nil || pedido.Hospital.EmailContato == nil || *pedido.Hospital.EmailContato == "" {
		w.log.Warn().Str("pedido_id", payload.PedidoID).Msg("envio de email solicitado mas hospital não tem email de contato")
		return nil
	}
	email := EmailPayload{
		To:       *pedido.Hospital.EmailContato,
		Assunto:  fmt.Sprintf("Pedido de Reposição OPME Nº %d — %s", pedido.Numero, pedido.Hospital.Nome),
		Corpo:    fmt.Sprintf("Segue em anexo o relatório do pedido de reposição Nº %d.", pedido.Numero),
		PDFPath:  pdfPath,
		PedidoID: payload.PedidoID,
	}
	return w.dispatcher.Enqueue(ctx, QueueEmail, email)
}
