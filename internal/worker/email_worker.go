package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// EmailPayload carries one outbound report email.
type EmailPayload struct {
	To       string `json:"to"`
	Assunto  string `json:"assunto"`
	Corpo    string `json:"corpo"`
	PDFPath  string `json:"pdf_path"`
	PedidoID string `json:"pedido_id"`
}

// Enviador is the mail-out contract (satisfied by infra.Mailer).
type Enviador interface {
	SendRelatorio(to, subject, body, pdfPath string) error
}

// EmailWorker delivers report emails produced by the relatorio worker.
type EmailWorker struct {
	mailer Enviador
	log    zerolog.Logger
}

func NewEmailWorker(mailer Enviador, log zerolog.Logger) *EmailWorker {
	return &EmailWorker{mailer: mailer, log: log.With().Str("worker", "email").Logger()}
}

func (w *EmailWorker) Handle(ctx context.Context, job Job) error {
	var payload EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("email: payload inválido: %w", err)
	}
	if err := w.mailer.SendRelatorio(payload.To, payload.Assunto, payload.Corpo, payload.PDFPath); err != nil {
		return fmt.Errorf("email: envio para %s: %w", payload.To, err)
	}
	w.log.Info().Str("to", payload.To).Str("pedido_id", payload.PedidoID).Msg("relatório enviado")
	return nil
}
