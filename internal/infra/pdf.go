package infra

// pdf.go — replenishment order report using go-pdf/fpdf.
// A4 portrait with:
//   - Header (hospital name, order number, generation date)
//   - Source document summary (file, patient, procedure, status)
//   - Item table (description, code, lot, consumed, replenish, note)
//   - Contaminated rows flagged
//
// The output file is saved to storagePath/pedido_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GeneratePedidoPDF renders the report for a completed replenishment order.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GeneratePedidoPDF(pedido *model.Pedido, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("pedido_%d.pdf", pedido.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // latin-1 fonts + pt-BR accents
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr("Pedido de Reposição OPME"), "", 1, "C", false, 0, "")

	hospital := ""
	if pedido.Hospital != nil {
		hospital = pedido.Hospital.Nome
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(hospital), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, tr(fmt.Sprintf("Pedido Nº %d", pedido.Numero)), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, time.Now().Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Source document summary ──────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, tr("Documentos de origem"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, d := range pedido.Documentos {
		paciente := valueOr(d.PacienteNome, "-")
		procedimento := valueOr(d.Procedimento, "-")
		linha := fmt.Sprintf("%s  |  paciente: %s  |  procedimento: %s  |  %s",
			d.NomeArquivo, paciente, procedimento, d.Status)
		pdf.CellFormat(contentW, 4.5, tr(truncate(linha, 130)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Item table ───────────────────────────────────────────────────────────
	colDesc := contentW * 0.34
	colCod := contentW * 0.10
	colLote := contentW * 0.10
	colQtd := contentW * 0.08
	colRepor := contentW * 0.08
	colNota := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colDesc, 6, tr("Descrição"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colCod, 6, tr("Código"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colLote, 6, "Lote", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQtd, 6, "Cons.", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colRepor, 6, "Repor", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colNota, 6, "Nota", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	totalRepor := 0
	for _, item := range pedido.Itens {
		descricao := item.Descricao
		if item.Contaminado {
			descricao = "[CONTAMINADO] " + descricao
			pdf.SetTextColor(180, 0, 0)
		}
		pdf.CellFormat(colDesc, 5, tr(truncate(descricao, 48)), "", 0, "L", false, 0, "")
		pdf.CellFormat(colCod, 5, tr(valueOr(item.Codigo, "-")), "", 0, "L", false, 0, "")
		pdf.CellFormat(colLote, 5, tr(valueOr(item.Lote, "-")), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQtd, 5, fmt.Sprintf("%d", item.QuantidadeConsumida), "", 0, "C", false, 0, "")
		pdf.CellFormat(colRepor, 5, fmt.Sprintf("%d", item.QuantidadeRepor), "", 0, "C", false, 0, "")
		pdf.CellFormat(colNota, 5, tr(truncate(item.NotaSugestao, 52)), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		totalRepor += item.QuantidadeRepor
	}

	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDesc+colCod+colLote, 6, "TOTAL A REPOR:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colQtd+colRepor, 6, fmt.Sprintf("%d", totalRepor), "", 1, "C", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Gerado automaticamente a partir das fichas de consumo processadas."), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
