package model

import (
	"time"

	"github.com/google/uuid"
)

// Pedido statuses — one reconciliation batch walks
// aberta → processando → revisao → concluida.
const (
	PedidoAberta      = "aberta"
	PedidoProcessando = "processando"
	PedidoRevisao     = "revisao"
	PedidoConcluida   = "concluida"
)

// Pedido is one replenishment order: a batch of source documents for a
// hospital plus the consolidated items produced by the aggregation run.
type Pedido struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HospitalID uuid.UUID `gorm:"type:uuid;index;not null"`
	Numero     int       `gorm:"uniqueIndex;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'aberta'"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Hospital   *Hospital       `gorm:"foreignKey:HospitalID"`
	Documentos []Documento     `gorm:"foreignKey:PedidoID"`
	Itens      []ItemReposicao `gorm:"foreignKey:PedidoID"`
}
