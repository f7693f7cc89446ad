package model

import (
	"time"

	"github.com/google/uuid"
)

// Documento statuses for the extraction lifecycle.
const (
	DocumentoPendente    = "pendente"
	DocumentoProcessando = "processando"
	DocumentoSucesso     = "sucesso"
	DocumentoErro        = "erro"
)

// Documento is one scanned consumption form inside a Pedido.
// Patient/surgery fields are filled by the extraction provider and may be
// corrected by the reviewer afterwards.
type Documento struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID       uuid.UUID `gorm:"type:uuid;index;not null"`
	NomeArquivo    string    `gorm:"not null"`
	CaminhoArquivo string    `gorm:"not null"`
	MimeType       string    `gorm:"type:varchar(80);not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pendente'"`
	ErroMensagem   *string

	// Retry fields — used by the retry cron to re-attempt failed extractions
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`

	PacienteNome       *string
	PacienteNascimento *string
	DataCirurgia       *string
	Procedimento       *string
	Medico             *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Materiais []MaterialConsumido `gorm:"foreignKey:DocumentoID"`
}

// MaterialConsumido is one extracted/corrected line item of a Documento.
type MaterialConsumido struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentoID uuid.UUID `gorm:"type:uuid;index;not null"`
	Descricao   string    `gorm:"not null"`
	Codigo      *string
	Lote        *string
	Quantidade  int `gorm:"not null;default:1"`
	// Observacao comes from the extraction; ObservacaoUsuario from the reviewer
	Observacao        *string
	ObservacaoUsuario *string
	Contaminado       bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
