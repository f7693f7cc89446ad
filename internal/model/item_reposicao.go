package model

import (
	"time"

	"github.com/google/uuid"
)

// ItemReposicao is one consolidated replenishment line of a Pedido.
// Rows are regenerated wholesale on every aggregation run and frozen when
// the pedido reaches "concluida".
type ItemReposicao struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Posicao            int       `gorm:"not null"`
	Descricao          string    `gorm:"not null"`
	Codigo             *string
	Lote               *string
	ObservacaoMesclada *string
	// QuantidadeConsumida is the sum over every contributing line;
	// QuantidadeRepor currently equals it (full replenishment policy).
	QuantidadeConsumida int      `gorm:"not null"`
	QuantidadeRepor     int      `gorm:"not null"`
	DocumentosOrigem    []string `gorm:"serializer:json;type:jsonb"`
	Contaminado         bool     `gorm:"not null;default:false"`
	NotaSugestao        string   `gorm:"not null"`
	CreatedAt           time.Time
}
