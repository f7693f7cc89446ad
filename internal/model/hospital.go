package model

import (
	"time"

	"github.com/google/uuid"
)

// Hospital is a client institution whose OPME consumption documents are
// reconciled here. EmailContato receives the replenishment report when set.
type Hospital struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string    `gorm:"index;not null"`
	CNPJ         *string   `gorm:"type:varchar(20)"`
	EmailContato *string
	Ativo        bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
