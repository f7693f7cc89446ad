package model

import (
	"time"

	"github.com/google/uuid"
)

// Material is one entry of the master catalog used to cross-reference
// extracted consumption and to learn from reviewer corrections.
// Codigo nil/empty means the material has no canonical code; at most one
// entry may hold a given non-empty code (enforced case-insensitively by the
// service layer on top of the unique index).
type Material struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descricao string    `gorm:"index;not null"`
	// uniqueness of non-empty codes is enforced by a partial LOWER(codigo)
	// index created in the schema patches
	Codigo    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CodigoOuVazio flattens the nullable code for matching logic.
func (m *Material) CodigoOuVazio() string {
	if m.Codigo == nil {
		return ""
	}
	return *m.Codigo
}
