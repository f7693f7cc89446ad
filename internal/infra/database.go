package infra

import (
	"fmt"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a pooled GORM connection backed by pgx. Schema
// setup is a separate RunMigrations call made by each entry point.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// RunMigrations applies the schema. Shared with integration tests so the
// test database matches production exactly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Hospital{},
		&model.Material{},
		&model.Pedido{},
		&model.Documento{},
		&model.MaterialConsumido{},
		&model.ItemReposicao{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully
// handle on its own. Each statement uses IF NOT EXISTS semantics so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// order number allocation — a sequence keeps numbering gapless-ish
		// and race-free across concurrent creators
		`CREATE SEQUENCE IF NOT EXISTS pedidos_numero_seq START 1`,
		// partial index backing the retry cron query
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_documentos_pending_retry') THEN
		    CREATE INDEX idx_documentos_pending_retry
		        ON documentos (next_retry_at)
		        WHERE status = 'erro' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// case-insensitive uniqueness for non-empty catalog codes
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_materiais_codigo_lower') THEN
		    CREATE UNIQUE INDEX uni_materiais_codigo_lower
		        ON materiais (LOWER(codigo))
		        WHERE codigo IS NOT NULL AND codigo <> '';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
