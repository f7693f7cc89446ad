package repository

import (
	"context"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentoRepository interface {
	Create(ctx context.Context, d *model.Documento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error)
	ListByPedido(ctx context.Context, pedidoID uuid.UUID) ([]model.Documento, error)
	ListByPedidoStatus(ctx context.Context, pedidoID uuid.UUID, status string) ([]model.Documento, error)
	Update(ctx context.Context, d *model.Documento) error
	MarcarProcessando(ctx context.Context, id uuid.UUID) error
	MarcarSucesso(ctx context.Context, d *model.Documento) error
	MarcarErro(ctx context.Context, id uuid.UUID, mensagem string, nextRetryAt *time.Time) error
	// ReplaceMateriais swaps a document's line items with the reviewer's
	// corrected list inside a transaction.
	ReplaceMateriais(ctx context.Context, documentoID uuid.UUID, materiais []model.MaterialConsumido) error
	// ListPendingRetries finds errored documents whose backoff has elapsed,
	// that still have retry budget and whose pedido is not concluded.
	ListPendingRetries(ctx context.Context, now time.Time, maxRetries, limit int) ([]model.Documento, error)
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository { return &documentoRepo{db: db} }

func (r *documentoRepo) Create(ctx context.Context, d *model.Documento) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error) {
	var d model.Documento
	err := r.db.WithContext(ctx).Preload("Materiais").First(&d, id).Error
	return &d, err
}

func (r *documentoRepo) ListByPedido(ctx context.Context, pedidoID uuid.UUID) ([]model.Documento, error) {
	var docs []model.Documento
	err := r.db.WithContext(ctx).Preload("Materiais").
		Where("pedido_id = ?", pedidoID).Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *documentoRepo) ListByPedidoStatus(ctx context.Context, pedidoID uuid.UUID, status string) ([]model.Documento, error) {
	var docs []model.Documento
	err := r.db.WithContext(ctx).Preload("Materiais").
		Where("pedido_id = ? AND status = ?", pedidoID, status).Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *documentoRepo) Update(ctx context.Context, d *model.Documento) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *documentoRepo) MarcarProcessando(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Documento{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.DocumentoProcessando, "erro_mensagem": nil}).Error
}

// MarcarSucesso persists the extraction result: document fields plus the
// freshly extracted material lines (previous lines are discarded).
func (r *documentoRepo) MarcarSucesso(ctx context.Context, d *model.Documento) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("documento_id = ?", d.ID).Delete(&model.MaterialConsumido{}).Error; err != nil {
			return err
		}
		d.Status = model.DocumentoSucesso
		d.ErroMensagem = nil
		d.NextRetryAt = nil
		for i := range d.Materiais {
			d.Materiais[i].DocumentoID = d.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(d).Error
	})
}

func (r *documentoRepo) MarcarErro(ctx context.Context, id uuid.UUID, mensagem string, nextRetryAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Documento{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.DocumentoErro,
			"erro_mensagem": mensagem,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"next_retry_at": nextRetryAt,
		}).Error
}

func (r *documentoRepo) ReplaceMateriais(ctx context.Context, documentoID uuid.UUID, materiais []model.MaterialConsumido) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("documento_id = ?", documentoID).Delete(&model.MaterialConsumido{}).Error; err != nil {
			return err
		}
		if len(materiais) == 0 {
			return nil
		}
		for i := range materiais {
			materiais[i].DocumentoID = documentoID
		}
		return tx.Create(&materiais).Error
	})
}

// Documents of a concluded pedido are frozen and never come back through
// the retry path, hence the join on pedidos.status.
func (r *documentoRepo) ListPendingRetries(ctx context.Context, now time.Time, maxRetries, limit int) ([]model.Documento, error) {
	var docs []model.Documento
	err := r.db.WithContext(ctx).
		Joins("JOIN pedidos ON pedidos.id = documentos.pedido_id").
		Where("documentos.status = ? AND documentos.next_retry_at IS NOT NULL AND documentos.next_retry_at <= ? AND documentos.retry_count <= ? AND pedidos.status <> ?",
			model.DocumentoErro, now, maxRetries, model.PedidoConcluida).
		Order("documentos.next_retry_at ASC").Limit(limit).Find(&docs).Error
	return docs, err
}
