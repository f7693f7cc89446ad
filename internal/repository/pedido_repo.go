package repository

import (
	"context"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	Create(ctx context.Context, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	NextNumero(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
	// ReplaceItens swaps the whole consolidated list atomically — aggregation
	// regenerates it from scratch on every run.
	ReplaceItens(ctx context.Context, pedidoID uuid.UUID, itens []model.ItemReposicao) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Preload("Documentos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Documentos.Materiais").
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("posicao ASC") }).
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.HospitalID != "" {
		q = q.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Hospital").
		Order("numero DESC").Limit(filter.Limit).Offset(offset).Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) NextNumero(ctx context.Context) (int, error) {
	var numero int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('pedidos_numero_seq')").Scan(&numero).Error
	return numero, err
}

func (r *pedidoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("status", status).Error
}

func (r *pedidoRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("pdf_path", path).Error
}

func (r *pedidoRepo) ReplaceItens(ctx context.Context, pedidoID uuid.UUID, itens []model.ItemReposicao) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido_id = ?", pedidoID).Delete(&model.ItemReposicao{}).Error; err != nil {
			return err
		}
		if len(itens) == 0 {
			return nil
		}
		return tx.Create(&itens).Error
	})
}
