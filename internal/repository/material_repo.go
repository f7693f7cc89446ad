package repository

import (
	"context"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Material, error)
	List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error)
	// ListAll returns the whole catalog in description order — the order the
	// aggregation cross-reference and learning passes depend on.
	ListAll(ctx context.Context) ([]model.Material, error)
	Update(ctx context.Context, m *model.Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *materialRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).Where("LOWER(codigo) = LOWER(?)", codigo).First(&m).Error
	return &m, err
}

func (r *materialRepo) List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error) {
	var materiais []model.Material
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Material{})
	if filter.Busca != "" {
		q = q.Where("descricao ILIKE ? OR codigo ILIKE ?", "%"+filter.Busca+"%", "%"+filter.Busca+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("descricao ASC").Limit(filter.Limit).Offset(offset).Find(&materiais).Error
	return materiais, total, err
}

func (r *materialRepo) ListAll(ctx context.Context) ([]model.Material, error) {
	var materiais []model.Material
	err := r.db.WithContext(ctx).Order("descricao ASC").Find(&materiais).Error
	return materiais, err
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *materialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Material{}, id).Error
}
