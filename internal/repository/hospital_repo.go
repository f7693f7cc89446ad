package repository

import (
	"context"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HospitalRepository interface {
	Create(ctx context.Context, h *model.Hospital) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	List(ctx context.Context) ([]model.Hospital, error)
	Update(ctx context.Context, h *model.Hospital) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type hospitalRepo struct{ db *gorm.DB }

func NewHospitalRepository(db *gorm.DB) HospitalRepository { return &hospitalRepo{db: db} }

func (r *hospitalRepo) Create(ctx context.Context, h *model.Hospital) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *hospitalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	var h model.Hospital
	err := r.db.WithContext(ctx).First(&h, id).Error
	return &h, err
}

func (r *hospitalRepo) List(ctx context.Context) ([]model.Hospital, error) {
	var hospitais []model.Hospital
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&hospitais).Error
	return hospitais, err
}

func (r *hospitalRepo) Update(ctx context.Context, h *model.Hospital) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *hospitalRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Hospital{}).Where("id = ?", id).Update("ativo", false).Error
}
