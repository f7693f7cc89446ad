package service

import (
	"context"
	"errors"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
)

type HospitalService interface {
	Criar(ctx context.Context, req dto.CriarHospitalRequest) (*dto.HospitalResponse, error)
	Listar(ctx context.Context) ([]dto.HospitalResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.HospitalResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarHospitalRequest) (*dto.HospitalResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type hospitalService struct {
	repo repository.HospitalRepository
}

func NewHospitalService(repo repository.HospitalRepository) HospitalService {
	return &hospitalService{repo: repo}
}

func (s *hospitalService) Criar(ctx context.Context, req dto.CriarHospitalRequest) (*dto.HospitalResponse, error) {
	h := &model.Hospital{
		Nome:         req.Nome,
		CNPJ:         req.CNPJ,
		EmailContato: req.EmailContato,
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	resp := hospitalToResponse(h)
	return &resp, nil
}

func (s *hospitalService) Listar(ctx context.Context) ([]dto.HospitalResponse, error) {
	hospitais, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.HospitalResponse, len(hospitais))
	for i := range hospitais {
		resp[i] = hospitalToResponse(&hospitais[i])
	}
	return resp, nil
}

func (s *hospitalService) Obter(ctx context.Context, id uuid.UUID) (*dto.HospitalResponse, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("hospital não encontrado")
	}
	resp := hospitalToResponse(h)
	return &resp, nil
}

func (s *hospitalService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarHospitalRequest) (*dto.HospitalResponse, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("hospital não encontrado")
	}
	if req.Nome != nil {
		h.Nome = *req.Nome
	}
	if req.CNPJ != nil {
		h.CNPJ = req.CNPJ
	}
	if req.EmailContato != nil {
		h.EmailContato = req.EmailContato
	}
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	resp := hospitalToResponse(h)
	return &resp, nil
}

func (s *hospitalService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("hospital não encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func hospitalToResponse(h *model.Hospital) dto.HospitalResponse {
	return dto.HospitalResponse{
		ID:           h.ID.String(),
		Nome:         h.Nome,
		CNPJ:         h.CNPJ,
		EmailContato: h.EmailContato,
		Ativo:        h.Ativo,
	}
}
