package service

import (
	"context"
	"errors"
	"strings"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/aggregation"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrCodigoEmUso guards the one-entry-per-code rule of the master catalog.
var ErrCodigoEmUso = errors.New("já existe um material com este código")

type MaterialService interface {
	Criar(ctx context.Context, req dto.CriarMaterialRequest) (*dto.MaterialResponse, error)
	Listar(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMaterialRequest) (*dto.MaterialResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	// AprenderCorrecoes folds reviewer corrections into the catalog.
	// Additive: entries are appended or updated, never removed.
	AprenderCorrecoes(ctx context.Context, correcoes []aggregation.Correcao) error
	// Catalogo exposes the catalog in the form the aggregation pass consumes.
	Catalogo(ctx context.Context) ([]aggregation.Entrada, error)
}

type materialService struct {
	repo repository.MaterialRepository
	log  zerolog.Logger
}

func NewMaterialService(repo repository.MaterialRepository, log zerolog.Logger) MaterialService {
	return &materialService{repo: repo, log: log.With().Str("service", "material").Logger()}
}

func (s *materialService) Criar(ctx context.Context, req dto.CriarMaterialRequest) (*dto.MaterialResponse, error) {
	if req.Codigo != nil && strings.TrimSpace(*req.Codigo) != "" {
		if _, err := s.repo.FindByCodigo(ctx, *req.Codigo); err == nil {
			return nil, ErrCodigoEmUso
		}
	}
	m := &model.Material{Descricao: req.Descricao, Codigo: normalizaCodigo(req.Codigo)}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := materialToResponse(m)
	return &resp, nil
}

func (s *materialService) Listar(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error) {
	materiais, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MaterialResponse, len(materiais))
	for i := range materiais {
		data[i] = materialToResponse(&materiais[i])
	}
	return &dto.MaterialListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *materialService) Obter(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material não encontrado")
	}
	resp := materialToResponse(m)
	return &resp, nil
}

func (s *materialService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material não encontrado")
	}
	if req.Descricao != nil {
		m.Descricao = *req.Descricao
	}
	if req.Codigo != nil {
		if strings.TrimSpace(*req.Codigo) != "" {
			if existente, err := s.repo.FindByCodigo(ctx, *req.Codigo); err == nil && existente.ID != id {
				return nil, ErrCodigoEmUso
			}
		}
		m.Codigo = normalizaCodigo(req.Codigo)
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	resp := materialToResponse(m)
	return &resp, nil
}

func (s *materialService) Excluir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("material não encontrado")
	}
	return s.repo.Delete(ctx, id)
}

func (s *materialService) Catalogo(ctx context.Context) ([]aggregation.Entrada, error) {
	materiais, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	catalogo := make([]aggregation.Entrada, len(materiais))
	for i := range materiais {
		catalogo[i] = aggregation.Entrada{
			ID:        materiais[i].ID.String(),
			Descricao: materiais[i].Descricao,
			Codigo:    materiais[i].CodigoOuVazio(),
		}
	}
	return catalogo, nil
}

func (s *materialService) AprenderCorrecoes(ctx context.Context, correcoes []aggregation.Correcao) error {
	catalogo, err := s.Catalogo(ctx)
	if err != nil {
		return err
	}
	original := make(map[string]aggregation.Entrada, len(catalogo))
	for _, e := range catalogo {
		original[e.ID] = e
	}

	aprendido, mudou := aggregation.Aprender(catalogo, correcoes)
	if !mudou {
		return nil
	}

	for _, e := range aprendido {
		if e.ID == "" {
			novo := &model.Material{Descricao: e.Descricao}
			if e.Codigo != "" {
				codigo := e.Codigo
				novo.Codigo = &codigo
			}
			if err := s.repo.Create(ctx, novo); err != nil {
				s.log.Warn().Err(err).Str("descricao", e.Descricao).Msg("falha ao cadastrar material aprendido")
			}
			continue
		}
		antes, ok := original[e.ID]
		if !ok || (antes.Descricao == e.Descricao && antes.Codigo == e.Codigo) {
			continue
		}
		id, err := uuid.Parse(e.ID)
		if err != nil {
			continue
		}
		m, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		m.Descricao = e.Descricao
		if e.Codigo != "" {
			codigo := e.Codigo
			m.Codigo = &codigo
		}
		if err := s.repo.Update(ctx, m); err != nil {
			s.log.Warn().Err(err).Str("material_id", e.ID).Msg("falha ao atualizar material aprendido")
		}
	}
	return nil
}

func normalizaCodigo(codigo *string) *string {
	if codigo == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*codigo)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func materialToResponse(m *model.Material) dto.MaterialResponse {
	return dto.MaterialResponse{ID: m.ID.String(), Descricao: m.Descricao, Codigo: m.Codigo}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}
