package service

import (
	"context"
	"errors"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/aggregation"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrDocumentoNaoEncontrado = errors.New("documento não encontrado")
	ErrPedidoConcluido        = errors.New("pedido já concluído; documentos não podem mais ser alterados")
)

type DocumentoService interface {
	Obter(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
	// Corrigir replaces a document's extracted data with the reviewer's
	// version and marks it successful. With Aprender=true the corrected
	// lines also feed the master-catalog learning pass.
	Corrigir(ctx context.Context, id uuid.UUID, req dto.CorrigirDocumentoRequest) (*dto.DocumentoResponse, error)
}

type documentoService struct {
	docRepo     repository.DocumentoRepository
	pedidoRepo  repository.PedidoRepository
	materialSvc MaterialService
	log         zerolog.Logger
}

func NewDocumentoService(docRepo repository.DocumentoRepository, pedidoRepo repository.PedidoRepository, materialSvc MaterialService, log zerolog.Logger) DocumentoService {
	return &documentoService{
		docRepo:     docRepo,
		pedidoRepo:  pedidoRepo,
		materialSvc: materialSvc,
		log:         log.With().Str("service", "documento").Logger(),
	}
}

func (s *documentoService) Obter(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrDocumentoNaoEncontrado
	}
	resp := documentoToResponse(doc)
	return &resp, nil
}

func (s *documentoService) Corrigir(ctx context.Context, id uuid.UUID, req dto.CorrigirDocumentoRequest) (*dto.DocumentoResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrDocumentoNaoEncontrado
	}
	pedido, err := s.pedidoRepo.FindByID(ctx, doc.PedidoID)
	if err != nil {
		return nil, err
	}
	if pedido.Status == model.PedidoConcluida {
		return nil, ErrPedidoConcluido
	}

	doc.PacienteNome = req.PacienteNome
	doc.PacienteNascimento = req.PacienteNascimento
	doc.DataCirurgia = req.DataCirurgia
	doc.Procedimento = req.Procedimento
	doc.Medico = req.Medico

	materiais := make([]model.MaterialConsumido, 0, len(req.Materiais))
	for _, in := range req.Materiais {
		quantidade := in.Quantidade
		if quantidade <= 0 {
			quantidade = 1
		}
		materiais = append(materiais, model.MaterialConsumido{
			Descricao:         in.Descricao,
			Codigo:            in.Codigo,
			Lote:              in.Lote,
			Quantidade:        quantidade,
			Observacao:        in.Observacao,
			ObservacaoUsuario: in.ObservacaoUsuario,
			Contaminado:       in.Contaminado,
		})
	}
	doc.Materiais = materiais

	// A reviewed document counts as successful even if extraction failed.
	if err := s.docRepo.MarcarSucesso(ctx, doc); err != nil {
		return nil, err
	}

	if req.Aprender {
		correcoes := make([]aggregation.Correcao, 0, len(req.Materiais))
		for _, in := range req.Materiais {
			c := aggregation.Correcao{Descricao: in.Descricao}
			if in.Codigo != nil {
				c.Codigo = *in.Codigo
			}
			correcoes = append(correcoes, c)
		}
		// Learning is best-effort: a catalog hiccup never blocks the review.
		if err := s.materialSvc.AprenderCorrecoes(ctx, correcoes); err != nil {
			s.log.Warn().Err(err).Str("documento_id", id.String()).Msg("falha ao aprender correções")
		}
	}

	atualizado, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := documentoToResponse(atualizado)
	return &resp, nil
}

func documentoToResponse(d *model.Documento) dto.DocumentoResponse {
	materiais := make([]dto.MaterialConsumidoResponse, len(d.Materiais))
	for i, m := range d.Materiais {
		materiais[i] = dto.MaterialConsumidoResponse{
			ID:                m.ID.String(),
			Descricao:         m.Descricao,
			Codigo:            m.Codigo,
			Lote:              m.Lote,
			Quantidade:        m.Quantidade,
			Observacao:        m.Observacao,
			ObservacaoUsuario: m.ObservacaoUsuario,
			Contaminado:       m.Contaminado,
		}
	}
	return dto.DocumentoResponse{
		ID:                 d.ID.String(),
		PedidoID:           d.PedidoID.String(),
		NomeArquivo:        d.NomeArquivo,
		Status:             d.Status,
		ErroMensagem:       d.ErroMensagem,
		PacienteNome:       d.PacienteNome,
		PacienteNascimento: d.PacienteNascimento,
		DataCirurgia:       d.DataCirurgia,
		Procedimento:       d.Procedimento,
		Medico:             d.Medico,
		Materiais:          materiais,
	}
}
