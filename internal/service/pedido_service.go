package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/aggregation"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrPedidoNaoEncontrado   = errors.New("pedido não encontrado")
	ErrHospitalInativo       = errors.New("hospital não encontrado ou inativo")
	ErrPedidoSemDocumentos   = errors.New("pedido não possui documentos para processar")
	ErrPedidoSemItens        = errors.New("pedido não possui itens consolidados; execute a agregação antes de concluir")
	ErrPedidoNaoRevisao      = errors.New("pedido precisa estar em revisão para ser concluído")
	ErrFormatoNaoSuportado   = errors.New("formato de arquivo não suportado; envie JPEG, PNG ou WebP")
	ErrRelatorioIndisponivel = errors.New("relatório PDF ainda não foi gerado")
)

// mime types the extraction provider accepts as inline images.
var mimeSuportado = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Enfileirador is the job-queue contract (satisfied by *worker.Dispatcher).
type Enfileirador interface {
	Enqueue(ctx context.Context, queue string, payload interface{}) error
}

type PedidoService interface {
	Criar(ctx context.Context, req dto.CriarPedidoRequest) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	// AdicionarDocumento stores the uploaded form and registers it as
	// pendente. Extraction only runs when Processar is called.
	AdicionarDocumento(ctx context.Context, pedidoID uuid.UUID, nomeArquivo, mimeType string, conteudo []byte) (*dto.DocumentoResponse, error)
	// Processar enqueues AI extraction over every pending/errored document.
	Processar(ctx context.Context, id uuid.UUID) error
	// Reprocessar enqueues extraction restricted to errored documents.
	Reprocessar(ctx context.Context, id uuid.UUID) error
	// Agregar consolidates successful documents into replenishment items.
	Agregar(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	// Concluir freezes the pedido and enqueues report generation.
	Concluir(ctx context.Context, id uuid.UUID, req dto.ConcluirPedidoRequest) error
	// CaminhoRelatorio resolves the absolute path of the generated PDF.
	CaminhoRelatorio(ctx context.Context, id uuid.UUID) (path, nome string, err error)
}

type pedidoService struct {
	pedidoRepo   repository.PedidoRepository
	docRepo      repository.DocumentoRepository
	hospitalRepo repository.HospitalRepository
	materialSvc  MaterialService
	dispatcher   Enfileirador
	cfg          *config.Config
	log          zerolog.Logger
}

func NewPedidoService(
	pedidoRepo repository.PedidoRepository,
	docRepo repository.DocumentoRepository,
	hospitalRepo repository.HospitalRepository,
	materialSvc MaterialService,
	dispatcher Enfileirador,
	cfg *config.Config,
	log zerolog.Logger,
) PedidoService {
	return &pedidoService{
		pedidoRepo:   pedidoRepo,
		docRepo:      docRepo,
		hospitalRepo: hospitalRepo,
		materialSvc:  materialSvc,
		dispatcher:   dispatcher,
		cfg:          cfg,
		log:          log.With().Str("service", "pedido").Logger(),
	}
}

func (s *pedidoService) Criar(ctx context.Context, req dto.CriarPedidoRequest) (*dto.PedidoResponse, error) {
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, ErrHospitalInativo
	}
	hospital, err := s.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil || !hospital.Ativo {
		return nil, ErrHospitalInativo
	}

	numero, err := s.pedidoRepo.NextNumero(ctx)
	if err != nil {
		return nil, fmt.Errorf("gerar número do pedido: %w", err)
	}
	pedido := &model.Pedido{
		HospitalID: hospitalID,
		Numero:     numero,
		Status:     model.PedidoAberta,
		Hospital:   hospital,
	}
	if err := s.pedidoRepo.Create(ctx, pedido); err != nil {
		return nil, err
	}
	s.log.Info().Int("numero", numero).Str("hospital", hospital.Nome).Msg("pedido criado")
	resp := pedidoToResponse(pedido)
	return &resp, nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	pedidos, total, err := s.pedidoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, len(pedidos))
	for i := range pedidos {
		data[i] = pedidoToResponse(&pedidos[i])
	}
	return &dto.PedidoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *pedidoService) Obter(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrPedidoNaoEncontrado
	}
	resp := pedidoToResponse(pedido)
	return &resp, nil
}

func (s *pedidoService) AdicionarDocumento(ctx context.Context, pedidoID uuid.UUID, nomeArquivo, mimeType string, conteudo []byte) (*dto.DocumentoResponse, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return nil, ErrPedidoNaoEncontrado
	}
	if pedido.Status == model.PedidoConcluida {
		return nil, ErrPedidoConcluido
	}
	ext, ok := mimeSuportado[mimeType]
	if !ok {
		return nil, ErrFormatoNaoSuportado
	}

	dir := filepath.Join(s.cfg.UploadStoragePath, pedidoID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de upload: %w", err)
	}
	caminho := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(caminho, conteudo, 0o644); err != nil {
		return nil, fmt.Errorf("gravar arquivo: %w", err)
	}

	doc := &model.Documento{
		PedidoID:       pedidoID,
		NomeArquivo:    nomeArquivo,
		CaminhoArquivo: caminho,
		MimeType:       mimeType,
		Status:         model.DocumentoPendente,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		// keep the filesystem consistent with the database
		_ = os.Remove(caminho)
		return nil, err
	}
	resp := documentoToResponse(doc)
	return &resp, nil
}

func (s *pedidoService) Processar(ctx context.Context, id uuid.UUID) error {
	return s.enfileirarExtracao(ctx, id, false)
}

func (s *pedidoService) Reprocessar(ctx context.Context, id uuid.UUID) error {
	return s.enfileirarExtracao(ctx, id, true)
}

func (s *pedidoService) enfileirarExtracao(ctx context.Context, id uuid.UUID, somenteErros bool) error {
	pedido, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return ErrPedidoNaoEncontrado
	}
	if pedido.Status == model.PedidoConcluida {
		return ErrPedidoConcluido
	}

	elegiveis := 0
	for _, d := range pedido.Documentos {
		if d.Status == model.DocumentoErro || (!somenteErros && d.Status == model.DocumentoPendente) {
			elegiveis++
		}
	}
	if elegiveis == 0 {
		return ErrPedidoSemDocumentos
	}

	// The worker re-marks processando when it starts; marking here gives
	// immediate feedback in listings while the job waits in the queue.
	if err := s.pedidoRepo.UpdateStatus(ctx, id, model.PedidoProcessando); err != nil {
		return err
	}
	payload := worker.ExtracaoPayload{PedidoID: id.String(), SomenteErros: somenteErros}
	if err := s.dispatcher.Enqueue(ctx, worker.QueueExtracao, payload); err != nil {
		return fmt.Errorf("enfileirar extração: %w", err)
	}
	s.log.Info().Str("pedido_id", id.String()).Bool("somente_erros", somenteErros).
		Int("documentos", elegiveis).Msg("extração enfileirada")
	return nil
}

func (s *pedidoService) Agregar(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrPedidoNaoEncontrado
	}
	if pedido.Status == model.PedidoConcluida {
		return nil, ErrPedidoConcluido
	}

	catalogo, err := s.materialSvc.Catalogo(ctx)
	if err != nil {
		return nil, fmt.Errorf("carregar catálogo de materiais: %w", err)
	}

	docs := make([]aggregation.Documento, len(pedido.Documentos))
	for i, d := range pedido.Documentos {
		registros := make([]aggregation.Registro, len(d.Materiais))
		for j, m := range d.Materiais {
			registros[j] = aggregation.Registro{
				Descricao:         m.Descricao,
				Codigo:            derefVazio(m.Codigo),
				Lote:              derefVazio(m.Lote),
				Quantidade:        m.Quantidade,
				Observacao:        derefVazio(m.Observacao),
				ObservacaoUsuario: derefVazio(m.ObservacaoUsuario),
				Contaminado:       m.Contaminado,
			}
		}
		docs[i] = aggregation.Documento{
			ID:        d.ID.String(),
			Sucesso:   d.Status == model.DocumentoSucesso,
			Materiais: registros,
		}
	}

	consolidado := aggregation.Aggregate(docs, catalogo)

	itens := make([]model.ItemReposicao, len(consolidado))
	for i, item := range consolidado {
		itens[i] = model.ItemReposicao{
			PedidoID:            id,
			Posicao:             i,
			Descricao:           item.Descricao,
			Codigo:              vazioParaNil(item.Codigo),
			Lote:                vazioParaNil(item.Lote),
			ObservacaoMesclada:  vazioParaNil(item.ObservacaoMesclada),
			QuantidadeConsumida: item.QuantidadeConsumida,
			QuantidadeRepor:     item.QuantidadeRepor,
			DocumentosOrigem:    item.DocumentosOrigem,
			Contaminado:         item.Contaminado,
			NotaSugestao:        item.NotaSugestao,
		}
	}
	if err := s.pedidoRepo.ReplaceItens(ctx, id, itens); err != nil {
		return nil, fmt.Errorf("salvar itens consolidados: %w", err)
	}
	if pedido.Status != model.PedidoRevisao {
		if err := s.pedidoRepo.UpdateStatus(ctx, id, model.PedidoRevisao); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("pedido_id", id.String()).Int("itens", len(itens)).Msg("agregação concluída")

	atualizado, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := pedidoToResponse(atualizado)
	return &resp, nil
}

func (s *pedidoService) Concluir(ctx context.Context, id uuid.UUID, req dto.ConcluirPedidoRequest) error {
	pedido, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return ErrPedidoNaoEncontrado
	}
	if pedido.Status == model.PedidoConcluida {
		return ErrPedidoConcluido
	}
	if pedido.Status != model.PedidoRevisao {
		return ErrPedidoNaoRevisao
	}
	if len(pedido.Itens) == 0 {
		return ErrPedidoSemItens
	}

	if err := s.pedidoRepo.UpdateStatus(ctx, id, model.PedidoConcluida); err != nil {
		return err
	}
	payload := worker.RelatorioPayload{PedidoID: id.String(), EnviarEmail: req.EnviarEmail}
	if err := s.dispatcher.Enqueue(ctx, worker.QueueRelatorio, payload); err != nil {
		return fmt.Errorf("enfileirar geração do relatório: %w", err)
	}
	s.log.Info().Str("pedido_id", id.String()).Bool("enviar_email", req.EnviarEmail).Msg("pedido concluído")
	return nil
}

func (s *pedidoService) CaminhoRelatorio(ctx context.Context, id uuid.UUID) (string, string, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, id)
	if err != nil {
		return "", "", ErrPedidoNaoEncontrado
	}
	nome := fmt.Sprintf("pedido_%d.pdf", pedido.Numero)

	if pedido.PDFPath != nil && *pedido.PDFPath != "" {
		if _, err := os.Stat(*pedido.PDFPath); err == nil {
			return *pedido.PDFPath, nome, nil
		}
	}

	// Report missing (worker still queued, or file swept): a concluded
	// pedido can regenerate it on demand from its frozen items.
	if pedido.Status != model.PedidoConcluida {
		return "", "", ErrRelatorioIndisponivel
	}
	path, err := infra.GeneratePedidoPDF(pedido, s.cfg.PDFStoragePath)
	if err != nil {
		return "", "", fmt.Errorf("gerar relatório sob demanda: %w", err)
	}
	if err := s.pedidoRepo.UpdatePDFPath(ctx, id, path); err != nil {
		return "", "", err
	}
	s.log.Info().Str("pedido_id", id.String()).Msg("relatório gerado sob demanda")
	return path, nome, nil
}

func pedidoToResponse(p *model.Pedido) dto.PedidoResponse {
	resp := dto.PedidoResponse{
		ID:         p.ID.String(),
		Numero:     p.Numero,
		HospitalID: p.HospitalID.String(),
		Status:     p.Status,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	if p.Hospital != nil {
		h := hospitalToResponse(p.Hospital)
		resp.Hospital = &h
	}
	if len(p.Documentos) > 0 {
		resp.Documentos = make([]dto.DocumentoResponse, len(p.Documentos))
		for i := range p.Documentos {
			resp.Documentos[i] = documentoToResponse(&p.Documentos[i])
		}
	}
	if len(p.Itens) > 0 {
		resp.Itens = make([]dto.ItemReposicaoResponse, len(p.Itens))
		for i, item := range p.Itens {
			resp.Itens[i] = dto.ItemReposicaoResponse{
				ID:                  item.ID.String(),
				Descricao:           item.Descricao,
				Codigo:              item.Codigo,
				Lote:                item.Lote,
				ObservacaoMesclada:  item.ObservacaoMesclada,
				QuantidadeConsumida: item.QuantidadeConsumida,
				QuantidadeRepor:     item.QuantidadeRepor,
				DocumentosOrigem:    item.DocumentosOrigem,
				Contaminado:         item.Contaminado,
				NotaSugestao:        item.NotaSugestao,
			}
		}
	}
	return resp
}

func derefVazio(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func vazioParaNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
