package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// 10 MiB per uploaded form scan.
const maxUploadBytes = 10 << 20

type PedidoHandler struct {
	svc service.PedidoService
}

func NewPedidoHandler(svc service.PedidoService) *PedidoHandler {
	return &PedidoHandler{svc: svc}
}

// Criar godoc
// @Summary      Abre um pedido de reposição
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        pedido  body      dto.CriarPedidoRequest  true  "Hospital do pedido"
// @Success      201     {object}  dto.PedidoResponse
// @Failure      404     {object}  apierror.APIError
// @Router       /v1/pedidos [post]
func (h *PedidoHandler) Criar(c *gin.Context) {
	var req dto.CriarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Lista pedidos
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        hospital_id  query     string  false  "Filtra por hospital"
// @Param        status       query     string  false  "aberta | processando | revisao | concluida"
// @Param        page         query     int     false  "Página"
// @Param        limit        query     int     false  "Itens por página"
// @Success      200          {object}  dto.PedidoListResponse
// @Router       /v1/pedidos [get]
func (h *PedidoHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Detalha pedido com documentos e itens consolidados
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "ID do pedido"
// @Success      200 {object}  dto.PedidoResponse
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/pedidos/{id} [get]
func (h *PedidoHandler) Obter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdicionarDocumento godoc
// @Summary      Anexa uma ficha de consumo digitalizada ao pedido
// @Tags         pedidos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "ID do pedido"
// @Param        arquivo  formData  file    true  "Imagem da ficha (JPEG, PNG ou WebP)"
// @Success      201      {object}  dto.DocumentoResponse
// @Failure      415      {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/documentos [post]
func (h *PedidoHandler) AdicionarDocumento(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("arquivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Campo 'arquivo' ausente no formulário"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Arquivo excede o limite de 10 MB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	defer file.Close()
	conteudo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	resp, err := h.svc.AdicionarDocumento(c.Request.Context(), id, fileHeader.Filename, mimeType, conteudo)
	if err != nil {
		if errors.Is(err, service.ErrFormatoNaoSuportado) {
			c.JSON(http.StatusUnsupportedMediaType, apierror.New(err.Error()))
			return
		}
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Processar godoc
// @Summary      Dispara a extração por IA dos documentos pendentes
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do pedido"
// @Success      202 {object}  map[string]string
// @Failure      409 {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/processar [post]
func (h *PedidoHandler) Processar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Processar(c.Request.Context(), id); err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Extração iniciada"})
}

// Reprocessar godoc
// @Summary      Reprocessa somente os documentos com erro
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do pedido"
// @Success      202 {object}  map[string]string
// @Failure      409 {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/reprocessar [post]
func (h *PedidoHandler) Reprocessar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reprocessar(c.Request.Context(), id); err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Reprocessamento iniciado"})
}

// Agregar godoc
// @Summary      Consolida os materiais extraídos em itens de reposição
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "ID do pedido"
// @Success      200 {object}  dto.PedidoResponse
// @Failure      409 {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/agregar [post]
func (h *PedidoHandler) Agregar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Agregar(c.Request.Context(), id)
	if err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Concluir godoc
// @Summary      Conclui o pedido e gera o relatório PDF
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string                     true  "ID do pedido"
// @Param        opcoes  body      dto.ConcluirPedidoRequest  true  "Opções de conclusão"
// @Success      202     {object}  map[string]string
// @Failure      409     {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/concluir [post]
func (h *PedidoHandler) Concluir(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ConcluirPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Concluir(c.Request.Context(), id, req); err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Pedido concluído; relatório em geração"})
}

// BaixarPDF godoc
// @Summary      Baixa o relatório PDF do pedido
// @Tags         pedidos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do pedido"
// @Success      200 {file}    binary
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/pedidos/{id}/pdf [get]
func (h *PedidoHandler) BaixarPDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	path, nome, err := h.svc.CaminhoRelatorio(c.Request.Context(), id)
	if err != nil {
		respondPedidoErr(c, err)
		return
	}
	c.FileAttachment(path, nome)
}

// respondPedidoErr maps service sentinel errors onto HTTP statuses.
func respondPedidoErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPedidoNaoEncontrado),
		errors.Is(err, service.ErrHospitalInativo),
		errors.Is(err, service.ErrRelatorioIndisponivel):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPedidoConcluido),
		errors.Is(err, service.ErrPedidoSemDocumentos),
		errors.Is(err, service.ErrPedidoSemItens),
		errors.Is(err, service.ErrPedidoNaoRevisao):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
