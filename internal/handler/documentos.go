package handler

import (
	"errors"
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentoHandler struct {
	svc service.DocumentoService
}

func NewDocumentoHandler(svc service.DocumentoService) *DocumentoHandler {
	return &DocumentoHandler{svc: svc}
}

// Obter godoc
// @Summary      Detalha documento com materiais extraídos
// @Tags         documentos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "ID do documento"
// @Success      200 {object}  dto.DocumentoResponse
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/documentos/{id} [get]
func (h *DocumentoHandler) Obter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corrigir godoc
// @Summary      Aplica a revisão humana aos dados extraídos
// @Description  Substitui os dados do documento pela versão corrigida pelo revisor. Com aprender=true as correções alimentam o catálogo de materiais.
// @Tags         documentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string                        true  "ID do documento"
// @Param        correcao  body      dto.CorrigirDocumentoRequest  true  "Dados corrigidos"
// @Success      200       {object}  dto.DocumentoResponse
// @Failure      404       {object}  apierror.APIError
// @Failure      409       {object}  apierror.APIError
// @Router       /v1/documentos/{id} [put]
func (h *DocumentoHandler) Corrigir(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CorrigirDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Corrigir(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentoNaoEncontrado):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrPedidoConcluido):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
