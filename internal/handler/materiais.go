package handler

import (
	"errors"
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// MaterialHandler manages the master catalog used by the aggregation
// cross-reference.
type MaterialHandler struct {
	svc service.MaterialService
}

func NewMaterialHandler(svc service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Criar godoc
// @Summary      Cadastra material
// @Tags         materiais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        material  body      dto.CriarMaterialRequest  true  "Novo material"
// @Success      201       {object}  dto.MaterialResponse
// @Failure      409       {object}  apierror.APIError
// @Router       /v1/materiais [post]
func (h *MaterialHandler) Criar(c *gin.Context) {
	var req dto.CriarMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCodigoEmUso) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Lista materiais do catálogo
// @Tags         materiais
// @Produce      json
// @Security     BearerAuth
// @Param        busca  query     string  false  "Busca por descrição ou código"
// @Param        page   query     int     false  "Página"
// @Param        limit  query     int     false  "Itens por página"
// @Success      200    {object}  dto.MaterialListResponse
// @Router       /v1/materiais [get]
func (h *MaterialHandler) Listar(c *gin.Context) {
	var filter dto.MaterialFilter
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
// @Summary      Detalha material
// @Tags         materiais
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "ID do material"
// @Success      200 {object}  dto.MaterialResponse
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/materiais/{id} [get]
func (h *MaterialHandler) Obter(c *gin.Context) {
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

// Atualizar godoc
// @Summary      Atualiza material
// @Tags         materiais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string                        true  "ID do material"
// @Param        material  body      dto.AtualizarMaterialRequest  true  "Campos a atualizar"
// @Success      200       {object}  dto.MaterialResponse
// @Failure      404       {object}  apierror.APIError
// @Failure      409       {object}  apierror.APIError
// @Router       /v1/materiais/{id} [put]
func (h *MaterialHandler) Atualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrCodigoEmUso) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excluir godoc
// @Summary      Remove material do catálogo
// @Tags         materiais
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do material"
// @Success      204
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/materiais/{id} [delete]
func (h *MaterialHandler) Excluir(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
