package handler

import (
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	svc service.HospitalService
}

func NewHospitalHandler(svc service.HospitalService) *HospitalHandler {
	return &HospitalHandler{svc: svc}
}

// Criar godoc
// @Summary      Cadastra hospital
// @Tags         hospitais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        hospital  body      dto.CriarHospitalRequest  true  "Novo hospital"
// @Success      201       {object}  dto.HospitalResponse
// @Failure      422       {object}  apierror.ValidationError
// @Router       /v1/hospitais [post]
func (h *HospitalHandler) Criar(c *gin.Context) {
	var req dto.CriarHospitalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Lista hospitais ativos
// @Tags         hospitais
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.HospitalResponse
// @Router       /v1/hospitais [get]
func (h *HospitalHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Detalha hospital
// @Tags         hospitais
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "ID do hospital"
// @Success      200 {object}  dto.HospitalResponse
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/hospitais/{id} [get]
func (h *HospitalHandler) Obter(c *gin.Context) {
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
// @Summary      Atualiza hospital
// @Tags         hospitais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string                        true  "ID do hospital"
// @Param        hospital  body      dto.AtualizarHospitalRequest  true  "Campos a atualizar"
// @Success      200       {object}  dto.HospitalResponse
// @Failure      404       {object}  apierror.APIError
// @Router       /v1/hospitais/{id} [put]
func (h *HospitalHandler) Atualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarHospitalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desativar godoc
// @Summary      Desativa hospital
// @Tags         hospitais
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do hospital"
// @Success      204
// @Failure      404 {object}  apierror.APIError
// @Router       /v1/hospitais/{id} [delete]
func (h *HospitalHandler) Desativar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
