package handler

import (
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// UsuarioHandler exposes user administration (administrador-only routes).
type UsuarioHandler struct {
	svc service.AuthService
}

func NewUsuarioHandler(svc service.AuthService) *UsuarioHandler {
	return &UsuarioHandler{svc: svc}
}

// Criar godoc
// @Summary      Cria usuário
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        usuario  body      dto.CriarUsuarioRequest  true  "Novo usuário"
// @Success      201      {object}  dto.UsuarioResponse
// @Failure      422      {object}  apierror.ValidationError
// @Router       /v1/usuarios [post]
func (h *UsuarioHandler) Criar(c *gin.Context) {
	var req dto.CriarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarUsuario(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New("Não foi possível criar o usuário: "+err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Lista usuários
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        incluir_inativos  query     bool  false  "Inclui usuários desativados"
// @Success      200               {array}   dto.UsuarioResponse
// @Router       /v1/usuarios [get]
func (h *UsuarioHandler) Listar(c *gin.Context) {
	incluirInativos := c.Query("incluir_inativos") == "true"
	resp, err := h.svc.ListarUsuarios(c.Request.Context(), incluirInativos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atualizar godoc
// @Summary      Atualiza usuário
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "ID do usuário"
// @Param        usuario  body      dto.AtualizarUsuarioRequest  true  "Campos a atualizar"
// @Success      200      {object}  dto.UsuarioResponse
// @Failure      404      {object}  apierror.APIError
// @Router       /v1/usuarios/{id} [put]
func (h *UsuarioHandler) Atualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desativar godoc
// @Summary      Desativa usuário
// @Tags         usuarios
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do usuário"
// @Success      204
// @Router       /v1/usuarios/{id} [delete]
func (h *UsuarioHandler) Desativar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DesativarUsuario(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Usuário não encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reativar godoc
// @Summary      Reativa usuário
// @Tags         usuarios
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do usuário"
// @Success      204
// @Router       /v1/usuarios/{id}/reativar [post]
func (h *UsuarioHandler) Reativar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ReativarUsuario(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Usuário não encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}
