package handler

import (
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/middleware"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Autenticação
// @Description  Autentica por username (ou email) e senha, retornando tokens JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      dto.LoginRequest  true  "Credenciais"
// @Success      200          {object}  dto.LoginResponse
// @Failure      401          {object}  apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary      Renova tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      dto.RefreshRequest  true  "Refresh token"
// @Success      200    {object}  dto.LoginResponse
// @Failure      401    {object}  apierror.APIError
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary      Identidade do token atual
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("Não autenticado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"rol":      claims.Rol,
	})
}
