package handler

import (
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler reports liveness plus dependency status.
type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, cb: cb}
}

// Check godoc
// @Summary      Health check
// @Description  Verifica a saúde da API e suas dependências
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		deps["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		deps["database"] = "up"
	}

	if err := h.rdb.Ping(c.Request.Context()).Err(); err != nil {
		deps["redis"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		deps["redis"] = "up"
	}

	deps["extraction_circuit"] = h.cb.State().String()

	c.JSON(status, gin.H{
		"status":       map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
		"dependencies": deps,
	})
}
