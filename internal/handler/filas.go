package handler

import (
	"net/http"
	"strconv"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// filas maps the public queue name to its redis key.
var filas = map[string]string{
	"extracao":  worker.QueueExtracao,
	"relatorio": worker.QueueRelatorio,
	"email":     worker.QueueEmail,
}

// FilaHandler exposes the job queues' dead letter lists to administrators.
type FilaHandler struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewFilaHandler(rdb *redis.Client, log zerolog.Logger) *FilaHandler {
	return &FilaHandler{rdb: rdb, log: log}
}

// ListarDLQ godoc
// @Summary      Tamanho da DLQ de cada fila
// @Tags         filas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /v1/filas/dlq [get]
func (h *FilaHandler) ListarDLQ(c *gin.Context) {
	out := map[string]int64{}
	for nome, queue := range filas {
		n, err := worker.DLQLen(c.Request.Context(), h.rdb, queue)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
			return
		}
		out[nome] = n
	}
	c.JSON(http.StatusOK, out)
}

// ReprocessarDLQ godoc
// @Summary      Devolve jobs da DLQ para a fila de origem
// @Tags         filas
// @Produce      json
// @Security     BearerAuth
// @Param        fila  path   string  true   "extracao, relatorio ou email"
// @Param        max   query  int     false  "máximo de jobs a devolver (padrão 50)"
// @Success      200   {object}  map[string]int
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/filas/{fila}/dlq/reprocessar [post]
func (h *FilaHandler) ReprocessarDLQ(c *gin.Context) {
	queue, ok := filas[c.Param("fila")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Fila desconhecida"))
		return
	}
	max, err := strconv.Atoi(c.DefaultQuery("max", "50"))
	if err != nil || max < 1 {
		max = 50
	}
	movidos, err := worker.RequeueFromDLQ(c.Request.Context(), h.rdb, queue, max, h.log)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reprocessados": movidos})
}
