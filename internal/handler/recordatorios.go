package handler

import (
	"net/http"

	"admincs/internal/dto"
	"admincs/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RecordatoriosHandler exposes the reminder dead-letter queue to administrators.
type RecordatoriosHandler struct{ rdb *redis.Client }

func NewRecordatoriosHandler(rdb *redis.Client) *RecordatoriosHandler {
	return &RecordatoriosHandler{rdb: rdb}
}

// Fallidos godoc
// @Summary      Recordatorios no entregados
// @Description  Últimos recordatorios aparcados en la DLQ, del más reciente al más antiguo.
// @Tags         recordatorios
// @Produce      json
// @Security     BearerAuth
// @Param        limite query int false "1-1000, por defecto 50"
// @Success      200 {array} worker.DLQEntry
// @Failure      400 {object} apierror.APIError
// @Router       /v1/recordatorios/fallidos [get]
func (h *RecordatoriosHandler) Fallidos(c *gin.Context) {
	var q dto.FallidosQuery
	if !bindQuery(c, &q) {
		return
	}
	entries, err := worker.ListarDLQ(c.Request.Context(), h.rdb, worker.QueueRecordatorio, q.Limite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Reencolar godoc
// @Summary      Reencolar recordatorios fallidos
// @Description  Devuelve a la cola los recordatorios aparcados; causa filtra por motivo (p. ej. relay tras una caída del SMTP).
// @Tags         recordatorios
// @Produce      json
// @Security     BearerAuth
// @Param        causa query string false "relay | destinatario | payload | sin_handler | interna"
// @Success      200 {object} dto.ReencolarResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/recordatorios/fallidos/reencolar [post]
func (h *RecordatoriosHandler) Reencolar(c *gin.Context) {
	var q dto.ReencolarQuery
	if !bindQuery(c, &q) {
		return
	}
	n, err := worker.ReencolarDLQ(c.Request.Context(), h.rdb, worker.QueueRecordatorio, q.Causa)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReencolarResponse{Reencolados: n})
}
