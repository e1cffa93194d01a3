package handler

import (
	"net/http"

	"admincs/internal/dto"
	"admincs/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ResumenMensual godoc
// @Summary      Resumen mensual
// @Description  Ingresos por concepto, egresos por categoría y balance del mes.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        mes  query int true "1-12"
// @Param        anio query int true "Año"
// @Success      200 {object} dto.ResumenMensualResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reportes/resumen-mensual [get]
func (h *ReportesHandler) ResumenMensual(c *gin.Context) {
	var q dto.ResumenMensualQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ResumenMensual(c.Request.Context(), q.Mes, q.Anio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
