package handler

import (
	"net/http"
	"time"

	"admincs/internal/dto"
	"admincs/internal/service"

	"github.com/gin-gonic/gin"
)

type ObligacionesHandler struct {
	svc   service.ObligacionService
	ahora func() time.Time
}

func NewObligacionesHandler(svc service.ObligacionService) *ObligacionesHandler {
	return &ObligacionesHandler{svc: svc, ahora: time.Now}
}

// CrearPlantilla godoc
// @Summary      Definir plantilla de obligación
// @Description  Egreso recurrente (servicios, nómina…) con frecuencia y día de vencimiento.
// @Tags         obligaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPlantillaRequest true "Plantilla"
// @Success      201  {object} dto.PlantillaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/obligaciones/plantillas [post]
func (h *ObligacionesHandler) CrearPlantilla(c *gin.Context) {
	var req dto.CrearPlantillaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirPlantilla(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPlantillas godoc
// @Summary      Listar plantillas
// @Tags         obligaciones
// @Produce      json
// @Security     BearerAuth
// @Param        activas query bool false "Solo activas"
// @Success      200 {array} dto.PlantillaResponse
// @Router       /v1/obligaciones/plantillas [get]
func (h *ObligacionesHandler) ListarPlantillas(c *gin.Context) {
	resp, err := h.svc.ListarPlantillas(c.Request.Context(), c.Query("activas") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ObligacionesHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ObligacionesHandler) Reactivar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Generar godoc
// @Summary      Generar la obligación de un periodo
// @Description  Idempotente: 201 si se creó, 200 con la existente si ya estaba generada.
// @Tags         obligaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                        true "UUID de la plantilla"
// @Param        body body dto.GenerarObligacionRequest true "Periodo YYYY-MM"
// @Success      201  {object} dto.ObligacionResponse
// @Success      200  {object} dto.ObligacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/obligaciones/plantillas/{id}/generar [post]
func (h *ObligacionesHandler) Generar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.GenerarObligacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, creada, err := h.svc.GenerarObligacion(c.Request.Context(), id, req.Periodo)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if creada {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// GenerarVencidas godoc
// @Summary      Generar obligaciones vencidas
// @Description  Lo mismo que corre el job diario: genera todo periodo con vencimiento hasta hoy.
// @Tags         obligaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.GenerarVencidasResponse
// @Router       /v1/obligaciones/generar-vencidas [post]
func (h *ObligacionesHandler) GenerarVencidas(c *gin.Context) {
	resp, err := h.svc.GenerarVencidas(c.Request.Context(), h.ahora())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar obligaciones generadas
// @Tags         obligaciones
// @Produce      json
// @Security     BearerAuth
// @Param        plantilla_id query string false "UUID de la plantilla"
// @Param        periodo      query string false "YYYY-MM"
// @Param        pendientes   query bool   false "Solo sin liquidar"
// @Success      200 {array} dto.ObligacionResponse
// @Router       /v1/obligaciones [get]
func (h *ObligacionesHandler) Listar(c *gin.Context) {
	var filter dto.ObligacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarObligaciones(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liquidar godoc
// @Summary      Liquidar obligación
// @Description  Registra el egreso en el libro y lo vincula a la obligación.
// @Tags         obligaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                         true "UUID de la obligación"
// @Param        body body dto.LiquidarObligacionRequest true "Pago"
// @Success      201  {object} dto.CobroResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/obligaciones/{id}/liquidar [post]
func (h *ObligacionesHandler) Liquidar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.LiquidarObligacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Liquidar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
