package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"admincs/internal/dto"
	"admincs/internal/infra"
	"admincs/internal/service"

	"github.com/gin-gonic/gin"
)

type CobrosHandler struct {
	svc     service.CobroService
	empresa string
}

func NewCobrosHandler(svc service.CobroService, empresa string) *CobrosHandler {
	return &CobrosHandler{svc: svc, empresa: empresa}
}

// Crear godoc
// @Summary      Registrar un cobro
// @Description  Registra un ingreso o egreso. Estado y diferencia se derivan de los montos; el monto acordado de una renta se toma del espacio si no se envía.
// @Tags         cobros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCobroRequest true "Cobro"
// @Success      201  {object} dto.CobroResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cobros [post]
func (h *CobrosHandler) Crear(c *gin.Context) {
	var req dto.CrearCobroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar cobros
// @Description  Lista paginada con estadísticas por estado, método y concepto del conjunto filtrado.
// @Tags         cobros
// @Produce      json
// @Security     BearerAuth
// @Param        concepto   query string false "renta | corta_estancia | otro"
// @Param        estado     query string false "pendiente | parcial | pagado (estado propio de cada fila)"
// @Param        estado_cuenta query string false "parcial | pagado: solo filas de pagos parciales según el saldo de su cuenta"
// @Param        tipo       query string false "ingreso | egreso"
// @Param        periodo    query string false "YYYY-MM"
// @Param        desde      query string false "fecha_pago desde (YYYY-MM-DD)"
// @Param        hasta      query string false "fecha_pago hasta (YYYY-MM-DD)"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.CobroListResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/cobros [get]
func (h *CobrosHandler) Listar(c *gin.Context) {
	var filter dto.CobroFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener cobro
// @Tags         cobros
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del cobro"
// @Success      200 {object} dto.CobroResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cobros/{id} [get]
func (h *CobrosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar cobro
// @Description  Actualización parcial. Los montos de una cuenta parcial no se pueden editar.
// @Tags         cobros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID del cobro"
// @Param        body body dto.ActualizarCobroRequest true "Campos a modificar"
// @Success      200  {object} dto.CobroResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cobros/{id} [put]
func (h *CobrosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarCobroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar cobro
// @Description  Requiere repetir el código del cobro como confirmación.
// @Tags         cobros
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID del cobro"
// @Param        body body dto.EliminarCobroRequest true "Confirmación"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cobros/{id} [delete]
func (h *CobrosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.EliminarCobroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id, req.CodigoConfirmacion); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recibo godoc
// @Summary      Recibo de pago en PDF
// @Tags         cobros
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path string true "UUID del cobro"
// @Success      200 {file} binary
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cobros/{id}/recibo [get]
func (h *CobrosHandler) Recibo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cobro, err := h.svc.ParaRecibo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.GenerarReciboPDF(cobro, h.empresa, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=recibo_%s.pdf", cobro.Codigo))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
