package handler

import (
	"net/http"

	"admincs/internal/dto"
	"admincs/internal/service"

	"github.com/gin-gonic/gin"
)

type PagosParcialesHandler struct{ svc service.PagoParcialService }

func NewPagosParcialesHandler(svc service.PagoParcialService) *PagosParcialesHandler {
	return &PagosParcialesHandler{svc: svc}
}

// RegistrarAbono godoc
// @Summary      Registrar un abono
// @Description  Abre la cuenta parcial de (espacio, concepto, periodo) con el primer abono o agrega un abono a la existente. Rechaza abonos que excedan el saldo.
// @Tags         pagos-parciales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarAbonoRequest true "Abono"
// @Success      201  {object} dto.RegistrarAbonoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pagos-parciales [post]
func (h *PagosParcialesHandler) RegistrarAbono(c *gin.Context) {
	var req dto.RegistrarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAbono(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ResumenCuenta godoc
// @Summary      Resumen de una cuenta parcial
// @Description  Acepta el id del cobro padre o de cualquiera de sus abonos.
// @Tags         pagos-parciales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del cobro"
// @Success      200 {object} dto.CuentaParcialResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pagos-parciales/{id} [get]
func (h *PagosParcialesHandler) ResumenCuenta(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ResumenCuenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pendientes godoc
// @Summary      Cuentas parciales con saldo
// @Tags         pagos-parciales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.CuentaParcialResponse
// @Router       /v1/pagos-parciales/pendientes [get]
func (h *PagosParcialesHandler) Pendientes(c *gin.Context) {
	resp, err := h.svc.ListarCuentasPendientes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
