package handler

import (
	"fmt"
	"net/http"
	"time"

	"admincs/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const hojaCobros = "Cobros"

var columnasExport = []string{
	"Código", "Tipo", "Categoría", "Espacio", "Concepto", "Periodo",
	"Monto acordado", "Monto pagado", "Diferencia", "Estado",
	"Vencimiento", "Fecha de pago", "Método", "Referencia", "Vínculo", "Notas",
}

// Exportar godoc
// @Summary      Exportar cobros a Excel
// @Description  Mismos filtros que el listado, sin paginar.
// @Tags         cobros
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        concepto query string false "renta | corta_estancia | otro"
// @Param        periodo  query string false "YYYY-MM"
// @Success      200 {file} binary
// @Failure      400 {object} apierror.APIError
// @Router       /v1/cobros/exportar [get]
func (h *CobrosHandler) Exportar(c *gin.Context) {
	var filter dto.CobroFilter
	if !bindQuery(c, &filter) {
		return
	}
	cobros, err := h.svc.ListarTodos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := libroCobros(cobros)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("cobros_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// libroCobros builds the workbook: one header row, one row per charge,
// amounts as numbers so totals can be computed in the sheet.
func libroCobros(cobros []dto.CobroResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	err := f.SetSheetName("Sheet1", hojaCobros)
	if err == nil {
		err = escribirHoja(f, hojaCobros, cobros)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func escribirHoja(f *excelize.File, hoja string, cobros []dto.CobroResponse) error {
	for i, col := range columnasExport {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(hoja, cell, col); err != nil {
			return err
		}
	}
	negrita, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	ultima, _ := excelize.CoordinatesToCellName(len(columnasExport), 1)
	if err := f.SetCellStyle(hoja, "A1", ultima, negrita); err != nil {
		return err
	}

	for i, cb := range cobros {
		fila := []interface{}{
			cb.Codigo, cb.Tipo, deref(cb.Categoria), deref(cb.Espacio), cb.Concepto, deref(cb.Periodo),
			cb.MontoAcordado.InexactFloat64(), cb.MontoPagado.InexactFloat64(), cb.Diferencia.InexactFloat64(), cb.Estado,
			deref(cb.FechaVencimiento), deref(cb.FechaPago), deref(cb.MetodoPago), deref(cb.Referencia), cb.Vinculo, deref(cb.Notas),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(hoja, cell, &fila); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
