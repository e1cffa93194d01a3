package infra

// pdf.go: payment receipts and arrears notices using go-pdf/fpdf.
// Both documents are A6 portrait with:
//   - Business name header
//   - Charge code and space
//   - Amount lines (agreed, paid, difference)
//   - Dates and payment method
//
// Receipts are streamed to the HTTP response; notices are written to
// storagePath/aviso_{codigo}.pdf and attached to reminder emails.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"admincs/internal/model"

	"github.com/go-pdf/fpdf"
)

type documento struct {
	pdf      *fpdf.Fpdf
	contentW float64
	pageW    float64
}

func nuevoDocumento(empresa, titulo string) *documento {
	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	d := &documento{pdf: pdf, pageW: pageW, contentW: pageW - 16}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(d.contentW, 7, tr(empresa), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(d.contentW, 5, tr(titulo), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	d.separador()
	return d
}

func (d *documento) separador() {
	d.pdf.Line(8, d.pdf.GetY(), d.pageW-8, d.pdf.GetY())
	d.pdf.Ln(2)
}

func (d *documento) fila(etiqueta, valor string, negrita bool) {
	tr := d.pdf.UnicodeTranslatorFromDescriptor("")
	estilo := ""
	if negrita {
		estilo = "B"
	}
	d.pdf.SetFont("Helvetica", estilo, 8)
	d.pdf.CellFormat(d.contentW*0.45, 5, tr(etiqueta), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(d.contentW*0.55, 5, tr(valor), "", 1, "R", false, 0, "")
}

func (d *documento) encabezadoCobro(c *model.Cobro) {
	d.fila("Folio", c.Codigo, true)
	if c.Espacio != nil {
		d.fila("Espacio", c.Espacio.Codigo+" "+c.Espacio.Nombre, false)
	}
	concepto := c.Concepto
	if c.Periodo != nil {
		concepto += " " + *c.Periodo
	}
	d.fila("Concepto", concepto, false)
	if c.FechaVencimiento != nil {
		d.fila("Vencimiento", c.FechaVencimiento.Format("02/01/2006"), false)
	}
	d.pdf.Ln(1)
	d.separador()
}

// GenerarReciboPDF writes the payment receipt of c to w.
func GenerarReciboPDF(c *model.Cobro, empresa string, w io.Writer) error {
	d := nuevoDocumento(empresa, "Recibo de pago")
	d.encabezadoCobro(c)

	d.fila("Monto acordado", "$"+c.MontoAcordado.StringFixed(2), false)
	d.fila("Monto pagado", "$"+c.MontoPagado.StringFixed(2), true)
	if !c.Diferencia.IsZero() {
		d.fila("Diferencia", "$"+c.Diferencia.StringFixed(2), false)
	}
	d.fila("Estado", c.Estado, false)
	if c.FechaPago != nil {
		d.fila("Fecha de pago", c.FechaPago.Format("02/01/2006"), false)
	}
	if c.MetodoPago != nil {
		d.fila("Método", *c.MetodoPago, false)
	}
	if c.Referencia != nil {
		d.fila("Referencia", *c.Referencia, false)
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "I", 7)
	d.pdf.CellFormat(d.contentW, 4, "Emitido "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt: %w", err)
	}
	return nil
}

// GuardarAvisoMoraPDF writes an arrears notice for c and returns its path.
func GuardarAvisoMoraPDF(c *model.Cobro, diasVencido int, saldo string, empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("aviso_%s.pdf", c.Codigo))

	d := nuevoDocumento(empresa, "Aviso de saldo vencido")
	d.encabezadoCobro(c)
	d.fila("Saldo pendiente", "$"+saldo, true)
	d.fila("Días vencido", fmt.Sprintf("%d", diasVencido), false)

	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "I", 7)
	tr := d.pdf.UnicodeTranslatorFromDescriptor("")
	d.pdf.MultiCell(d.contentW, 4, tr("Si ya realizó el pago, por favor ignore este aviso."), "", "C", false)

	if err := d.pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
