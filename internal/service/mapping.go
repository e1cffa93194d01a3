package service

import (
	"sort"
	"time"

	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/mora"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

func mapCobro(c *model.Cobro) dto.CobroResponse {
	resp := dto.CobroResponse{
		ID:               c.ID.String(),
		Codigo:           c.Codigo,
		Tipo:             c.Tipo,
		Categoria:        c.Categoria,
		Concepto:         c.Concepto,
		Periodo:          c.Periodo,
		MontoAcordado:    c.MontoAcordado,
		MontoPagado:      c.MontoPagado,
		Diferencia:       c.Diferencia,
		FechaVencimiento: formatFecha(c.FechaVencimiento),
		FechaPago:        formatFecha(c.FechaPago),
		MetodoPago:       c.MetodoPago,
		Referencia:       c.Referencia,
		Notas:            c.Notas,
		Estado:           c.Estado,
		EsParcial:        c.EsParcial(),
		Vinculo:          string(c.Vinculo),
		DiasRetraso:      c.DiasRetraso,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
	if c.EspacioID != nil {
		resp.EspacioID = strPtr(c.EspacioID.String())
	}
	if c.Espacio != nil {
		resp.Espacio = strPtr(c.Espacio.Nombre)
	}
	if c.CobroPadreID != nil {
		resp.CobroPadreID = strPtr(c.CobroPadreID.String())
	}
	if c.ObligacionID != nil {
		resp.ObligacionID = strPtr(c.ObligacionID.String())
	}
	return resp
}

// AnotarMora fills dias_vencido on an unpaid charge that has a due date.
func AnotarMora(resp *dto.CobroResponse, c *model.Cobro, hoy time.Time) {
	resp.DiasVencido = nil
	if c.Estado == model.EstadoPagado || c.FechaVencimiento == nil {
		return
	}
	d := mora.DiasVencido(*c.FechaVencimiento, hoy)
	resp.DiasVencido = &d
}

func mapCobroConMora(c *model.Cobro, hoy time.Time) dto.CobroResponse {
	resp := mapCobro(c)
	AnotarMora(&resp, c, hoy)
	return resp
}

// CuentaParcial is the derived state of a partial-payment account.
type CuentaParcial struct {
	Padre            *model.Cobro
	Hijos            []model.Cobro
	TotalPagado      decimal.Decimal
	SaldoPendiente   decimal.Decimal
	PorcentajeAvance decimal.Decimal
	Estado           string
}

// NuevaCuentaParcial sums the parent's first installment and its children.
func NuevaCuentaParcial(padre *model.Cobro, hijos []model.Cobro) CuentaParcial {
	total := padre.MontoPagado
	for _, h := range hijos {
		total = total.Add(h.MontoPagado)
	}
	porcentaje := decimal.Zero
	if padre.MontoAcordado.IsPositive() {
		porcentaje = total.Div(padre.MontoAcordado).Mul(cien).Round(2)
	}
	ordenados := append([]model.Cobro(nil), hijos...)
	sort.SliceStable(ordenados, func(i, j int) bool { return antes(&ordenados[i], &ordenados[j]) })
	return CuentaParcial{
		Padre:            padre,
		Hijos:            ordenados,
		TotalPagado:      total,
		SaldoPendiente:   padre.MontoAcordado.Sub(total),
		PorcentajeAvance: porcentaje,
		Estado:           model.EstadoPara(padre.MontoAcordado, total),
	}
}

func antes(a, b *model.Cobro) bool {
	switch {
	case a.FechaPago == nil || b.FechaPago == nil:
		return a.CreatedAt.Before(b.CreatedAt)
	case a.FechaPago.Equal(*b.FechaPago):
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.FechaPago.Before(*b.FechaPago)
	}
}

func mapCuenta(cuenta CuentaParcial) dto.CuentaParcialResponse {
	p := cuenta.Padre
	resp := dto.CuentaParcialResponse{
		CobroPadreID:     p.ID.String(),
		Codigo:           p.Codigo,
		Concepto:         p.Concepto,
		Periodo:          p.Periodo,
		MontoAcordado:    p.MontoAcordado,
		TotalPagado:      cuenta.TotalPagado,
		SaldoPendiente:   cuenta.SaldoPendiente,
		PorcentajeAvance: cuenta.PorcentajeAvance,
		Estado:           cuenta.Estado,
		Abonos:           make([]dto.CobroResponse, 0, len(cuenta.Hijos)+1),
	}
	if p.EspacioID != nil {
		resp.EspacioID = strPtr(p.EspacioID.String())
	}
	if p.Espacio != nil {
		resp.Espacio = strPtr(p.Espacio.Nombre)
	}
	// the parent carries the first installment recorded, not necessarily the earliest paid
	todos := append([]model.Cobro{*p}, cuenta.Hijos...)
	sort.SliceStable(todos, func(i, j int) bool { return antes(&todos[i], &todos[j]) })
	for i := range todos {
		resp.Abonos = append(resp.Abonos, mapCobro(&todos[i]))
	}
	return resp
}

// abonoPadre returns the entry of resp.Abonos that belongs to the parent.
func abonoPadre(resp *dto.CuentaParcialResponse) *dto.CobroResponse {
	for i := range resp.Abonos {
		if resp.Abonos[i].ID == resp.CobroPadreID {
			return &resp.Abonos[i]
		}
	}
	return nil
}

func mapPlantilla(p *model.PlantillaObligacion, hoy time.Time) dto.PlantillaResponse {
	resp := dto.PlantillaResponse{
		ID:             p.ID.String(),
		Nombre:         p.Nombre,
		Contraparte:    p.Contraparte,
		Categoria:      p.Categoria,
		Monto:          p.Monto,
		EsVariable:     p.EsVariable,
		MetodoPago:     p.MetodoPago,
		Frecuencia:     p.Frecuencia,
		DiaVencimiento: p.DiaVencimiento,
		FechaInicio:    p.FechaInicio.Format(layoutFecha),
		FechaFin:       formatFecha(p.FechaFin),
		Activo:         p.Activo,
		Notas:          p.Notas,
	}
	if vence, ok, err := ProximoVencimiento(p, hoy); err == nil && ok {
		resp.ProximoVencimiento = formatFecha(&vence)
	}
	return resp
}

func mapObligacion(o *model.ObligacionGenerada, hoy time.Time) dto.ObligacionResponse {
	resp := dto.ObligacionResponse{
		ID:               o.ID.String(),
		PlantillaID:      o.PlantillaID.String(),
		Periodo:          o.Periodo,
		FechaVencimiento: o.FechaVencimiento.Format(layoutFecha),
		Monto:            o.Monto,
	}
	if o.Plantilla != nil {
		resp.Plantilla = o.Plantilla.Nombre
	}
	if o.CobroID != nil {
		resp.CobroID = strPtr(o.CobroID.String())
	}
	if o.LiquidadaAt != nil {
		resp.LiquidadaAt = strPtr(o.LiquidadaAt.Format(time.RFC3339))
	}
	if !o.Liquidada() {
		d := mora.DiasVencido(o.FechaVencimiento, hoy)
		resp.DiasVencido = &d
	}
	return resp
}
