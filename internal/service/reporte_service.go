package service

import (
	"context"
	"time"

	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/repository"

	"github.com/shopspring/decimal"
)

type ReporteService interface {
	ResumenMensual(ctx context.Context, mes, anio int) (*dto.ResumenMensualResponse, error)
}

type reporteService struct {
	repo repository.CobroRepository
}

func NewReporteService(repo repository.CobroRepository) ReporteService {
	return &reporteService{repo: repo}
}

// ResumenMensual sums monto_pagado of the month's charges. Rent and other
// income count toward their periodo; short stays toward the month they were
// paid; expenses toward their periodo, or the payment month when they have none.
func (s *reporteService) ResumenMensual(ctx context.Context, mes, anio int) (*dto.ResumenMensualResponse, error) {
	cobros, err := s.repo.ListMes(ctx, anio, time.Month(mes))
	if err != nil {
		return nil, err
	}

	resp := &dto.ResumenMensualResponse{Mes: mes, Anio: anio}
	for i := range cobros {
		c := &cobros[i]
		if !correspondeAlMes(c, anio, time.Month(mes)) {
			continue
		}
		monto := c.MontoPagado
		if c.Tipo == model.TipoEgreso {
			switch categoriaDe(c) {
			case model.CategoriaServicios:
				resp.Egresos.Servicios = resp.Egresos.Servicios.Add(monto)
			case model.CategoriaNomina:
				resp.Egresos.Nomina = resp.Egresos.Nomina.Add(monto)
			case model.CategoriaMantenimiento:
				resp.Egresos.Mantenimiento = resp.Egresos.Mantenimiento.Add(monto)
			default:
				resp.Egresos.Otro = resp.Egresos.Otro.Add(monto)
			}
			resp.Egresos.Total = resp.Egresos.Total.Add(monto)
			continue
		}
		switch c.Concepto {
		case model.ConceptoRenta:
			resp.Ingresos.Renta = resp.Ingresos.Renta.Add(monto)
		case model.ConceptoCortaEstancia:
			resp.Ingresos.CortaEstancia = resp.Ingresos.CortaEstancia.Add(monto)
		default:
			resp.Ingresos.Otro = resp.Ingresos.Otro.Add(monto)
		}
		resp.Ingresos.Total = resp.Ingresos.Total.Add(monto)
	}
	resp.Balance = resp.Ingresos.Total.Sub(resp.Egresos.Total)
	return resp, nil
}

func correspondeAlMes(c *model.Cobro, anio int, mes time.Month) bool {
	enMes := func(t *time.Time) bool {
		return t != nil && t.Year() == anio && t.Month() == mes
	}
	periodo := FormatPeriodo(time.Date(anio, mes, 1, 0, 0, 0, 0, time.UTC))

	if c.Concepto == model.ConceptoCortaEstancia {
		return enMes(c.FechaPago)
	}
	if c.Periodo != nil {
		return *c.Periodo == periodo
	}
	return enMes(c.FechaPago)
}

func categoriaDe(c *model.Cobro) string {
	if c.Categoria == nil {
		return model.CategoriaOtro
	}
	return *c.Categoria
}

// Estadisticas groups charges by estado, metodo and concepto (count and sum of
// monto_pagado) and nets income against expenses.
func Estadisticas(cobros []model.Cobro) dto.Estadisticas {
	est := dto.Estadisticas{
		PorEstado:   map[string]dto.Totales{},
		PorMetodo:   map[string]dto.Totales{},
		PorConcepto: map[string]dto.Totales{},
		Ingresos:    decimal.Zero,
		Egresos:     decimal.Zero,
	}
	sumar := func(m map[string]dto.Totales, clave string, monto decimal.Decimal) {
		t := m[clave]
		t.Cantidad++
		t.Monto = t.Monto.Add(monto)
		m[clave] = t
	}

	for i := range cobros {
		c := &cobros[i]
		metodo := "sin_metodo"
		if c.MetodoPago != nil {
			metodo = *c.MetodoPago
		}
		sumar(est.PorEstado, c.Estado, c.MontoPagado)
		sumar(est.PorMetodo, metodo, c.MontoPagado)
		sumar(est.PorConcepto, c.Concepto, c.MontoPagado)

		if c.Tipo == model.TipoEgreso {
			est.Egresos = est.Egresos.Add(c.MontoPagado)
		} else {
			est.Ingresos = est.Ingresos.Add(c.MontoPagado)
		}
	}
	est.Balance = est.Ingresos.Sub(est.Egresos)
	return est
}
