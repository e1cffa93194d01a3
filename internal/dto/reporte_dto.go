package dto

import "github.com/shopspring/decimal"

type ResumenMensualQuery struct {
	Mes  int `form:"mes"  validate:"required,min=1,max=12"`
	Anio int `form:"anio" validate:"required,min=2000,max=2100"`
}

type IngresosMes struct {
	Renta         decimal.Decimal `json:"renta"`
	CortaEstancia decimal.Decimal `json:"corta_estancia"`
	Otro          decimal.Decimal `json:"otro"`
	Total         decimal.Decimal `json:"total"`
}

type EgresosMes struct {
	Servicios     decimal.Decimal `json:"servicios"`
	Nomina        decimal.Decimal `json:"nomina"`
	Mantenimiento decimal.Decimal `json:"mantenimiento"`
	Otro          decimal.Decimal `json:"otro"`
	Total         decimal.Decimal `json:"total"`
}

// ResumenMensualResponse: balance = ingresos.total - egresos.total
type ResumenMensualResponse struct {
	Mes      int             `json:"mes"`
	Anio     int             `json:"anio"`
	Ingresos IngresosMes     `json:"ingresos"`
	Egresos  EgresosMes      `json:"egresos"`
	Balance  decimal.Decimal `json:"balance"`
}
