package dto

import "github.com/shopspring/decimal"

// RegistrarAbonoRequest registers one installment against the partial account
// identified by (espacio, periodo, concepto).
type RegistrarAbonoRequest struct {
	EspacioID string `json:"espacio_id" validate:"required,uuid"`
	Concepto  string `json:"concepto"   validate:"required,oneof=renta otro"`
	Periodo   string `json:"periodo"    validate:"required,datetime=2006-01"`
	// MontoAcordado only applies when the account is opened; nil = space default
	MontoAcordado *decimal.Decimal `json:"monto_acordado"`
	Abono         decimal.Decimal  `json:"abono"       validate:"required,gt=0"`
	FechaPago     string           `json:"fecha_pago"  validate:"required,datetime=2006-01-02"`
	MetodoPago    string           `json:"metodo_pago" validate:"required,oneof=efectivo transferencia tarjeta cheque deposito"`
	Referencia    *string          `json:"referencia"  validate:"omitempty,max=100"`
	Notas         *string          `json:"notas"       validate:"omitempty,max=1000"`
}

// CuentaParcialResponse is the derived view of a parent charge and its installments.
type CuentaParcialResponse struct {
	CobroPadreID     string          `json:"cobro_padre_id"`
	Codigo           string          `json:"codigo"`
	EspacioID        *string         `json:"espacio_id"`
	Espacio          *string         `json:"espacio,omitempty"`
	Concepto         string          `json:"concepto"`
	Periodo          *string         `json:"periodo"`
	MontoAcordado    decimal.Decimal `json:"monto_acordado"`
	TotalPagado      decimal.Decimal `json:"total_pagado"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	PorcentajeAvance decimal.Decimal `json:"porcentaje_avance"`
	Estado           string          `json:"estado"`
	// Abonos: parent first installment plus children, by fecha_pago ascending
	Abonos []CobroResponse `json:"abonos"`
}

type RegistrarAbonoResponse struct {
	Abono  CobroResponse         `json:"abono"`
	Cuenta CuentaParcialResponse `json:"cuenta"`
}
