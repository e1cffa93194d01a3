package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// CobroFilter is bound from the query string of GET /v1/cobros and /v1/cobros/exportar.
type CobroFilter struct {
	Concepto  string `form:"concepto"   validate:"omitempty,oneof=renta corta_estancia otro"`
	Metodo    string `form:"metodo"     validate:"omitempty,oneof=efectivo transferencia tarjeta cheque deposito"`
	Estado    string `form:"estado"     validate:"omitempty,oneof=pendiente parcial pagado"`
	Tipo      string `form:"tipo"       validate:"omitempty,oneof=ingreso egreso"`
	EspacioID string `form:"espacio_id" validate:"omitempty,uuid"`
	Periodo   string `form:"periodo"    validate:"omitempty,datetime=2006-01"`
	Desde     string `form:"desde"      validate:"omitempty,datetime=2006-01-02"` // fecha_pago >= desde
	Hasta     string `form:"hasta"      validate:"omitempty,datetime=2006-01-02"` // fecha_pago <= hasta
	Texto     string `form:"q"          validate:"omitempty,max=100"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`

	// EstadoCuenta keeps only partial-chain rows whose whole account is in that state
	EstadoCuenta string `form:"estado_cuenta" validate:"omitempty,oneof=parcial pagado"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearCobroRequest records a payment or an expected payment. Estado and
// diferencia are always derived and therefore not accepted.
type CrearCobroRequest struct {
	Tipo      string  `json:"tipo"      validate:"omitempty,oneof=ingreso egreso"`
	Categoria *string `json:"categoria" validate:"omitempty,oneof=servicios nomina mantenimiento otro"`
	EspacioID *string `json:"espacio_id" validate:"omitempty,uuid"`
	Concepto  string  `json:"concepto"  validate:"required,oneof=renta corta_estancia otro"`
	Periodo   *string `json:"periodo"   validate:"omitempty,datetime=2006-01"`
	// MontoAcordado nil = default from the space registry
	MontoAcordado    *decimal.Decimal `json:"monto_acordado"`
	MontoPagado      decimal.Decimal  `json:"monto_pagado"      validate:"min=0"`
	FechaPago        *string          `json:"fecha_pago"        validate:"omitempty,datetime=2006-01-02"`
	FechaVencimiento *string          `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	MetodoPago       *string          `json:"metodo_pago"       validate:"omitempty,oneof=efectivo transferencia tarjeta cheque deposito"`
	Referencia       *string          `json:"referencia"        validate:"omitempty,max=100"`
	Notas            *string          `json:"notas"             validate:"omitempty,max=1000"`
}

// ActualizarCobroRequest is a partial update; nil fields are left untouched.
type ActualizarCobroRequest struct {
	Categoria        *string          `json:"categoria"  validate:"omitempty,oneof=servicios nomina mantenimiento otro"`
	EspacioID        *string          `json:"espacio_id" validate:"omitempty,uuid"`
	Concepto         *string          `json:"concepto"   validate:"omitempty,oneof=renta corta_estancia otro"`
	Periodo          *string          `json:"periodo"    validate:"omitempty,datetime=2006-01"`
	MontoAcordado    *decimal.Decimal `json:"monto_acordado"`
	MontoPagado      *decimal.Decimal `json:"monto_pagado"`
	FechaPago        *string          `json:"fecha_pago"        validate:"omitempty,datetime=2006-01-02"`
	FechaVencimiento *string          `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	MetodoPago       *string          `json:"metodo_pago"       validate:"omitempty,oneof=efectivo transferencia tarjeta cheque deposito"`
	Referencia       *string          `json:"referencia"        validate:"omitempty,max=100"`
	Notas            *string          `json:"notas"             validate:"omitempty,max=1000"`
}

type EliminarCobroRequest struct {
	CodigoConfirmacion string `json:"codigo_confirmacion" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CobroResponse struct {
	ID               string          `json:"id"`
	Codigo           string          `json:"codigo"`
	Tipo             string          `json:"tipo"`
	Categoria        *string         `json:"categoria,omitempty"`
	EspacioID        *string         `json:"espacio_id"`
	Espacio          *string         `json:"espacio,omitempty"`
	Concepto         string          `json:"concepto"`
	Periodo          *string         `json:"periodo"`
	MontoAcordado    decimal.Decimal `json:"monto_acordado"`
	MontoPagado      decimal.Decimal `json:"monto_pagado"`
	Diferencia       decimal.Decimal `json:"diferencia"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
	FechaPago        *string         `json:"fecha_pago"`
	MetodoPago       *string         `json:"metodo_pago"`
	Referencia       *string         `json:"referencia"`
	Notas            *string         `json:"notas"`
	Estado           string          `json:"estado"`
	EsParcial        bool            `json:"es_parcial"`
	Vinculo          string          `json:"vinculo"`
	CobroPadreID     *string         `json:"cobro_padre_id"`
	// DiasRetraso: signed, only when estado=pagado. DiasVencido: only while unpaid.
	DiasRetraso  *int    `json:"dias_retraso"`
	DiasVencido  *int    `json:"dias_vencido"`
	ObligacionID *string `json:"obligacion_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type Totales struct {
	Cantidad int64           `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

// Estadisticas summarizes a set of charges. Montos are sums of monto_pagado.
// PorEstado counts rows by their own estado, so a settled partial account
// shows its parent as parcial and its last installment as pagado.
type Estadisticas struct {
	PorEstado   map[string]Totales `json:"por_estado"`
	PorMetodo   map[string]Totales `json:"por_metodo"`
	PorConcepto map[string]Totales `json:"por_concepto"`
	Ingresos    decimal.Decimal    `json:"ingresos"`
	Egresos     decimal.Decimal    `json:"egresos"`
	Balance     decimal.Decimal    `json:"balance"`
}

type CobroListResponse struct {
	Data         []CobroResponse `json:"data"`
	Estadisticas Estadisticas    `json:"estadisticas"`
	Total        int64           `json:"total"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
}
