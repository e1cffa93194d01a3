package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPlantillaRequest struct {
	Nombre      string           `json:"nombre"      validate:"required,min=2,max=150"`
	Contraparte string           `json:"contraparte" validate:"required,min=2,max=150"`
	Categoria   string           `json:"categoria"   validate:"required,oneof=servicios nomina mantenimiento otro"`
	Monto       *decimal.Decimal `json:"monto"`
	EsVariable  bool             `json:"es_variable"`
	MetodoPago  string           `json:"metodo_pago" validate:"required,oneof=efectivo transferencia tarjeta cheque deposito"`
	Frecuencia  string           `json:"frecuencia"  validate:"required,oneof=mensual bimestral trimestral semestral anual"`
	// DiaVencimiento 1–31; nil = day of fecha_inicio
	DiaVencimiento *int    `json:"dia_vencimiento"`
	FechaInicio    string  `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	FechaFin       *string `json:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Notas          *string `json:"notas"        validate:"omitempty,max=1000"`
}

type GenerarObligacionRequest struct {
	Periodo string `json:"periodo" validate:"required,datetime=2006-01"`
}

// LiquidarObligacionRequest settles a generated obligation through the ledger.
// Monto is mandatory for variable templates and defaults to the fixed amount otherwise.
type LiquidarObligacionRequest struct {
	Monto      *decimal.Decimal `json:"monto"`
	FechaPago  string           `json:"fecha_pago"  validate:"required,datetime=2006-01-02"`
	MetodoPago *string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo transferencia tarjeta cheque deposito"`
	Referencia *string          `json:"referencia"  validate:"omitempty,max=100"`
	Notas      *string          `json:"notas"       validate:"omitempty,max=1000"`
}

// ObligacionFilter is bound from the query string of GET /v1/obligaciones.
type ObligacionFilter struct {
	PlantillaID string `form:"plantilla_id" validate:"omitempty,uuid"`
	Periodo     string `form:"periodo"      validate:"omitempty,datetime=2006-01"`
	// Pendientes=true returns only obligations without a settling charge
	Pendientes bool `form:"pendientes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PlantillaResponse struct {
	ID             string           `json:"id"`
	Nombre         string           `json:"nombre"`
	Contraparte    string           `json:"contraparte"`
	Categoria      string           `json:"categoria"`
	Monto          *decimal.Decimal `json:"monto"`
	EsVariable     bool             `json:"es_variable"`
	MetodoPago     string           `json:"metodo_pago"`
	Frecuencia     string           `json:"frecuencia"`
	DiaVencimiento *int             `json:"dia_vencimiento"`
	FechaInicio    string           `json:"fecha_inicio"`
	FechaFin       *string          `json:"fecha_fin"`
	Activo         bool             `json:"activo"`
	Notas          *string          `json:"notas"`

	ProximoVencimiento *string `json:"proximo_vencimiento"` // null once inactive or ended
}

type ObligacionResponse struct {
	ID               string           `json:"id"`
	PlantillaID      string           `json:"plantilla_id"`
	Plantilla        string           `json:"plantilla,omitempty"`
	Periodo          string           `json:"periodo"`
	FechaVencimiento string           `json:"fecha_vencimiento"`
	Monto            *decimal.Decimal `json:"monto"`
	CobroID          *string          `json:"cobro_id"`
	LiquidadaAt      *string          `json:"liquidada_at"`
	DiasVencido      *int             `json:"dias_vencido"`
}

type GenerarVencidasResponse struct {
	Generadas    int                  `json:"generadas"`
	Obligaciones []ObligacionResponse `json:"obligaciones"`
}
