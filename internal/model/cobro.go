package model

import (
	"errors"
	"time"

	"admincs/internal/mora"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo: "ingreso" | "egreso"
const (
	TipoIngreso = "ingreso"
	TipoEgreso  = "egreso"
)

// Concepto: "renta" | "corta_estancia" | "otro"
const (
	ConceptoRenta         = "renta"
	ConceptoCortaEstancia = "corta_estancia"
	ConceptoOtro          = "otro"
)

// Estado: "pendiente" | "parcial" | "pagado"
const (
	EstadoPendiente = "pendiente"
	EstadoParcial   = "parcial"
	EstadoPagado    = "pagado"
)

// Categoria de egreso: "servicios" | "nomina" | "mantenimiento" | "otro"
const (
	CategoriaServicios     = "servicios"
	CategoriaNomina        = "nomina"
	CategoriaMantenimiento = "mantenimiento"
	CategoriaOtro          = "otro"
)

// Vinculo tags how a Cobro participates in a partial-payment chain.
// Only a child carries a parent id, and its parent must be a VinculoPadre,
// so a chain is never deeper than one level.
type Vinculo string

const (
	VinculoIndependiente Vinculo = "independiente"
	VinculoPadre         Vinculo = "parcial_padre"
	VinculoHijo          Vinculo = "parcial_hijo"
)

var ErrVinculoInvalido = errors.New("vinculo de pago parcial inconsistente")

// Cobro is a recorded collection or payable event. Diferencia, Estado and
// DiasRetraso are derived from the amounts and dates on every save and every
// load; the stored copies exist only for filtering.
type Cobro struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo           string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Tipo             string          `gorm:"type:varchar(10);not null;default:'ingreso'"`
	Categoria        *string         `gorm:"type:varchar(20)"`
	EspacioID        *uuid.UUID      `gorm:"type:uuid;index"`
	Concepto         string          `gorm:"type:varchar(20);not null"`
	Periodo          *string         `gorm:"type:varchar(7);index"` // YYYY-MM; nil for corta_estancia
	MontoAcordado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoPagado      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Diferencia       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FechaVencimiento *time.Time      `gorm:"type:date"`
	FechaPago        *time.Time      `gorm:"type:date;index"`
	MetodoPago       *string         `gorm:"type:varchar(20)"`
	Referencia       *string
	Notas            *string
	Estado           string     `gorm:"type:varchar(20);not null;index"`
	Vinculo          Vinculo    `gorm:"type:varchar(20);not null;default:'independiente'"`
	CobroPadreID     *uuid.UUID `gorm:"type:uuid;index"`
	DiasRetraso      *int
	ObligacionID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Espacio *Espacio `gorm:"foreignKey:EspacioID"`
	Abonos  []Cobro  `gorm:"foreignKey:CobroPadreID"`
}

func (Cobro) TableName() string { return "cobros" }

// EstadoPara derives the payment status from the two amounts.
//
//	pagado == 0            → pendiente
//	0 < pagado < acordado  → parcial
//	pagado >= acordado     → pagado (overpayment included)
func EstadoPara(acordado, pagado decimal.Decimal) string {
	switch {
	case pagado.IsZero():
		return EstadoPendiente
	case pagado.LessThan(acordado):
		return EstadoParcial
	default:
		return EstadoPagado
	}
}

// Derivar recomputes Diferencia, Estado and DiasRetraso from the source fields.
func (c *Cobro) Derivar() {
	c.Diferencia = c.MontoPagado.Sub(c.MontoAcordado)
	c.Estado = EstadoPara(c.MontoAcordado, c.MontoPagado)
	c.DiasRetraso = nil
	if c.Estado == EstadoPagado && c.FechaPago != nil && c.FechaVencimiento != nil {
		d := mora.DiasRetraso(*c.FechaPago, *c.FechaVencimiento)
		c.DiasRetraso = &d
	}
}

// ValidarVinculo checks the tagged-variant shape of the chain fields.
func (c *Cobro) ValidarVinculo() error {
	switch c.Vinculo {
	case VinculoHijo:
		if c.CobroPadreID == nil || *c.CobroPadreID == c.ID {
			return ErrVinculoInvalido
		}
	case VinculoIndependiente, VinculoPadre, "":
		if c.CobroPadreID != nil {
			return ErrVinculoInvalido
		}
	default:
		return ErrVinculoInvalido
	}
	return nil
}

func (c *Cobro) EsParcial() bool { return c.Vinculo == VinculoPadre || c.Vinculo == VinculoHijo }

// BeforeSave keeps the stored derived columns in sync with the amounts.
func (c *Cobro) BeforeSave(_ *gorm.DB) error {
	if c.Vinculo == "" {
		c.Vinculo = VinculoIndependiente
	}
	if err := c.ValidarVinculo(); err != nil {
		return err
	}
	c.Derivar()
	return nil
}

// AfterFind never trusts the stored derived columns.
func (c *Cobro) AfterFind(_ *gorm.DB) error {
	c.Derivar()
	return nil
}
