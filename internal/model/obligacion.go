package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frecuencia: "mensual" | "bimestral" | "trimestral" | "semestral" | "anual"
const (
	FrecuenciaMensual    = "mensual"
	FrecuenciaBimestral  = "bimestral"
	FrecuenciaTrimestral = "trimestral"
	FrecuenciaSemestral  = "semestral"
	FrecuenciaAnual      = "anual"
)

// PlantillaObligacion defines a periodically recurring payable (utilities,
// payroll, maintenance contracts). Monto is nil when EsVariable is true.
type PlantillaObligacion struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre         string           `gorm:"not null"`
	Contraparte    string           `gorm:"not null"`
	Categoria      string           `gorm:"type:varchar(20);not null"`
	Monto          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EsVariable     bool             `gorm:"not null;default:false"`
	MetodoPago     string           `gorm:"type:varchar(20);not null"`
	Frecuencia     string           `gorm:"type:varchar(20);not null"`
	DiaVencimiento *int
	FechaInicio    time.Time  `gorm:"type:date;not null"`
	FechaFin       *time.Time `gorm:"type:date"`
	Activo         bool       `gorm:"not null;default:true"`
	Notas          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PlantillaObligacion) TableName() string { return "plantillas_obligacion" }

// ObligacionGenerada is one due instance of a template for a period. It is
// never deleted; settling it links the resulting Cobro.
type ObligacionGenerada struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlantillaID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_obligacion_plantilla_periodo"`
	Periodo          string           `gorm:"type:varchar(7);not null;uniqueIndex:uq_obligacion_plantilla_periodo"`
	FechaVencimiento time.Time        `gorm:"type:date;not null"`
	Monto            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CobroID          *uuid.UUID       `gorm:"type:uuid"`
	LiquidadaAt      *time.Time
	CreatedAt        time.Time

	Plantilla *PlantillaObligacion `gorm:"foreignKey:PlantillaID"`
}

func (ObligacionGenerada) TableName() string { return "obligaciones_generadas" }

func (o *ObligacionGenerada) Liquidada() bool { return o.CobroID != nil }
