package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Espacio is a rentable unit (office, room, commercial local). It is owned by
// the space registry and only read by the ledger to pre-fill charge defaults.
type Espacio struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo          string          `gorm:"uniqueIndex;not null"`
	Nombre          string          `gorm:"not null"`
	MontoAcordado   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiaPago         int             `gorm:"not null;default:5"`
	ConceptoDefault string          `gorm:"type:varchar(20);not null;default:'renta'"`
	InquilinoID     *uuid.UUID      `gorm:"type:uuid;index"`
	Activo          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Inquilino *Inquilino `gorm:"foreignKey:InquilinoID"`
}

func (Espacio) TableName() string { return "espacios" }

// Inquilino is the tenant occupying an Espacio.
type Inquilino struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Email     *string
	Telefono  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Inquilino) TableName() string { return "inquilinos" }
