package repository

import (
	"context"

	"admincs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EspacioRepository is the read-only view of the space registry. The ledger
// never mutates spaces or tenants.
type EspacioRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Espacio, error)
	List(ctx context.Context) ([]model.Espacio, error)
}

type espacioRepo struct{ db *gorm.DB }

func NewEspacioRepository(db *gorm.DB) EspacioRepository { return &espacioRepo{db: db} }

func (r *espacioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Espacio, error) {
	var e model.Espacio
	err := r.db.WithContext(ctx).Preload("Inquilino").First(&e, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "espacio")
	}
	return &e, nil
}

func (r *espacioRepo) List(ctx context.Context) ([]model.Espacio, error) {
	var espacios []model.Espacio
	err := r.db.WithContext(ctx).Preload("Inquilino").Where("activo = true").Order("codigo ASC").Find(&espacios).Error
	return espacios, translate(err, "espacio")
}
