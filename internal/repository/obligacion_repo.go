package repository

import (
	"context"

	"admincs/internal/dto"
	"admincs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ObligacionRepository interface {
	CreatePlantilla(ctx context.Context, p *model.PlantillaObligacion) error
	FindPlantillaByID(ctx context.Context, id uuid.UUID) (*model.PlantillaObligacion, error)
	ListPlantillas(ctx context.Context, soloActivas bool) ([]model.PlantillaObligacion, error)
	SetPlantillaActiva(ctx context.Context, id uuid.UUID, activo bool) error

	// InsertObligacion inserts o unless (plantilla_id, periodo) already exists.
	// Returns true when a new row was written.
	InsertObligacion(ctx context.Context, tx *gorm.DB, o *model.ObligacionGenerada) (bool, error)
	FindObligacion(ctx context.Context, tx *gorm.DB, plantillaID uuid.UUID, periodo string) (*model.ObligacionGenerada, error)
	FindObligacionForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ObligacionGenerada, error)
	UpdateObligacion(ctx context.Context, tx *gorm.DB, o *model.ObligacionGenerada) error
	ListObligaciones(ctx context.Context, filter dto.ObligacionFilter) ([]model.ObligacionGenerada, error)

	DB() *gorm.DB
}

type obligacionRepo struct{ db *gorm.DB }

func NewObligacionRepository(db *gorm.DB) ObligacionRepository { return &obligacionRepo{db: db} }

func (r *obligacionRepo) DB() *gorm.DB { return r.db }

func (r *obligacionRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *obligacionRepo) CreatePlantilla(ctx context.Context, p *model.PlantillaObligacion) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "plantilla")
}

func (r *obligacionRepo) FindPlantillaByID(ctx context.Context, id uuid.UUID) (*model.PlantillaObligacion, error) {
	var p model.PlantillaObligacion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "plantilla")
	}
	return &p, nil
}

func (r *obligacionRepo) ListPlantillas(ctx context.Context, soloActivas bool) ([]model.PlantillaObligacion, error) {
	var plantillas []model.PlantillaObligacion
	q := r.db.WithContext(ctx)
	if soloActivas {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&plantillas).Error
	return plantillas, translate(err, "plantilla")
}

func (r *obligacionRepo) SetPlantillaActiva(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.PlantillaObligacion{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return translate(res.Error, "plantilla")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "plantilla")
	}
	return nil
}

func (r *obligacionRepo) InsertObligacion(ctx context.Context, tx *gorm.DB, o *model.ObligacionGenerada) (bool, error) {
	res := r.conn(ctx, tx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plantilla_id"}, {Name: "periodo"}},
			DoNothing: true,
		}).
		Create(o)
	if res.Error != nil {
		return false, translate(res.Error, "obligacion")
	}
	return res.RowsAffected > 0, nil
}

func (r *obligacionRepo) FindObligacion(ctx context.Context, tx *gorm.DB, plantillaID uuid.UUID, periodo string) (*model.ObligacionGenerada, error) {
	var o model.ObligacionGenerada
	err := r.conn(ctx, tx).Where("plantilla_id = ? AND periodo = ?", plantillaID, periodo).First(&o).Error
	if err != nil {
		return nil, translate(err, "obligacion")
	}
	return &o, nil
}

func (r *obligacionRepo) FindObligacionForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ObligacionGenerada, error) {
	var o model.ObligacionGenerada
	err := r.conn(ctx, tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "obligacion")
	}
	return &o, nil
}

func (r *obligacionRepo) UpdateObligacion(ctx context.Context, tx *gorm.DB, o *model.ObligacionGenerada) error {
	return translate(r.conn(ctx, tx).Omit(clause.Associations).Save(o).Error, "obligacion")
}

func (r *obligacionRepo) ListObligaciones(ctx context.Context, filter dto.ObligacionFilter) ([]model.ObligacionGenerada, error) {
	var obligaciones []model.ObligacionGenerada
	q := r.db.WithContext(ctx).Preload("Plantilla")
	if filter.PlantillaID != "" {
		q = q.Where("plantilla_id = ?", filter.PlantillaID)
	}
	if filter.Periodo != "" {
		q = q.Where("periodo = ?", filter.Periodo)
	}
	if filter.Pendientes {
		q = q.Where("cobro_id IS NULL")
	}
	err := q.Order("fecha_vencimiento ASC").Find(&obligaciones).Error
	return obligaciones, translate(err, "obligacion")
}
