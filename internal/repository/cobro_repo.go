package repository

import (
	"context"
	"fmt"
	"time"

	"admincs/internal/dto"
	"admincs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CobroRepository defines the data access contract for ledger charges.
// Methods taking a tx must be called inside the caller's transaction; a nil tx
// falls back to the repository's own connection.
type CobroRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Cobro) error
	Update(ctx context.Context, tx *gorm.DB, c *model.Cobro) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cobro, error)
	// FindByIDForUpdate locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cobro, error)

	// NextCodigo draws the next human-readable code from a Postgres sequence.
	NextCodigo(ctx context.Context, tx *gorm.DB) (string, error)

	// Partial-payment chains
	FindPadreParcial(ctx context.Context, tx *gorm.DB, espacioID uuid.UUID, periodo, concepto string) (*model.Cobro, error)
	ListAbonos(ctx context.Context, tx *gorm.DB, padreID uuid.UUID) ([]model.Cobro, error)
	ListPadresConSaldo(ctx context.Context) ([]model.Cobro, error)

	List(ctx context.Context, filter dto.CobroFilter) ([]model.Cobro, int64, error)
	// ListAll returns every match of filter, ignoring pagination (statistics, export).
	ListAll(ctx context.Context, filter dto.CobroFilter) ([]model.Cobro, error)
	// ListMes returns charges whose periodo is the month or whose fecha_pago falls in it.
	ListMes(ctx context.Context, anio int, mes time.Month) ([]model.Cobro, error)
	// ListVencidos returns unpaid income charges due on or before corte.
	ListVencidos(ctx context.Context, corte time.Time) ([]model.Cobro, error)

	DB() *gorm.DB
}

// saldoPadre holds for a parent whose installments have not yet covered the agreed amount.
const saldoPadre = `monto_acordado > monto_pagado + COALESCE(
	(SELECT SUM(h.monto_pagado) FROM cobros h WHERE h.cobro_padre_id = cobros.id), 0)`

// saldoCuenta is the open balance of the account a chain row belongs to.
const saldoCuenta = `(SELECT p.monto_acordado - p.monto_pagado - COALESCE(
	(SELECT SUM(h.monto_pagado) FROM cobros h WHERE h.cobro_padre_id = p.id), 0)
	FROM cobros p WHERE p.id = COALESCE(cobros.cobro_padre_id, cobros.id))`

type cobroRepo struct{ db *gorm.DB }

func NewCobroRepository(db *gorm.DB) CobroRepository { return &cobroRepo{db: db} }

func (r *cobroRepo) DB() *gorm.DB { return r.db }

func (r *cobroRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *cobroRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cobro) error {
	return translate(r.conn(ctx, tx).Omit(clause.Associations).Create(c).Error, "cobro")
}

func (r *cobroRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cobro) error {
	return translate(r.conn(ctx, tx).Omit(clause.Associations).Save(c).Error, "cobro")
}

func (r *cobroRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(ctx, tx).Delete(&model.Cobro{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "cobro")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "cobro")
	}
	return nil
}

func (r *cobroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cobro, error) {
	var c model.Cobro
	if err := r.db.WithContext(ctx).Preload("Espacio").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "cobro")
	}
	return &c, nil
}

func (r *cobroRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cobro, error) {
	var c model.Cobro
	err := r.conn(ctx, tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "cobro")
	}
	return &c, nil
}

func (r *cobroRepo) NextCodigo(ctx context.Context, tx *gorm.DB) (string, error) {
	var num int64
	if err := r.conn(ctx, tx).Raw("SELECT nextval('cobros_codigo_seq')").Scan(&num).Error; err != nil {
		return "", translate(err, "secuencia de cobros")
	}
	return fmt.Sprintf("P-%04d", num), nil
}

func (r *cobroRepo) FindPadreParcial(ctx context.Context, tx *gorm.DB, espacioID uuid.UUID, periodo, concepto string) (*model.Cobro, error) {
	var c model.Cobro
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("espacio_id = ? AND periodo = ? AND concepto = ? AND vinculo = ?", espacioID, periodo, concepto, model.VinculoPadre).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "cuenta parcial")
	}
	return &c, nil
}

func (r *cobroRepo) ListAbonos(ctx context.Context, tx *gorm.DB, padreID uuid.UUID) ([]model.Cobro, error) {
	var abonos []model.Cobro
	err := r.conn(ctx, tx).
		Where("cobro_padre_id = ?", padreID).
		Order("fecha_pago ASC, created_at ASC").
		Find(&abonos).Error
	return abonos, translate(err, "abono")
}

func (r *cobroRepo) ListPadresConSaldo(ctx context.Context) ([]model.Cobro, error) {
	var padres []model.Cobro
	err := r.db.WithContext(ctx).
		Preload("Espacio").
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha_pago ASC, created_at ASC") }).
		Where("vinculo = ?", model.VinculoPadre).
		Where(saldoPadre).
		Order("periodo ASC, created_at ASC").
		Find(&padres).Error
	return padres, translate(err, "cuenta parcial")
}

func (r *cobroRepo) filtered(ctx context.Context, filter dto.CobroFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Cobro{})

	if filter.Concepto != "" {
		q = q.Where("concepto = ?", filter.Concepto)
	}
	if filter.Metodo != "" {
		q = q.Where("metodo_pago = ?", filter.Metodo)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.EstadoCuenta != "" {
		op := "> 0"
		if filter.EstadoCuenta == model.EstadoPagado {
			op = "<= 0"
		}
		q = q.Where("vinculo IN ?", []string{string(model.VinculoPadre), string(model.VinculoHijo)}).
			Where(saldoCuenta + " " + op)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.EspacioID != "" {
		q = q.Where("espacio_id = ?", filter.EspacioID)
	}
	if filter.Periodo != "" {
		q = q.Where("periodo = ?", filter.Periodo)
	}
	if filter.Desde != "" {
		q = q.Where("fecha_pago >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha_pago <= ?", filter.Hasta)
	}
	if filter.Texto != "" {
		like := "%" + filter.Texto + "%"
		q = q.Where("(codigo ILIKE ? OR referencia ILIKE ? OR notas ILIKE ?)", like, like, like)
	}
	return q
}

func (r *cobroRepo) List(ctx context.Context, filter dto.CobroFilter) ([]model.Cobro, int64, error) {
	var cobros []model.Cobro
	var total int64

	q := r.filtered(ctx, filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "cobro")
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Espacio").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&cobros).Error
	return cobros, total, translate(err, "cobro")
}

func (r *cobroRepo) ListAll(ctx context.Context, filter dto.CobroFilter) ([]model.Cobro, error) {
	var cobros []model.Cobro
	err := r.filtered(ctx, filter).Preload("Espacio").Order("created_at DESC").Find(&cobros).Error
	return cobros, translate(err, "cobro")
}

func (r *cobroRepo) ListMes(ctx context.Context, anio int, mes time.Month) ([]model.Cobro, error) {
	inicio := time.Date(anio, mes, 1, 0, 0, 0, 0, time.UTC)
	fin := inicio.AddDate(0, 1, 0)
	periodo := inicio.Format("2006-01")

	var cobros []model.Cobro
	err := r.db.WithContext(ctx).
		Where("(periodo = ? OR (fecha_pago >= ? AND fecha_pago < ?))", periodo, inicio, fin).
		Find(&cobros).Error
	return cobros, translate(err, "cobro")
}

func (r *cobroRepo) ListVencidos(ctx context.Context, corte time.Time) ([]model.Cobro, error) {
	var cobros []model.Cobro
	err := r.db.WithContext(ctx).
		Preload("Espacio.Inquilino").
		Where("tipo = ? AND estado <> ? AND fecha_vencimiento <= ?", model.TipoIngreso, model.EstadoPagado, corte).
		Where("(vinculo = ? OR (vinculo = ? AND "+saldoPadre+"))", model.VinculoIndependiente, model.VinculoPadre).
		Order("fecha_vencimiento ASC").
		Find(&cobros).Error
	return cobros, translate(err, "cobro")
}
