package worker

import (
	"context"
	"errors"
	"time"

	"admincs/internal/dto"
	"admincs/internal/infra"
	"admincs/internal/model"
	"admincs/internal/repository"
	"admincs/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubLocker struct {
	ocupado bool
	claves  []string
}

func (l *stubLocker) ConLock(ctx context.Context, key string, _ time.Duration, fn func(ctx context.Context) error) error {
	l.claves = append(l.claves, key)
	if l.ocupado {
		return infra.ErrLockOcupado
	}
	return fn(ctx)
}

type stubEncolador struct {
	jobs []RecordatorioPayload
}

func (e *stubEncolador) EnqueueRecordatorio(_ context.Context, p RecordatorioPayload) error {
	e.jobs = append(e.jobs, p)
	return nil
}

type stubObligaciones struct {
	service.ObligacionService
	llamadas []time.Time
}

func (s *stubObligaciones) GenerarVencidas(_ context.Context, hoy time.Time) (*dto.GenerarVencidasResponse, error) {
	s.llamadas = append(s.llamadas, hoy)
	return &dto.GenerarVencidasResponse{Generadas: 2}, nil
}

// stubCobroRepo implements only what the worker package calls.
type stubCobroRepo struct {
	repository.CobroRepository
	cobros map[uuid.UUID]model.Cobro
	hijos  map[uuid.UUID][]model.Cobro
	cortes []time.Time
}

func newStubCobroRepo(cobros ...model.Cobro) *stubCobroRepo {
	r := &stubCobroRepo{cobros: map[uuid.UUID]model.Cobro{}, hijos: map[uuid.UUID][]model.Cobro{}}
	for _, c := range cobros {
		r.cobros[c.ID] = c
	}
	return r
}

func (r *stubCobroRepo) ListVencidos(_ context.Context, corte time.Time) ([]model.Cobro, error) {
	r.cortes = append(r.cortes, corte)
	var list []model.Cobro
	for _, c := range r.cobros {
		if c.Estado != model.EstadoPagado && c.FechaVencimiento != nil && !c.FechaVencimiento.After(corte) {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *stubCobroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cobro, error) {
	c, ok := r.cobros[id]
	if !ok {
		return nil, errors.New("cobro no encontrado")
	}
	return &c, nil
}

func (r *stubCobroRepo) ListAbonos(_ context.Context, _ *gorm.DB, padreID uuid.UUID) ([]model.Cobro, error) {
	return r.hijos[padreID], nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func dia(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func cobroVencido(vencimiento string, email *string) model.Cobro {
	v := dia(vencimiento)
	periodo := v.Format("2006-01")
	c := model.Cobro{
		ID:               uuid.New(),
		Codigo:           "P-" + vencimiento,
		Tipo:             model.TipoIngreso,
		Concepto:         model.ConceptoRenta,
		Periodo:          &periodo,
		MontoAcordado:    decimal.NewFromInt(500),
		FechaVencimiento: &v,
		Vinculo:          model.VinculoIndependiente,
		Espacio: &model.Espacio{
			Codigo: "L-01", Nombre: "Local 1",
			Inquilino: &model.Inquilino{Nombre: "Ana Ruiz", Email: email},
		},
	}
	c.Derivar()
	return c
}

func email(s string) *string { return &s }
