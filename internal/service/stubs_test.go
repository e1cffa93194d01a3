package service_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"admincs/internal/apierror"
	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/repository"
	"admincs/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── stubEspacioRepo ──────────────────────────────────────────────────────────

type stubEspacioRepo struct {
	espacios map[uuid.UUID]*model.Espacio
}

func newStubEspacioRepo(espacios ...*model.Espacio) *stubEspacioRepo {
	r := &stubEspacioRepo{espacios: map[uuid.UUID]*model.Espacio{}}
	for _, e := range espacios {
		r.espacios[e.ID] = e
	}
	return r
}

func (r *stubEspacioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Espacio, error) {
	e, ok := r.espacios[id]
	if !ok {
		return nil, apierror.NotFound("espacio no encontrado")
	}
	cp := *e
	return &cp, nil
}

func (r *stubEspacioRepo) List(_ context.Context) ([]model.Espacio, error) {
	var list []model.Espacio
	for _, e := range r.espacios {
		list = append(list, *e)
	}
	return list, nil
}

var _ repository.EspacioRepository = (*stubEspacioRepo)(nil)

// ── stubCobroRepo ────────────────────────────────────────────────────────────

// stubCobroRepo is an in-memory CobroRepository. Rows are stored by value so
// services cannot mutate them without calling Update.
type stubCobroRepo struct {
	cobros map[uuid.UUID]model.Cobro
	seq    int
	// conflictos makes the next n Create calls fail with a conflict.
	conflictos int
	creates    int
}

func newStubCobroRepo() *stubCobroRepo {
	return &stubCobroRepo{cobros: map[uuid.UUID]model.Cobro{}}
}

func (r *stubCobroRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cobro) error {
	r.creates++
	if r.conflictos > 0 {
		r.conflictos--
		return apierror.Conflict("registro duplicado", nil)
	}
	for _, existing := range r.cobros {
		if existing.Codigo == c.Codigo {
			return apierror.Conflict("codigo duplicado", nil)
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Derivar()
	cp := *c
	cp.Espacio = nil
	r.cobros[c.ID] = cp
	return nil
}

func (r *stubCobroRepo) Update(_ context.Context, _ *gorm.DB, c *model.Cobro) error {
	if _, ok := r.cobros[c.ID]; !ok {
		return apierror.NotFound("cobro no encontrado")
	}
	c.Derivar()
	cp := *c
	cp.Espacio = nil
	r.cobros[c.ID] = cp
	return nil
}

func (r *stubCobroRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.cobros[id]; !ok {
		return apierror.NotFound("cobro no encontrado")
	}
	delete(r.cobros, id)
	return nil
}

func (r *stubCobroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cobro, error) {
	c, ok := r.cobros[id]
	if !ok {
		return nil, apierror.NotFound("cobro no encontrado")
	}
	return &c, nil
}

func (r *stubCobroRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Cobro, error) {
	return r.FindByID(ctx, id)
}

func (r *stubCobroRepo) NextCodigo(_ context.Context, _ *gorm.DB) (string, error) {
	r.seq++
	return fmt.Sprintf("P-%04d", r.seq), nil
}

func (r *stubCobroRepo) FindPadreParcial(_ context.Context, _ *gorm.DB, espacioID uuid.UUID, periodo, concepto string) (*model.Cobro, error) {
	for _, c := range r.cobros {
		if c.Vinculo == model.VinculoPadre && c.EspacioID != nil && *c.EspacioID == espacioID &&
			c.Periodo != nil && *c.Periodo == periodo && c.Concepto == concepto {
			return &c, nil
		}
	}
	return nil, apierror.NotFound("cuenta parcial no encontrado")
}

func (r *stubCobroRepo) ListAbonos(_ context.Context, _ *gorm.DB, padreID uuid.UUID) ([]model.Cobro, error) {
	var hijos []model.Cobro
	for _, c := range r.cobros {
		if c.CobroPadreID != nil && *c.CobroPadreID == padreID {
			hijos = append(hijos, c)
		}
	}
	sort.Slice(hijos, func(i, j int) bool { return hijos[i].Codigo < hijos[j].Codigo })
	return hijos, nil
}

func (r *stubCobroRepo) ListPadresConSaldo(ctx context.Context) ([]model.Cobro, error) {
	var padres []model.Cobro
	for _, c := range r.cobros {
		if c.Vinculo != model.VinculoPadre {
			continue
		}
		c.Abonos, _ = r.ListAbonos(ctx, nil, c.ID)
		total := c.MontoPagado
		for _, h := range c.Abonos {
			total = total.Add(h.MontoPagado)
		}
		if c.MontoAcordado.GreaterThan(total) {
			padres = append(padres, c)
		}
	}
	return padres, nil
}

func (r *stubCobroRepo) filtrar(filter dto.CobroFilter) []model.Cobro {
	var list []model.Cobro
	for _, c := range r.cobros {
		if filter.Concepto != "" && c.Concepto != filter.Concepto {
			continue
		}
		if filter.Estado != "" && c.Estado != filter.Estado {
			continue
		}
		if filter.Tipo != "" && c.Tipo != filter.Tipo {
			continue
		}
		if filter.EstadoCuenta != "" && r.estadoCuenta(c) != filter.EstadoCuenta {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Codigo < list[j].Codigo })
	return list
}

// estadoCuenta is the state of the partial account c belongs to, "" outside chains.
func (r *stubCobroRepo) estadoCuenta(c model.Cobro) string {
	padreID := c.ID
	switch c.Vinculo {
	case model.VinculoHijo:
		padreID = *c.CobroPadreID
	case model.VinculoPadre:
	default:
		return ""
	}
	padre := r.cobros[padreID]
	hijos, _ := r.ListAbonos(context.Background(), nil, padreID)
	return service.NuevaCuentaParcial(&padre, hijos).Estado
}

func (r *stubCobroRepo) List(_ context.Context, filter dto.CobroFilter) ([]model.Cobro, int64, error) {
	list := r.filtrar(filter)
	total := int64(len(list))
	inicio := (filter.Page - 1) * filter.Limit
	if inicio > len(list) {
		return nil, total, nil
	}
	fin := inicio + filter.Limit
	if fin > len(list) {
		fin = len(list)
	}
	return list[inicio:fin], total, nil
}

func (r *stubCobroRepo) ListAll(_ context.Context, filter dto.CobroFilter) ([]model.Cobro, error) {
	return r.filtrar(filter), nil
}

func (r *stubCobroRepo) ListMes(_ context.Context, anio int, mes time.Month) ([]model.Cobro, error) {
	periodo := time.Date(anio, mes, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	var list []model.Cobro
	for _, c := range r.cobros {
		enPeriodo := c.Periodo != nil && *c.Periodo == periodo
		pagadoEnMes := c.FechaPago != nil && c.FechaPago.Year() == anio && c.FechaPago.Month() == mes
		if enPeriodo || pagadoEnMes {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *stubCobroRepo) ListVencidos(_ context.Context, corte time.Time) ([]model.Cobro, error) {
	var list []model.Cobro
	for _, c := range r.cobros {
		if c.Tipo == model.TipoIngreso && c.Estado != model.EstadoPagado &&
			c.Vinculo == model.VinculoIndependiente && c.FechaVencimiento != nil && !c.FechaVencimiento.After(corte) {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *stubCobroRepo) DB() *gorm.DB { return nil }

var _ repository.CobroRepository = (*stubCobroRepo)(nil)

// ── stubObligacionRepo ───────────────────────────────────────────────────────

type stubObligacionRepo struct {
	plantillas   map[uuid.UUID]model.PlantillaObligacion
	obligaciones map[uuid.UUID]model.ObligacionGenerada
}

func newStubObligacionRepo() *stubObligacionRepo {
	return &stubObligacionRepo{
		plantillas:   map[uuid.UUID]model.PlantillaObligacion{},
		obligaciones: map[uuid.UUID]model.ObligacionGenerada{},
	}
}

func (r *stubObligacionRepo) CreatePlantilla(_ context.Context, p *model.PlantillaObligacion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.plantillas[p.ID] = *p
	return nil
}

func (r *stubObligacionRepo) FindPlantillaByID(_ context.Context, id uuid.UUID) (*model.PlantillaObligacion, error) {
	p, ok := r.plantillas[id]
	if !ok {
		return nil, apierror.NotFound("plantilla no encontrado")
	}
	return &p, nil
}

func (r *stubObligacionRepo) ListPlantillas(_ context.Context, soloActivas bool) ([]model.PlantillaObligacion, error) {
	var list []model.PlantillaObligacion
	for _, p := range r.plantillas {
		if soloActivas && !p.Activo {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Nombre < list[j].Nombre })
	return list, nil
}

func (r *stubObligacionRepo) SetPlantillaActiva(_ context.Context, id uuid.UUID, activo bool) error {
	p, ok := r.plantillas[id]
	if !ok {
		return apierror.NotFound("plantilla no encontrado")
	}
	p.Activo = activo
	r.plantillas[id] = p
	return nil
}

func (r *stubObligacionRepo) InsertObligacion(_ context.Context, _ *gorm.DB, o *model.ObligacionGenerada) (bool, error) {
	for _, existing := range r.obligaciones {
		if existing.PlantillaID == o.PlantillaID && existing.Periodo == o.Periodo {
			return false, nil
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	cp := *o
	cp.Plantilla = nil
	r.obligaciones[o.ID] = cp
	return true, nil
}

func (r *stubObligacionRepo) FindObligacion(_ context.Context, _ *gorm.DB, plantillaID uuid.UUID, periodo string) (*model.ObligacionGenerada, error) {
	for _, o := range r.obligaciones {
		if o.PlantillaID == plantillaID && o.Periodo == periodo {
			return &o, nil
		}
	}
	return nil, apierror.NotFound("obligacion no encontrado")
}

func (r *stubObligacionRepo) FindObligacionForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.ObligacionGenerada, error) {
	o, ok := r.obligaciones[id]
	if !ok {
		return nil, apierror.NotFound("obligacion no encontrado")
	}
	return &o, nil
}

func (r *stubObligacionRepo) UpdateObligacion(_ context.Context, _ *gorm.DB, o *model.ObligacionGenerada) error {
	cp := *o
	cp.Plantilla = nil
	r.obligaciones[o.ID] = cp
	return nil
}

func (r *stubObligacionRepo) ListObligaciones(_ context.Context, filter dto.ObligacionFilter) ([]model.ObligacionGenerada, error) {
	var list []model.ObligacionGenerada
	for _, o := range r.obligaciones {
		if filter.PlantillaID != "" && o.PlantillaID.String() != filter.PlantillaID {
			continue
		}
		if filter.Periodo != "" && o.Periodo != filter.Periodo {
			continue
		}
		if filter.Pendientes && o.Liquidada() {
			continue
		}
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FechaVencimiento.Before(list[j].FechaVencimiento) })
	return list, nil
}

func (r *stubObligacionRepo) DB() *gorm.DB { return nil }

var _ repository.ObligacionRepository = (*stubObligacionRepo)(nil)

// ── helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decP(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func str(s string) *string { return &s }

func fecha(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func nuevoEspacio(monto string, diaPago int) *model.Espacio {
	return &model.Espacio{
		ID:              uuid.New(),
		Codigo:          "L-01",
		Nombre:          "Local 1",
		MontoAcordado:   dec(monto),
		DiaPago:         diaPago,
		ConceptoDefault: model.ConceptoRenta,
		Activo:          true,
	}
}
