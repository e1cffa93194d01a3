package service

import (
	"context"
	"fmt"
	"time"

	"admincs/internal/apierror"
	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ObligacionService interface {
	DefinirPlantilla(ctx context.Context, req dto.CrearPlantillaRequest) (*dto.PlantillaResponse, error)
	ListarPlantillas(ctx context.Context, soloActivas bool) ([]dto.PlantillaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// GenerarObligacion is idempotent per (plantilla, periodo); creada is false
	// when the obligation already existed.
	GenerarObligacion(ctx context.Context, plantillaID uuid.UUID, periodo string) (resp *dto.ObligacionResponse, creada bool, err error)
	GenerarVencidas(ctx context.Context, hoy time.Time) (*dto.GenerarVencidasResponse, error)
	Liquidar(ctx context.Context, obligacionID uuid.UUID, req dto.LiquidarObligacionRequest) (*dto.CobroResponse, error)
	ListarObligaciones(ctx context.Context, filter dto.ObligacionFilter) ([]dto.ObligacionResponse, error)
}

type obligacionService struct {
	repo   repository.ObligacionRepository
	cobros CobroService
}

func NewObligacionService(repo repository.ObligacionRepository, cobros CobroService) ObligacionService {
	return &obligacionService{repo: repo, cobros: cobros}
}

// ── Plantillas ───────────────────────────────────────────────────────────────

func (s *obligacionService) DefinirPlantilla(ctx context.Context, req dto.CrearPlantillaRequest) (*dto.PlantillaResponse, error) {
	if _, err := PasoMeses(req.Frecuencia); err != nil {
		return nil, err
	}
	if req.DiaVencimiento != nil && (*req.DiaVencimiento < 1 || *req.DiaVencimiento > 31) {
		return nil, apierror.ValidationField("dia_vencimiento", "El día de vencimiento debe estar entre 1 y 31")
	}
	inicio, err := parseFecha("fecha_inicio", req.FechaInicio)
	if err != nil {
		return nil, err
	}
	fin, err := parseFechaOpt("fecha_fin", req.FechaFin)
	if err != nil {
		return nil, err
	}
	if fin != nil && fin.Before(inicio) {
		return nil, apierror.ValidationField("fecha_fin", "La fecha de fin no puede ser anterior a la de inicio")
	}

	p := &model.PlantillaObligacion{
		ID:             uuid.New(),
		Nombre:         req.Nombre,
		Contraparte:    req.Contraparte,
		Categoria:      req.Categoria,
		EsVariable:     req.EsVariable,
		MetodoPago:     req.MetodoPago,
		Frecuencia:     req.Frecuencia,
		DiaVencimiento: req.DiaVencimiento,
		FechaInicio:    inicio,
		FechaFin:       fin,
		Activo:         true,
		Notas:          req.Notas,
	}
	if !req.EsVariable {
		if req.Monto == nil || !req.Monto.IsPositive() {
			return nil, apierror.ValidationField("monto", "Una obligación de monto fijo requiere monto mayor a cero")
		}
		p.Monto = req.Monto
	}

	if err := s.repo.CreatePlantilla(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("plantilla_id", p.ID.String()).Str("frecuencia", p.Frecuencia).Msg("plantilla de obligación definida")
	resp := mapPlantilla(p, time.Now())
	return &resp, nil
}

func (s *obligacionService) ListarPlantillas(ctx context.Context, soloActivas bool) ([]dto.PlantillaResponse, error) {
	list, err := s.repo.ListPlantillas(ctx, soloActivas)
	if err != nil {
		return nil, err
	}
	hoy := time.Now()
	result := make([]dto.PlantillaResponse, 0, len(list))
	for i := range list {
		result = append(result, mapPlantilla(&list[i], hoy))
	}
	return result, nil
}

func (s *obligacionService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetPlantillaActiva(ctx, id, false)
}

func (s *obligacionService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetPlantillaActiva(ctx, id, true)
}

// ── Generación ───────────────────────────────────────────────────────────────

func (s *obligacionService) GenerarObligacion(ctx context.Context, plantillaID uuid.UUID, periodo string) (*dto.ObligacionResponse, bool, error) {
	p, err := s.repo.FindPlantillaByID(ctx, plantillaID)
	if err != nil {
		return nil, false, err
	}
	t, err := ParsePeriodo(periodo)
	if err != nil {
		return nil, false, err
	}
	o, creada, err := s.generar(ctx, p, t)
	if err != nil {
		return nil, false, err
	}
	resp := mapObligacion(o, time.Now())
	return &resp, creada, nil
}

// generar inserts the obligation for (p, periodo) unless it exists and returns
// the stored row either way.
func (s *obligacionService) generar(ctx context.Context, p *model.PlantillaObligacion, periodo time.Time) (*model.ObligacionGenerada, bool, error) {
	ok, err := CorrespondePeriodo(p, periodo)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, apierror.ValidationField("periodo",
			fmt.Sprintf("El periodo %s no corresponde a la plantilla (%s desde %s)", FormatPeriodo(periodo), p.Frecuencia, FormatPeriodo(p.FechaInicio)))
	}
	if !p.Activo {
		// an inactive template still answers for periods it already generated
		o, err := s.repo.FindObligacion(ctx, nil, p.ID, FormatPeriodo(periodo))
		switch {
		case apierror.Is(err, apierror.KindNotFound):
			return nil, false, apierror.Validation(fmt.Sprintf("La plantilla %q está inactiva", p.Nombre))
		case err != nil:
			return nil, false, err
		}
		o.Plantilla = p
		return o, false, nil
	}

	o := &model.ObligacionGenerada{
		ID:               uuid.New(),
		PlantillaID:      p.ID,
		Periodo:          FormatPeriodo(periodo),
		FechaVencimiento: VencimientoPeriodo(p, periodo),
	}
	if !p.EsVariable && p.Monto != nil {
		o.Monto = decPtr(*p.Monto)
	}

	creada, err := s.repo.InsertObligacion(ctx, nil, o)
	if err != nil {
		return nil, false, err
	}
	if !creada {
		if o, err = s.repo.FindObligacion(ctx, nil, p.ID, FormatPeriodo(periodo)); err != nil {
			return nil, false, err
		}
	} else {
		log.Info().Str("plantilla_id", p.ID.String()).Str("periodo", o.Periodo).Msg("obligación generada")
	}
	o.Plantilla = p
	return o, creada, nil
}

// GenerarVencidas catches every active template up to hoy. Safe to run
// repeatedly and concurrently; only missing periods are inserted.
func (s *obligacionService) GenerarVencidas(ctx context.Context, hoy time.Time) (*dto.GenerarVencidasResponse, error) {
	plantillas, err := s.repo.ListPlantillas(ctx, true)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerarVencidasResponse{Obligaciones: []dto.ObligacionResponse{}}
	for i := range plantillas {
		p := &plantillas[i]
		periodos, err := PeriodosVencidos(p, hoy)
		if err != nil {
			log.Error().Err(err).Str("plantilla_id", p.ID.String()).Msg("plantilla con frecuencia inválida")
			continue
		}
		for _, periodo := range periodos {
			o, creada, err := s.generar(ctx, p, periodo)
			if err != nil {
				return nil, err
			}
			if creada {
				resp.Obligaciones = append(resp.Obligaciones, mapObligacion(o, hoy))
			}
		}
	}
	resp.Generadas = len(resp.Obligaciones)
	return resp, nil
}

// ── Liquidar ─────────────────────────────────────────────────────────────────

// Liquidar settles an obligation by recording an egreso in the ledger and
// linking it, in one transaction.
func (s *obligacionService) Liquidar(ctx context.Context, obligacionID uuid.UUID, req dto.LiquidarObligacionRequest) (*dto.CobroResponse, error) {
	fechaPago, err := parseFecha("fecha_pago", req.FechaPago)
	if err != nil {
		return nil, err
	}

	var cobro *model.Cobro
	err = conReintento("liquidar_obligacion", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			o, err := s.repo.FindObligacionForUpdate(ctx, tx, obligacionID)
			if err != nil {
				return err
			}
			if o.Liquidada() {
				return apierror.Validation(fmt.Sprintf("La obligación del periodo %s ya fue liquidada", o.Periodo))
			}
			p, err := s.repo.FindPlantillaByID(ctx, o.PlantillaID)
			if err != nil {
				return err
			}

			monto := montoOCero(o.Monto)
			switch {
			case req.Monto != nil:
				monto = *req.Monto
			case p.EsVariable || o.Monto == nil:
				return apierror.ValidationField("monto", "Una obligación variable requiere el monto pagado")
			}
			if !monto.IsPositive() {
				return apierror.ValidationField("monto", "El monto debe ser mayor a cero")
			}

			metodo := p.MetodoPago
			if req.MetodoPago != nil {
				metodo = *req.MetodoPago
			}
			notas := req.Notas
			if notas == nil {
				notas = strPtr(fmt.Sprintf("%s - %s", p.Nombre, p.Contraparte))
			}
			categoria := p.Categoria
			vencimiento := o.FechaVencimiento
			periodo := o.Periodo
			obligacion := o.ID

			cobro = &model.Cobro{
				Tipo:             model.TipoEgreso,
				Categoria:        &categoria,
				Concepto:         model.ConceptoOtro,
				Periodo:          &periodo,
				MontoAcordado:    monto,
				MontoPagado:      monto,
				FechaVencimiento: &vencimiento,
				FechaPago:        &fechaPago,
				MetodoPago:       &metodo,
				Referencia:       req.Referencia,
				Notas:            notas,
				ObligacionID:     &obligacion,
			}
			if o.Monto == nil {
				// variable amounts are fixed at settlement
				o.Monto = decPtr(monto)
			}
			if err := s.cobros.RegistrarEnTx(ctx, tx, cobro); err != nil {
				return err
			}

			ahora := time.Now()
			o.CobroID = &cobro.ID
			o.LiquidadaAt = &ahora
			return s.repo.UpdateObligacion(ctx, tx, o)
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("obligacion_id", obligacionID.String()).Str("cobro", cobro.Codigo).
		Str("monto", cobro.MontoPagado.StringFixed(2)).Msg("obligación liquidada")
	resp := mapCobro(cobro)
	return &resp, nil
}

func (s *obligacionService) ListarObligaciones(ctx context.Context, filter dto.ObligacionFilter) ([]dto.ObligacionResponse, error) {
	list, err := s.repo.ListObligaciones(ctx, filter)
	if err != nil {
		return nil, err
	}
	hoy := time.Now()
	result := make([]dto.ObligacionResponse, 0, len(list))
	for i := range list {
		result = append(result, mapObligacion(&list[i], hoy))
	}
	return result, nil
}
