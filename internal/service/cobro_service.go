package service

import (
	"context"
	"time"

	"admincs/internal/apierror"
	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CobroService interface {
	Crear(ctx context.Context, req dto.CrearCobroRequest) (*dto.CobroResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CobroResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCobroRequest) (*dto.CobroResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID, codigoConfirmacion string) error
	Listar(ctx context.Context, filter dto.CobroFilter) (*dto.CobroListResponse, error)
	// ListarTodos ignores pagination; used by the spreadsheet export.
	ListarTodos(ctx context.Context, filter dto.CobroFilter) ([]dto.CobroResponse, error)
	// ParaRecibo returns a charge with at least one payment, ready for a receipt.
	ParaRecibo(ctx context.Context, id uuid.UUID) (*model.Cobro, error)
	// RegistrarEnTx validates, numbers, derives and inserts c within the caller's tx.
	RegistrarEnTx(ctx context.Context, tx *gorm.DB, c *model.Cobro) error
}

type cobroService struct {
	repo        repository.CobroRepository
	espacioRepo repository.EspacioRepository
}

func NewCobroService(repo repository.CobroRepository, espacioRepo repository.EspacioRepository) CobroService {
	return &cobroService{repo: repo, espacioRepo: espacioRepo}
}

// ── Crear ────────────────────────────────────────────────────────────────────

func (s *cobroService) Crear(ctx context.Context, req dto.CrearCobroRequest) (*dto.CobroResponse, error) {
	c, err := s.nuevoCobro(ctx, req)
	if err != nil {
		return nil, err
	}

	err = conReintento("crear_cobro", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.RegistrarEnTx(ctx, tx, c)
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("codigo", c.Codigo).Str("concepto", c.Concepto).
		Str("estado", c.Estado).Str("monto_pagado", c.MontoPagado.StringFixed(2)).
		Msg("cobro registrado")

	resp := mapCobroConMora(c, time.Now())
	return &resp, nil
}

func (s *cobroService) RegistrarEnTx(ctx context.Context, tx *gorm.DB, c *model.Cobro) error {
	if c.Vinculo == "" {
		c.Vinculo = model.VinculoIndependiente
	}
	if err := validarCobro(c); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := c.ValidarVinculo(); err != nil {
		return apierror.Validation(err.Error())
	}

	codigo, err := s.repo.NextCodigo(ctx, tx)
	if err != nil {
		return err
	}
	c.Codigo = codigo
	c.Derivar()
	return s.repo.Create(ctx, tx, c)
}

// nuevoCobro builds the model from the request, filling defaults from the space.
func (s *cobroService) nuevoCobro(ctx context.Context, req dto.CrearCobroRequest) (*model.Cobro, error) {
	c := &model.Cobro{
		Tipo:        req.Tipo,
		Categoria:   req.Categoria,
		Concepto:    req.Concepto,
		Periodo:     req.Periodo,
		MontoPagado: req.MontoPagado,
		MetodoPago:  req.MetodoPago,
		Referencia:  req.Referencia,
		Notas:       req.Notas,
		Vinculo:     model.VinculoIndependiente,
	}
	if c.Tipo == "" {
		c.Tipo = model.TipoIngreso
	}

	var err error
	if c.FechaPago, err = parseFechaOpt("fecha_pago", req.FechaPago); err != nil {
		return nil, err
	}
	if c.FechaVencimiento, err = parseFechaOpt("fecha_vencimiento", req.FechaVencimiento); err != nil {
		return nil, err
	}
	var periodo time.Time
	if c.Periodo != nil {
		if periodo, err = ParsePeriodo(*c.Periodo); err != nil {
			return nil, err
		}
	}

	var espacio *model.Espacio
	if req.EspacioID != nil && *req.EspacioID != "" {
		id, err := uuid.Parse(*req.EspacioID)
		if err != nil {
			return nil, apierror.ValidationField("espacio_id", "espacio_id inválido")
		}
		if espacio, err = s.espacioRepo.FindByID(ctx, id); err != nil {
			return nil, err
		}
		c.EspacioID = &espacio.ID
		c.Espacio = espacio
	}

	switch {
	case req.MontoAcordado != nil:
		c.MontoAcordado = *req.MontoAcordado
	case c.Concepto == model.ConceptoRenta && espacio != nil:
		c.MontoAcordado = espacio.MontoAcordado
	default:
		// a one-off event with no agreed amount is settled by what was paid
		c.MontoAcordado = c.MontoPagado
	}

	if c.FechaVencimiento == nil && c.Concepto == model.ConceptoRenta && espacio != nil && c.Periodo != nil {
		v := FechaEnMes(periodo.Year(), periodo.Month(), espacio.DiaPago)
		c.FechaVencimiento = &v
	}
	return c, nil
}

// validarCobro checks a charge's field consistency before any persistence.
func validarCobro(c *model.Cobro) error {
	campos := map[string]string{}

	switch c.Tipo {
	case model.TipoIngreso:
		if c.Categoria != nil {
			campos["categoria"] = "solo los egresos llevan categoría"
		}
	case model.TipoEgreso:
		if c.Concepto != model.ConceptoOtro {
			campos["concepto"] = "un egreso debe tener concepto otro"
		}
		if c.Categoria == nil {
			campos["categoria"] = "un egreso requiere categoría"
		}
	default:
		campos["tipo"] = "tipo inválido"
	}

	switch c.Concepto {
	case model.ConceptoRenta:
		if c.EspacioID == nil {
			campos["espacio_id"] = "la renta requiere un espacio"
		}
		if c.Periodo == nil {
			campos["periodo"] = "la renta requiere periodo"
		}
	case model.ConceptoCortaEstancia:
		if c.EspacioID == nil {
			campos["espacio_id"] = "la corta estancia requiere un espacio"
		}
		if c.Periodo != nil {
			campos["periodo"] = "la corta estancia no lleva periodo"
		}
	case model.ConceptoOtro:
	default:
		campos["concepto"] = "concepto inválido"
	}

	if c.MontoAcordado.IsNegative() {
		campos["monto_acordado"] = "el monto acordado no puede ser negativo"
	}
	if c.MontoPagado.IsNegative() {
		campos["monto_pagado"] = "el monto pagado no puede ser negativo"
	}
	for campo, monto := range map[string]decimal.Decimal{"monto_acordado": c.MontoAcordado, "monto_pagado": c.MontoPagado} {
		if !monto.Equal(monto.Round(2)) {
			campos[campo] = "el monto admite como máximo dos decimales"
		}
	}
	if c.MontoPagado.IsPositive() {
		if c.FechaPago == nil {
			campos["fecha_pago"] = "un pago requiere fecha de pago"
		}
		if c.MetodoPago == nil {
			campos["metodo_pago"] = "un pago requiere método de pago"
		}
	}

	if len(campos) > 0 {
		return &apierror.Error{Kind: apierror.KindValidation, Message: "Datos del cobro inválidos", Fields: campos}
	}
	return nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *cobroService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CobroResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapCobroConMora(c, time.Now())
	return &resp, nil
}

func (s *cobroService) ParaRecibo(ctx context.Context, id uuid.UUID) (*model.Cobro, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.MontoPagado.IsPositive() {
		return nil, apierror.Validation("El cobro no registra pagos")
	}
	return c, nil
}

func (s *cobroService) Listar(ctx context.Context, filter dto.CobroFilter) (*dto.CobroListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	cobros, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	todos, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	hoy := time.Now()
	data := make([]dto.CobroResponse, 0, len(cobros))
	for i := range cobros {
		data = append(data, mapCobroConMora(&cobros[i], hoy))
	}
	return &dto.CobroListResponse{
		Data:         data,
		Estadisticas: Estadisticas(todos),
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}, nil
}

func (s *cobroService) ListarTodos(ctx context.Context, filter dto.CobroFilter) ([]dto.CobroResponse, error) {
	cobros, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	hoy := time.Now()
	data := make([]dto.CobroResponse, 0, len(cobros))
	for i := range cobros {
		data = append(data, mapCobroConMora(&cobros[i], hoy))
	}
	return data, nil
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *cobroService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCobroRequest) (*dto.CobroResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.aplicarCambios(ctx, c, req); err != nil {
			return err
		}
		if err := validarCobro(c); err != nil {
			return err
		}
		c.Derivar()
		return s.repo.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, id)
}

func (s *cobroService) aplicarCambios(ctx context.Context, c *model.Cobro, req dto.ActualizarCobroRequest) error {
	if c.EsParcial() {
		// chain rows are keyed by (espacio, periodo, concepto) and their amounts
		// are fixed by the installment that created them
		switch {
		case req.EspacioID != nil, req.Concepto != nil, req.Periodo != nil:
			return apierror.Validation("No se puede cambiar la cuenta de un pago parcial")
		case req.MontoAcordado != nil, req.MontoPagado != nil:
			return apierror.Validation("Los montos de un pago parcial se registran mediante abonos")
		}
	}

	if req.EspacioID != nil {
		espacioID, err := uuid.Parse(*req.EspacioID)
		if err != nil {
			return apierror.ValidationField("espacio_id", "espacio_id inválido")
		}
		if _, err := s.espacioRepo.FindByID(ctx, espacioID); err != nil {
			return err
		}
		c.EspacioID = &espacioID
	}
	if req.Categoria != nil {
		c.Categoria = req.Categoria
	}
	if req.Concepto != nil {
		c.Concepto = *req.Concepto
		if c.Concepto == model.ConceptoCortaEstancia && req.Periodo == nil {
			c.Periodo = nil
		}
	}
	if req.Periodo != nil {
		if _, err := ParsePeriodo(*req.Periodo); err != nil {
			return err
		}
		c.Periodo = req.Periodo
	}
	if req.MontoAcordado != nil {
		c.MontoAcordado = *req.MontoAcordado
	}
	if req.MontoPagado != nil {
		c.MontoPagado = *req.MontoPagado
	}
	if req.FechaPago != nil {
		f, err := parseFecha("fecha_pago", *req.FechaPago)
		if err != nil {
			return err
		}
		c.FechaPago = &f
	}
	if req.FechaVencimiento != nil {
		f, err := parseFecha("fecha_vencimiento", *req.FechaVencimiento)
		if err != nil {
			return err
		}
		c.FechaVencimiento = &f
	}
	if req.MetodoPago != nil {
		c.MetodoPago = req.MetodoPago
	}
	if req.Referencia != nil {
		c.Referencia = req.Referencia
	}
	if req.Notas != nil {
		c.Notas = req.Notas
	}
	return nil
}

// ── Eliminar ─────────────────────────────────────────────────────────────────

func (s *cobroService) Eliminar(ctx context.Context, id uuid.UUID, codigoConfirmacion string) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if codigoConfirmacion != c.Codigo {
			return apierror.ValidationField("codigo_confirmacion", "El código de confirmación no coincide")
		}
		if c.Vinculo == model.VinculoPadre {
			hijos, err := s.repo.ListAbonos(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			if len(hijos) > 0 {
				return apierror.Validation("La cuenta parcial tiene abonos; elimínelos primero")
			}
		}
		if c.ObligacionID != nil {
			return apierror.Validation("El cobro liquida una obligación y no puede eliminarse")
		}
		if err := s.repo.Delete(ctx, tx, c.ID); err != nil {
			return err
		}
		log.Warn().Str("codigo", c.Codigo).Str("monto_pagado", c.MontoPagado.StringFixed(2)).Msg("cobro eliminado")
		return nil
	})
}

// montoOCero dereferences an optional amount.
func montoOCero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
