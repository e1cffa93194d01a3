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

type PagoParcialService interface {
	RegistrarAbono(ctx context.Context, req dto.RegistrarAbonoRequest) (*dto.RegistrarAbonoResponse, error)
	ResumenCuenta(ctx context.Context, padreID uuid.UUID) (*dto.CuentaParcialResponse, error)
	ListarCuentasPendientes(ctx context.Context) ([]dto.CuentaParcialResponse, error)
}

type pagoParcialService struct {
	repo        repository.CobroRepository
	espacioRepo repository.EspacioRepository
	cobros      CobroService
}

func NewPagoParcialService(repo repository.CobroRepository, espacioRepo repository.EspacioRepository, cobros CobroService) PagoParcialService {
	return &pagoParcialService{repo: repo, espacioRepo: espacioRepo, cobros: cobros}
}

// ── RegistrarAbono ───────────────────────────────────────────────────────────
// One transaction per installment:
//   1. Lock the parent of (espacio, periodo, concepto), if any
//   2. No parent → the installment opens the account as parcial_padre
//   3. Parent → validate abono ≤ saldo and insert a parcial_hijo
// A concurrent open of the same account surfaces as a conflict on the partial
// unique index and is retried once, which then takes path 3.

func (s *pagoParcialService) RegistrarAbono(ctx context.Context, req dto.RegistrarAbonoRequest) (*dto.RegistrarAbonoResponse, error) {
	if !req.Abono.IsPositive() {
		return nil, apierror.ValidationField("abono", "El abono debe ser mayor a cero")
	}
	if req.Concepto == model.ConceptoCortaEstancia {
		return nil, apierror.ValidationField("concepto", "La corta estancia no admite pagos parciales")
	}
	espacioID, err := uuid.Parse(req.EspacioID)
	if err != nil {
		return nil, apierror.ValidationField("espacio_id", "espacio_id inválido")
	}
	periodo, err := ParsePeriodo(req.Periodo)
	if err != nil {
		return nil, err
	}
	fechaPago, err := parseFecha("fecha_pago", req.FechaPago)
	if err != nil {
		return nil, err
	}
	espacio, err := s.espacioRepo.FindByID(ctx, espacioID)
	if err != nil {
		return nil, err
	}

	var (
		abono *model.Cobro
		padre *model.Cobro
		hijos []model.Cobro
	)
	err = conReintento("registrar_abono", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			abono = &model.Cobro{
				Tipo:        model.TipoIngreso,
				EspacioID:   &espacio.ID,
				Concepto:    req.Concepto,
				Periodo:     &req.Periodo,
				MontoPagado: req.Abono,
				FechaPago:   &fechaPago,
				MetodoPago:  &req.MetodoPago,
				Referencia:  req.Referencia,
				Notas:       req.Notas,
			}
			if req.Concepto == model.ConceptoRenta {
				v := FechaEnMes(periodo.Year(), periodo.Month(), espacio.DiaPago)
				abono.FechaVencimiento = &v
			}

			existente, err := s.repo.FindPadreParcial(ctx, tx, espacio.ID, req.Periodo, req.Concepto)
			switch {
			case apierror.Is(err, apierror.KindNotFound):
				acordado := espacio.MontoAcordado
				if req.MontoAcordado != nil {
					acordado = *req.MontoAcordado
				}
				if !acordado.IsPositive() {
					return apierror.ValidationField("monto_acordado", "La cuenta requiere un monto acordado mayor a cero")
				}
				if req.Abono.GreaterThan(acordado) {
					return apierror.ValidationField("abono", fmt.Sprintf("El abono excede el monto acordado (%s)", acordado.StringFixed(2)))
				}
				abono.Vinculo = model.VinculoPadre
				abono.MontoAcordado = acordado
				padre, hijos = abono, nil
				return s.cobros.RegistrarEnTx(ctx, tx, abono)
			case err != nil:
				return err
			}

			hijos, err = s.repo.ListAbonos(ctx, tx, existente.ID)
			if err != nil {
				return err
			}
			cuenta := NuevaCuentaParcial(existente, hijos)
			if !cuenta.SaldoPendiente.IsPositive() {
				return apierror.Validation(fmt.Sprintf("La cuenta %s ya está saldada", existente.Codigo))
			}
			if req.Abono.GreaterThan(cuenta.SaldoPendiente) {
				return apierror.ValidationField("abono", fmt.Sprintf("El abono excede el saldo pendiente (%s)", cuenta.SaldoPendiente.StringFixed(2)))
			}

			abono.Vinculo = model.VinculoHijo
			abono.CobroPadreID = &existente.ID
			abono.MontoAcordado = cuenta.SaldoPendiente
			abono.FechaVencimiento = existente.FechaVencimiento
			if err := s.cobros.RegistrarEnTx(ctx, tx, abono); err != nil {
				return err
			}
			padre, hijos = existente, append(hijos, *abono)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	padre.Espacio = espacio
	cuenta := NuevaCuentaParcial(padre, hijos)
	log.Info().Str("cuenta", padre.Codigo).Str("abono", abono.Codigo).
		Str("monto", req.Abono.StringFixed(2)).Str("saldo", cuenta.SaldoPendiente.StringFixed(2)).
		Msg("abono registrado")

	return &dto.RegistrarAbonoResponse{
		Abono:  mapCobro(abono),
		Cuenta: mapCuenta(cuenta),
	}, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

// ResumenCuenta accepts the id of the parent or of any of its installments.
func (s *pagoParcialService) ResumenCuenta(ctx context.Context, id uuid.UUID) (*dto.CuentaParcialResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch c.Vinculo {
	case model.VinculoHijo:
		if c, err = s.repo.FindByID(ctx, *c.CobroPadreID); err != nil {
			return nil, err
		}
	case model.VinculoPadre:
	default:
		return nil, apierror.Validation(fmt.Sprintf("El cobro %s no es un pago parcial", c.Codigo))
	}

	hijos, err := s.repo.ListAbonos(ctx, nil, c.ID)
	if err != nil {
		return nil, err
	}
	resp := mapCuenta(NuevaCuentaParcial(c, hijos))
	return &resp, nil
}

func (s *pagoParcialService) ListarCuentasPendientes(ctx context.Context) ([]dto.CuentaParcialResponse, error) {
	padres, err := s.repo.ListPadresConSaldo(ctx)
	if err != nil {
		return nil, err
	}
	hoy := time.Now()
	result := make([]dto.CuentaParcialResponse, 0, len(padres))
	for i := range padres {
		cuenta := NuevaCuentaParcial(&padres[i], padres[i].Abonos)
		if !cuenta.SaldoPendiente.IsPositive() {
			continue
		}
		resp := mapCuenta(cuenta)
		if a := abonoPadre(&resp); a != nil {
			AnotarMora(a, &padres[i], hoy)
		}
		result = append(result, resp)
	}
	return result, nil
}
