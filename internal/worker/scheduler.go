package worker

// scheduler.go
// Daily job: catch up recurring obligations, then sweep overdue income and
// enqueue tenant reminders. Every replica schedules it; a Redis lock makes
// sure only one of them runs it per day.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admincs/internal/infra"
	"admincs/internal/model"
	"admincs/internal/mora"
	"admincs/internal/repository"
	"admincs/internal/service"

	"github.com/jasonlvhit/gocron"
	"github.com/rs/zerolog/log"
)

const (
	lockGeneracion = "lock:obligaciones:generar-vencidas"
	lockTTL        = 10 * time.Minute
	// reminders repeat weekly after the first one
	cadenciaRecordatorio = 7
)

// Locker runs fn under a cluster-wide lock (infra.Locker in production).
type Locker interface {
	ConLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// Encolador enqueues reminder jobs (Dispatcher in production).
type Encolador interface {
	EnqueueRecordatorio(ctx context.Context, payload RecordatorioPayload) error
}

var (
	_ Locker    = (*infra.Locker)(nil)
	_ Encolador = (*Dispatcher)(nil)
)

type SchedulerConfig struct {
	Obligaciones service.ObligacionService
	CobroRepo    repository.CobroRepository
	Locker       Locker
	Encolador    Encolador
	Hora         string // HH:MM
	DiasMin      int
}

type Scheduler struct {
	cfg SchedulerConfig
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.DiasMin < 0 {
		cfg.DiasMin = 0
	}
	return &Scheduler{cfg: cfg}
}

// ResultadoCorrida summarizes one daily run.
type ResultadoCorrida struct {
	Generadas     int
	Recordatorios int
}

// Start registers the daily job with gocron and stops it when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := time.Parse("15:04", s.cfg.Hora); err != nil {
		return fmt.Errorf("scheduler: SCHEDULER_HORA %q must be HH:MM", s.cfg.Hora)
	}

	sch := gocron.NewScheduler()
	sch.Every(1).Day().At(s.cfg.Hora + ":00").Do(s.tick, ctx)
	stop := sch.Start()

	go func() {
		<-ctx.Done()
		sch.Clear()
		close(stop)
		log.Info().Msg("scheduler: shutting down")
	}()
	log.Info().Str("hora", s.cfg.Hora).Msg("scheduler: started")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.Ejecutar(ctx, time.Now())
	switch {
	case errors.Is(err, infra.ErrLockOcupado):
		log.Info().Msg("scheduler: another instance holds the lock: skipping")
	case err != nil:
		log.Error().Err(err).Msg("scheduler: daily run failed")
	default:
		log.Info().Int("generadas", res.Generadas).Int("recordatorios", res.Recordatorios).
			Msg("scheduler: daily run finished")
	}
}

// Ejecutar performs one run for hoy under the cluster lock.
func (s *Scheduler) Ejecutar(ctx context.Context, hoy time.Time) (*ResultadoCorrida, error) {
	res := &ResultadoCorrida{}
	err := s.cfg.Locker.ConLock(ctx, lockGeneracion, lockTTL, func(ctx context.Context) error {
		gen, err := s.cfg.Obligaciones.GenerarVencidas(ctx, hoy)
		if err != nil {
			return fmt.Errorf("generar vencidas: %w", err)
		}
		res.Generadas = gen.Generadas

		res.Recordatorios, err = s.encolarRecordatorios(ctx, hoy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scheduler) encolarRecordatorios(ctx context.Context, hoy time.Time) (int, error) {
	corte := hoy.AddDate(0, 0, -s.cfg.DiasMin)
	vencidos, err := s.cfg.CobroRepo.ListVencidos(ctx, corte)
	if err != nil {
		return 0, fmt.Errorf("listar vencidos: %w", err)
	}

	encolados := 0
	for i := range vencidos {
		c := &vencidos[i]
		if !tocaRecordatorio(c, hoy, s.cfg.DiasMin) {
			continue
		}
		inquilino := inquilinoDe(c)
		if inquilino == nil || inquilino.Email == nil || *inquilino.Email == "" {
			log.Debug().Str("codigo", c.Codigo).Msg("scheduler: overdue charge without tenant email")
			continue
		}
		payload := RecordatorioPayload{
			CobroID:   c.ID.String(),
			Codigo:    c.Codigo,
			ToEmail:   *inquilino.Email,
			Inquilino: inquilino.Nombre,
		}
		if err := s.cfg.Encolador.EnqueueRecordatorio(ctx, payload); err != nil {
			return encolados, fmt.Errorf("encolar recordatorio %s: %w", c.Codigo, err)
		}
		encolados++
	}
	return encolados, nil
}

// tocaRecordatorio holds on the first eligible day and weekly after that.
func tocaRecordatorio(c *model.Cobro, hoy time.Time, diasMin int) bool {
	if c.FechaVencimiento == nil {
		return false
	}
	dias := mora.DiasVencido(*c.FechaVencimiento, hoy)
	if dias < diasMin || dias == 0 {
		return false
	}
	return (dias-diasMin)%cadenciaRecordatorio == 0
}

func inquilinoDe(c *model.Cobro) *model.Inquilino {
	if c.Espacio == nil {
		return nil
	}
	return c.Espacio.Inquilino
}
