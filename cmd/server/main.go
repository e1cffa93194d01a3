package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admincs/internal/config"
	"admincs/internal/infra"
	"admincs/internal/repository"
	"admincs/internal/router"
	"admincs/internal/service"
	"admincs/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title                      AdminCS Ledger API
// @version                    1.0
// @description                Cobros, pagos parciales y obligaciones recurrentes de la cartera de espacios.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	relay := infra.NewBreakerSMTP(infra.BreakerSMTPConfigDesde(cfg))
	if !mailer.Configurado() {
		log.Warn().Msg("SMTP_HOST not set: reminder emails will fail and land in the DLQ")
	}

	// Worker handlers are wired here (composition root) so the pool has
	// full access to all infrastructure dependencies.
	cobroRepo := repository.NewCobroRepository(db)
	workerHandlers := &worker.WorkerHandlers{
		Recordatorio: worker.NewRecordatorioWorker(mailer, relay, cobroRepo, cfg.EmpresaNombre, cfg.PDFStoragePath),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	cobroSvc := service.NewCobroService(cobroRepo, repository.NewEspacioRepository(db))
	scheduler := worker.NewScheduler(worker.SchedulerConfig{
		Obligaciones: service.NewObligacionService(repository.NewObligacionRepository(db), cobroSvc),
		CobroRepo:    cobroRepo,
		Locker:       infra.NewLocker(rdb),
		Encolador:    worker.NewDispatcher(rdb),
		Hora:         cfg.SchedulerHora,
		DiasMin:      cfg.RecordatorioDiasMin,
	})
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	r := router.New(cfg, db, rdb, relay)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("AdminCS ledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
