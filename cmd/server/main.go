// HealthAdmin API — reconciliação de consumo de OPME.
//
// Sobe o servidor HTTP, o pool de workers assíncronos (extração por IA,
// geração de relatórios, envio de email) e o cron de reprocessamento.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/router"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/worker"

	"github.com/rs/zerolog"
)

// @title           HealthAdmin API
// @version         1.0
// @description     Reconciliação de consumo de materiais OPME: extração por IA de fichas digitalizadas, revisão humana, consolidação em pedidos de reposição e relatórios em PDF.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Env)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workers
	extrator := infra.NewExtractionClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	var ocr worker.TextoDetector
	if cfg.OCREnabled {
		ocrClient, err := infra.NewOCRClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("ocr unavailable, extraction will run without supporting text")
		} else {
			ocr = ocrClient
			defer ocrClient.Close()
		}
	}

	docRepo := repository.NewDocumentoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	extracaoW := worker.NewExtracaoWorker(docRepo, pedidoRepo, extrator, ocr, cb,
		cfg.ExtractionBatchSize, cfg.ExtractionMaxRetry, log)
	relatorioW := worker.NewRelatorioWorker(pedidoRepo, dispatcher, cfg, log)
	emailW := worker.NewEmailWorker(infra.NewMailer(cfg), log)

	handlers := worker.WorkerHandlers{
		Extracao:  extracaoW.Handle,
		Relatorio: relatorioW.Handle,
		Email:     emailW.Handle,
	}
	poolWG := worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize, log)

	retryCron := worker.NewRetryCron(docRepo, dispatcher, cb, time.Minute, cfg.ExtractionMaxRetry, log)
	go retryCron.Start(ctx)

	// HTTP
	engine := router.Setup(router.Dependencies{
		DB:         db,
		Redis:      rdb,
		Config:     cfg,
		Logger:     log,
		CB:         cb,
		Dispatcher: dispatcher,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	poolWG.Wait()
	log.Info().Msg("bye")
}

func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger().
		Level(zerolog.DebugLevel)
}
