package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"minter/internal/app"
	"minter/internal/http/handlers"
	httpapi "minter/internal/http/httpapi"
	"minter/internal/infra"
	"minter/internal/workflow"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire workflow")
	}
	defer components.Close()

	// submissions run on a context that survives the request but not shutdown
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	handlerApp := &handlers.App{
		Config:      cfg,
		Logger:      logger,
		Workflow:    components.Orchestrator,
		Mints:       components.Mints,
		BaseContext: workCtx,
	}
	components.Orchestrator.OnTransition(func(s workflow.Snapshot) {
		logger.Info().
			Str("submission_id", s.SubmissionID).
			Str("state", string(s.State)).
			Bool("waiting", s.Waiting).
			Str("last_error", s.LastError).
			Msg("workflow transition")
	})

	router := httpapi.NewRouter(handlerApp)
	server := infra.NewHTTPServer(cfg, router, nil)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	cancelWork()
	logger.Info().Msg("server stopped")
}
