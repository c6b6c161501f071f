package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/api"
	"coursekeeper/internal/app/server/config"
	"coursekeeper/internal/infrastructure/storage"
	"coursekeeper/internal/utils/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.WithLevel(cfg.Env, cfg.Logger.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("store close", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(client, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started",
			slog.String("address", cfg.Server.RunAddress),
			slog.String("backend", cfg.Store.Backend),
			slog.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	// ждем завершения текущих запросов, websocket потоки закрываются вместе с хранилищем
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
