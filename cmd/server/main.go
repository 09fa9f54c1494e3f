package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/DoyleJ11/petdeal-backend/internal/config"
	"github.com/DoyleJ11/petdeal-backend/internal/httpapi"
	"github.com/DoyleJ11/petdeal-backend/internal/hub"
	"github.com/DoyleJ11/petdeal-backend/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Int("cards", catalog.Len()), zap.String("path", cfg.CatalogPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub outlives the signal context: it is stopped only after the
	// server has drained, so in-flight requests still reach it.
	h := hub.NewHub(context.Background(), logger)

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:            h,
			Catalog:        catalog,
			Settings:       cfg.Settings,
			BotDelay:       cfg.BotDelay,
			Linger:         cfg.GameLinger,
			IdleTimeout:    cfg.GameIdleTimeout,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		h.Inbox() <- hub.ShutdownHub{}
		<-h.Done()
		return err
	})
	return g.Wait()
}

func loadCatalog(path string) (*cards.Catalog, error) {
	if path == "" {
		return cards.DefaultCatalog()
	}
	return cards.LoadCatalog(path)
}
