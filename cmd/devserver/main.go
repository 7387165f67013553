// Package main запускает сервер разработки с API мини-приложения.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shopapp/internal/config"
	"github.com/mmeshcher/shopapp/internal/devserver"
	"github.com/mmeshcher/shopapp/internal/initdata"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.ParseServer()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store := devserver.NewStore(devserver.DefaultCatalog())
	sessions := devserver.NewSessions(cfg.SessionSecret)
	h := devserver.NewHandler(store, sessions, cfg.BotToken, logger)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	// Подписанные данные запуска для клиента, запущенного вне платформы.
	sample, err := initdata.SignUser(initdata.User{ID: 1, Username: "dev", FirstName: "Dev"}, cfg.BotToken, time.Now())
	if err != nil {
		sugar.Fatalw("sample init data error", "error", err.Error())
	}
	sugar.Infow("sample init data for local client", "INIT_DATA", sample)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting dev server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
