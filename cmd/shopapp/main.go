// Package main запускает терминальный клиент мини-приложения магазина.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shopapp/internal/api"
	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/config"
	"github.com/mmeshcher/shopapp/internal/forms"
	"github.com/mmeshcher/shopapp/internal/gate"
	"github.com/mmeshcher/shopapp/internal/notify"
	"github.com/mmeshcher/shopapp/internal/order"
	"github.com/mmeshcher/shopapp/internal/shell"
	"github.com/mmeshcher/shopapp/internal/view"
)

const toastPollInterval = 250 * time.Millisecond

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.ParseClient()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	client, err := api.NewClient(cfg.BaseURL, cfg.RequestTimeout, logger)
	if err != nil {
		sugar.Fatalw("api client initialization error", "error", err.Error())
	}

	out := os.Stdout
	notifier := notify.Select(!cfg.PlainAlerts, out, logger)
	toasts, _ := notifier.(*notify.Toasts)

	bridge := gate.NewStaticBridge(cfg.InitData, out, logger)
	provider := bridge.Provider()

	store := cart.NewStore()
	page := view.NewPage()
	binder := view.NewBinder(store, page, notifier, view.NewTextRenderer(out), logger)
	flow := order.NewFlow(store, page, binder, client, notifier, shell.NewPrintNavigator(out, client.BaseURL()), cfg.NavigateDelay, logger)
	flows := forms.NewFlows(client, notifier, func() (forms.Alerter, bool) {
		b, ok := provider()
		if !ok {
			return nil, false
		}
		return b, true
	}, logger)

	sh := shell.New(shell.Deps{
		Catalog: client,
		Binder:  binder,
		Page:    page,
		Order:   flow,
		Forms:   flows,
		Toasts:  toasts,
	}, out, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	content := gate.NewContent(func() {
		fmt.Fprintln(out, "Приложение загружено. Введите help для списка команд.")
	})

	g := gate.New(client, provider, content,
		gate.WithDiagnostics(func(msg string) { fmt.Fprintln(out, msg) }),
		gate.WithBridgeTimeout(cfg.BridgeTimeout),
		gate.WithLogger(logger),
	)
	g.OnAfterLogin(func() {
		if err := sh.Preload(ctx); err != nil {
			sugar.Warnw("catalog preload failed", "error", err)
		}
	})

	if err := g.Run(ctx); err != nil {
		sugar.Fatalw("authorization failed", "state", g.State().String(), "error", err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer stop()
		if err := sh.Run(ctx, os.Stdin); err != nil {
			return fmt.Errorf("shell: %w", err)
		}
		return nil
	})

	// Уведомления от хука после входа и отложенного перехода появляются между командами
	eg.Go(func() error {
		return sh.WatchToasts(ctx, toastPollInterval)
	})

	if err := eg.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
	sugar.Info("bye")
}
