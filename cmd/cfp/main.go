package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kevenbotelho/controle-pessoal/internal/amqp"
	"github.com/kevenbotelho/controle-pessoal/internal/cli"
	apphttp "github.com/kevenbotelho/controle-pessoal/internal/http"
	applog "github.com/kevenbotelho/controle-pessoal/internal/log"
	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg)
	defer store.Close()

	ctx := cli.SignalContext(logger)

	ledger := services.NewLedgerService(store, logger)
	caixinhas := services.NewCaixinhaService(store, ledger, logger)
	backup := services.NewBackupService(ledger, caixinhas, logger)

	if err := ledger.Reload(ctx); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	if err := caixinhas.Reload(ctx); err != nil {
		logger.Error("Failed to load caixinhas", "error", err)
		os.Exit(1)
	}

	// Alert publishing is optional: without an AMQP URL the scanner
	// only logs what it finds.
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP alert publishing enabled",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Warn("AMQP URL not configured, alert events will not be published")
	}

	srv := apphttp.NewServer(":"+cfg.Port, cfg.WriteRateLimit, ledger, caixinhas, backup)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		runAlertScanner(gctx, logger, cfg.ScanInterval, ledger, caixinhas, publisher)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// runAlertScanner periodically evaluates budget alerts and caixinha
// notifications and publishes each advisory as an event.
func runAlertScanner(ctx context.Context, logger *applog.Logger, interval time.Duration, ledger *services.LedgerService, caixinhas *services.CaixinhaService, publisher *amqp.Client) {
	scanLog := logger.WithComponent("alert-scanner")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scanLog.Info("Alert scanner started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			scanLog.Info("Alert scanner stopped")
			return
		case <-ticker.C:
			scanOnce(ctx, scanLog, ledger, caixinhas, publisher)
		}
	}
}

func scanOnce(ctx context.Context, logger *applog.Logger, ledger *services.LedgerService, caixinhas *services.CaixinhaService, publisher *amqp.Client) {
	alerts := ledger.BudgetAlerts(time.Now())
	notifications := caixinhas.Notifications()
	if len(alerts) == 0 && len(notifications) == 0 {
		return
	}

	logger.InfoContext(ctx, "Alert scan found advisories",
		"alertas", len(alerts), "notificacoes", len(notifications))

	if publisher == nil {
		return
	}

	for _, alert := range alerts {
		if err := publisher.PublishAlert(ctx, amqp.NewBudgetAlertEvent(alert)); err != nil {
			logger.WarnContext(ctx, "Failed to publish budget alert", "error", err)
		}
	}
	for _, n := range notifications {
		if err := publisher.PublishAlert(ctx, amqp.NewCaixinhaAlertEvent(n)); err != nil {
			logger.WarnContext(ctx, "Failed to publish caixinha notification", "error", err)
		}
	}
}
