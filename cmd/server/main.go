package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/app"
	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/internal/scheduler"
	"github.com/mamadbah2/decentfoods/internal/server/handlers"
	"github.com/mamadbah2/decentfoods/internal/server/router"
	commandsvc "github.com/mamadbah2/decentfoods/internal/service/commands"
	whatsappsvc "github.com/mamadbah2/decentfoods/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/decentfoods/pkg/clients/whatsapp"
	"github.com/mamadbah2/decentfoods/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	application, err := app.New(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to wire application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	header := application.ExportHeader()
	routes := router.Handlers{
		Reports: handlers.NewReportsHandler(application.Reporting, header, baseLogger.Named("handlers.reports")),
		Ledger:  handlers.NewLedgerHandler(application.Ledger, header, baseLogger.Named("handlers.ledger")),
		Records: handlers.NewRecordsHandler(application.Bookkeeping, baseLogger.Named("handlers.records")),
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(application.Reporting, application.Ledger, cfg.Business.Currency, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, baseLogger.Named("svc.whatsapp"))
		routes.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		if cfg.WhatsApp.ManagerID != "" {
			notifier = messagingSvc
		} else {
			baseLogger.Warn("WHATSAPP_MANAGER_ID missing, weekly reports will only be archived")
		}
	} else {
		baseLogger.Warn("whatsapp credentials missing, webhook and notifications disabled")
	}

	routes.AllowedOrigins = cfg.Server.AllowedOrigins
	engine := router.New(routes, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, application.Reporting, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to create scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
