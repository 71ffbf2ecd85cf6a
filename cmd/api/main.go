package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ciia-mx/leadflow/internal/actionlog"
	"github.com/ciia-mx/leadflow/internal/api/router"
	"github.com/ciia-mx/leadflow/internal/booking"
	appconfig "github.com/ciia-mx/leadflow/internal/config"
	"github.com/ciia-mx/leadflow/internal/directory"
	"github.com/ciia-mx/leadflow/internal/leads"
	"github.com/ciia-mx/leadflow/internal/notify"
	"github.com/ciia-mx/leadflow/internal/observability/metrics"
	"github.com/ciia-mx/leadflow/internal/outreach"
	"github.com/ciia-mx/leadflow/pkg/logging"
)

func main() {
	// Load .env in local development; in production the variables are set
	// directly in the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	dir, err := directory.New(directory.Config{
		BaseURL:         cfg.KommoBaseURL,
		AccessToken:     cfg.KommoAccessToken,
		PipelineID:      cfg.KommoPipelineID,
		StatusInitial:   cfg.KommoStatusInitial,
		StatusScheduled: cfg.KommoStatusScheduled,
		FieldCompany:    cfg.KommoFieldCompany,
		FieldService:    cfg.KommoFieldService,
		FieldSource:     cfg.KommoFieldSource,
		Timeout:         cfg.ProviderHTTPTimeout,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to configure directory client", "error", err)
		os.Exit(1)
	}

	mailer, err := notify.New(notify.Config{
		APIKey:     cfg.SendGridAPIKey,
		FromEmail:  cfg.SendGridFromEmail,
		FromName:   cfg.SendGridFromName,
		BookingURL: cfg.BookingURL,
	}, logger)
	if err != nil {
		logger.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	caller, err := outreach.New(outreach.Config{
		AccountSID:         cfg.TwilioAccountSID,
		AuthToken:          cfg.TwilioAuthToken,
		VoiceCallerID:      cfg.TwilioCallerID,
		WhatsAppFrom:       cfg.TwilioWhatsAppFrom,
		SMSFrom:            cfg.TwilioSMSFrom,
		DefaultCountryCode: cfg.DefaultCountryCode,
		BookingURL:         cfg.BookingURL,
		Timeout:            cfg.ProviderHTTPTimeout,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("failed to configure outreach client", "error", err)
		os.Exit(1)
	}

	actions := actionlog.New(cfg.ActionLogPath, logger)

	registry := prometheus.NewRegistry()
	leadMetrics := metrics.NewLeadMetrics(registry)

	orchestrator := leads.NewOrchestrator(dir, mailer, caller, actions, leadMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		LeadsHandler:   leads.NewHandler(orchestrator, logger),
		BookingHandler: booking.NewHandler(dir, actions, cfg.CalcomWebhookSecret, leadMetrics, logger),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
