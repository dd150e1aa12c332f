package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carepulse/intake-platform/cmd/mainconfig"
	"github.com/carepulse/intake-platform/internal/api/router"
	"github.com/carepulse/intake-platform/internal/appointment"
	"github.com/carepulse/intake-platform/internal/cache"
	appconfig "github.com/carepulse/intake-platform/internal/config"
	"github.com/carepulse/intake-platform/internal/notify"
	"github.com/carepulse/intake-platform/internal/observability/metrics"
	"github.com/carepulse/intake-platform/internal/patient"
	"github.com/carepulse/intake-platform/pkg/logging"
)

func main() {
	// Optional .env for local development; ignore absence.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting carepulse intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	appointmentStore := appointment.NewStore(dynamoClient, cfg.AppointmentsTable, logger)
	patientStore := patient.NewStore(dynamoClient, cfg.PatientsTable, logger)

	s3Client := s3.NewFromConfig(awsCfg)
	documentStore := patient.NewDocumentStore(s3Client, cfg.DocumentsBucket, logger)

	smsSender := notify.NewTelnyxSender(notify.TelnyxConfig{
		APIKey:             cfg.TelnyxAPIKey,
		MessagingProfileID: cfg.TelnyxMessagingProfileID,
		FromNumber:         cfg.TelnyxFromNumber,
		BaseURL:            cfg.TelnyxBaseURL,
	}, logger)

	var emailSender notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	case "sendgrid":
		emailSender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	default:
		logger.Info("email confirmations disabled")
	}

	notifyService := notify.NewService(smsSender, emailSender, patientStore, logger)

	adminCache := cache.NewAdminView(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TLS:      cfg.RedisTLS,
		TTL:      cfg.AdminCacheTTL,
	}, logger)
	if adminCache == nil {
		logger.Info("admin view cache disabled")
	}

	intakeMetrics := metrics.NewIntakeMetrics(nil)

	lifecycle := appointment.NewService(appointmentStore, notifyService, adminCache, intakeMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		AppointmentHandler: appointment.NewHandler(lifecycle, logger),
		DashboardHandler:   appointment.NewDashboardHandler(lifecycle, adminCache, intakeMetrics, logger),
		PatientHandler:     patient.NewHandler(patientStore, documentStore, notifyService, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminJWTSecret:     cfg.AdminJWTSecret,
	}
	r := router.New(routerCfg)

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

	// Wait for interrupt signal to gracefully shutdown the server
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
