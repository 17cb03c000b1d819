package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gin-gonic/gin"
	controller "github.com/nfredmond/project-manager/controller"
	"github.com/nfredmond/project-manager/initializers"
	service "github.com/nfredmond/project-manager/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	bootstrap, err := initializers.NewLogger("info")
	if err != nil {
		log.Fatalf("[CRITICAL] Failed to build logger: %s", err)
	}
	if err := initializers.LoadEnv(bootstrap); err != nil {
		bootstrap.Fatal("failed to load env", zap.Error(err))
	}
	cfg, err := initializers.LoadConfig()
	if err != nil {
		bootstrap.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := initializers.NewLogger(cfg.LogLevel)
	if err != nil {
		bootstrap.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	db, err := initializers.ConnectDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize database connection", zap.Error(err))
	}
	if cfg.RunMigrations {
		if err := initializers.Migrate(db, cfg.MigrationsPath, logger); err != nil {
			logger.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	notifier := service.NewEventNotifier(service.NotifierOptions{
		SlackWebhookURL: cfg.Notifications.SlackWebhookURL,
		SMTPHost:        cfg.Notifications.SMTPHost,
		SMTPPort:        cfg.Notifications.SMTPPort,
		SMTPUsername:    cfg.Notifications.SMTPUsername,
		SMTPPassword:    cfg.Notifications.SMTPPassword,
		FromEmail:       cfg.Notifications.FromEmail,
		AlertRecipient:  cfg.Notifications.AlertRecipient,
		Timeout:         cfg.Notifications.Timeout,
	}, metrics, logger)
	agency := service.NewAgencyService(db, notifier, metrics, logger, cfg.AppURL)

	var s3Client s3iface.S3API
	if cfg.Storage.Enabled() {
		s3Client, err = service.NewS3Client(service.StorageOptions{
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		})
		if err != nil {
			logger.Fatal("failed to initialize document storage", zap.Error(err))
		}
	} else {
		logger.Warn("document storage not configured; uploads are disabled")
	}
	esClient, err := service.NewSearchClient(cfg.Search.ElasticsearchURL)
	if err != nil {
		logger.Warn("search index unavailable; using database search", zap.Error(err))
	}
	documents := service.NewDocumentService(db, s3Client, esClient, cfg.Storage.Bucket, cfg.Search.Index, logger)

	ai := service.NewAIService(db, service.AIOptions{
		APIKey:        cfg.AI.APIKey,
		Endpoint:      cfg.AI.Endpoint,
		Model:         cfg.AI.Model,
		Timeout:       cfg.AI.Timeout,
		MaxRetries:    cfg.AI.MaxRetries,
		RetryDelay:    cfg.AI.RetryDelay,
		RatePerMinute: cfg.AI.RatePerMin,
	}, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	ctrl := controller.NewAgencyController(agency, documents, ai, cfg.DefaultTenantSlug, logger)
	router := controller.NewRouter(ctrl, controller.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		DigestToken: cfg.DigestToken,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,
		Gatherer:    registry,
		Logger:      logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
