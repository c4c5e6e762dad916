package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ukydev/gps-telemetry-collector/internal/auth"
	"github.com/ukydev/gps-telemetry-collector/internal/collector"
	"github.com/ukydev/gps-telemetry-collector/internal/config"
	"github.com/ukydev/gps-telemetry-collector/internal/handlers"
	"github.com/ukydev/gps-telemetry-collector/internal/middleware"
	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/normalize"
	"github.com/ukydev/gps-telemetry-collector/internal/provider"
	"github.com/ukydev/gps-telemetry-collector/internal/publisher"
	"github.com/ukydev/gps-telemetry-collector/internal/scheduler"
	"github.com/ukydev/gps-telemetry-collector/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("collector exited: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, err := log.ParseLevel(settings.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.WithField("environment", settings.Environment).Info("Starting GPS telemetry collector")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, settings.MongoURI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.Info("Connected to MongoDB")

	db := client.Database(settings.MongoDBName)
	telemetryStore := store.NewMongoTelemetryStore(db, settings.TelemetryCollection, settings.RunLogCollection)
	if err := telemetryStore.EnsureIndexes(ctx, settings.TelemetryRetention, settings.RunLogRetention); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	vehicleStore := store.NewCachedVehicleStore(
		store.NewMongoVehicleStore(db, settings.VehicleCollection),
		settings.VehicleCacheTTL,
	)

	providerClient := newProviderClient(settings)
	normalizer := normalize.New(providerClient.Name(), settings.VoltageHealthyMinVolts)

	var recordPublisher collector.RecordPublisher
	if settings.MQTTBrokerURL != "" {
		mqttPub, err := publisher.NewMQTTPublisher(settings.MQTTBrokerURL, settings.MQTTClientID)
		if err != nil {
			return fmt.Errorf("connect MQTT publisher: %w", err)
		}
		defer mqttPub.Close()
		recordPublisher = mqttPub
	}

	sched := scheduler.New()
	limiter := rate.NewLimiter(rate.Limit(settings.RateLimitPerSecond), settings.RateLimitBurst)
	for _, reportType := range models.AllReportTypes {
		job := &collector.Job{
			Name:       string(reportType) + "_collection",
			ReportType: reportType,
			Provider:   providerClient,
			Normalizer: normalizer,
			Sink:       telemetryStore,
			Vehicles:   vehicleStore,
			Retry: &collector.RetryExecutor{
				MaxAttempts: settings.ProviderMaxRetries,
				BaseDelay:   settings.ProviderRetryBackoff,
				MaxDelay:    30 * time.Second,
				CallTimeout: settings.ProviderTimeout,
				Limiter:     limiter,
			},
			BatchSize:      settings.BatchSize,
			MaxConcurrency: int64(settings.MaxConcurrentRequests),
			Publisher:      recordPublisher,
		}
		spec := scheduler.JobSpec{
			Name:       job.Name,
			ReportType: reportType,
			Cron:       settings.JobCrons[reportType],
			Enabled:    true,
			Run:        job.Execute,
		}
		if err := sched.Register(spec); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}
	sched.Start()

	authService := auth.NewService(settings.JWTSecret, settings.OperatorUsername, settings.OperatorPasswordHash)
	server := &http.Server{
		Addr:    ":" + settings.HTTPPort,
		Handler: newRouter(sched, telemetryStore, providerClient, authService),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithField("port", settings.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP shutdown failed")
		}
		return sched.Stop(shutdownCtx)
	})

	return group.Wait()
}

func newProviderClient(settings *config.Settings) provider.Client {
	// Only the mock variant ships today; a live client plugs in behind the
	// same interface.
	return provider.NewMock(provider.MockOptions{
		SynthesizeUnknown: settings.MockSynthesizeUnknown,
		SimulateLatency:   settings.MockSimulateLatency,
	})
}

func newRouter(sched *scheduler.Scheduler, runLogs store.RunLogReader, providerClient provider.Client, authService *auth.Service) http.Handler {
	healthHandler := handlers.NewHealthHandler(providerClient)
	jobsHandler := handlers.NewJobsHandler(sched, runLogs)
	authHandler := handlers.NewAuthHandler(authService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/jobs", jobsHandler.List)
	mux.HandleFunc("POST /api/v1/jobs/{name}/pause", jobsHandler.Pause)
	mux.HandleFunc("POST /api/v1/jobs/{name}/resume", jobsHandler.Resume)
	mux.HandleFunc("GET /api/v1/jobs/{name}/history", jobsHandler.History)
	mux.HandleFunc("GET /api/v1/jobs/statistics", jobsHandler.Statistics)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	return authMiddleware.Authenticate(mux)
}
