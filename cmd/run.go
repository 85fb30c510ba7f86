package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"reelspin/api"
	"reelspin/config"
	"reelspin/database"
	"reelspin/events"
	"reelspin/infrastructure"
	"reelspin/infrastructure/observability"
	"reelspin/models"
	"reelspin/notifier"
	"reelspin/repository"
	"reelspin/rpc"
	"reelspin/service"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting reelspin...")

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Database
	log.Info("Connecting to database...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	metrics.Subscribe(eventBus)

	// Policy
	schedule := config.DefaultSchedule()
	if cfg.ScheduleFile != "" {
		schedule, err = config.LoadSchedule(cfg.ScheduleFile)
		if err != nil {
			return fmt.Errorf("failed to load schedule: %w", err)
		}
	}
	initialPolicy := models.DefaultWinPolicy(schedule)
	initialPolicy.HouseWinCap = cfg.HouseWinCap

	policyService := service.NewPolicyService(initialPolicy, repository.NewPolicyRepository(db), eventBus)
	if err := policyService.Load(ctx); err != nil {
		log.WithError(err).Warn("Using default outcome policy")
	}

	// Services
	spinLogService := service.NewSpinLogService(uowFactory, policyService)
	ledgerService := service.NewLedgerService(uowFactory, spinLogService, cfg.StartingBalance)

	var decisions service.DecisionProvider
	if cfg.DecisionServiceAddr != "" {
		client, err := rpc.Dial(cfg.DecisionServiceAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		decisions = client
		log.WithField("addr", cfg.DecisionServiceAddr).Info("Using remote decision service")
	} else {
		decisions = service.NewLocalDecisionProvider(policyService, service.NewOutcomeService(service.DefaultRandom()), spinLogService)
	}

	controller := service.NewSpinController(ledgerService, decisions, service.NewSymbolMapper(service.DefaultRandom()), eventBus, service.SpinControllerConfig{
		DecisionTimeout: cfg.DecisionTimeout,
		AutoSpinDelay:   cfg.AutoSpinDelay,
		TurboSpinDelay:  cfg.TurboSpinDelay,
	})

	stopSync := service.NewBalanceSyncWorker(ledgerService, policyService, cfg.BalanceSyncInterval).Start(ctx)

	// Event fan-out
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			log.WithError(err).Warn("NATS unavailable, domain events will not be exported")
			natsClient = nil
		} else {
			publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
			if err := publisher.EnsureDomainEventStream(natsClient); err != nil {
				log.WithError(err).Warn("Failed to ensure event stream")
			}
			publisher.OnPublished(metrics.RecordNATSMessagePublished)
			publisher.Forward(eventBus)
		}
	}

	if cfg.DiscordWebhookURL != "" {
		poster, err := notifier.NewWebhookPoster(cfg.DiscordWebhookURL)
		if err != nil {
			log.WithError(err).Warn("Big win announcements disabled")
		} else {
			notifier.NewBigWinNotifier(poster, cfg.BigWinThreshold).Subscribe(eventBus)
		}
	}

	// Transports
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Ledger:     ledgerService,
			Policy:     policyService,
			Decisions:  decisions,
			Controller: controller,
			SpinLog:    spinLogService,
			Metrics:    metrics,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}
		grpcServer = rpc.NewGRPCServer(decisions)
		go func() {
			log.WithField("addr", cfg.GRPCAddr).Info("Decision gRPC server listening")
			if err := grpcServer.Serve(listener); err != nil {
				errCh <- fmt.Errorf("grpc server failed: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down HTTP server")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	controller.Shutdown()
	stopSync()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return runErr
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
