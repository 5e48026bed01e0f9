package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wanderwalks/service-walks/internal/application"
	"github.com/wanderwalks/service-walks/internal/config"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	walkEvents "github.com/wanderwalks/service-walks/internal/events"
	"github.com/wanderwalks/service-walks/internal/geocode"
	"github.com/wanderwalks/service-walks/internal/handler"
	"github.com/wanderwalks/service-walks/internal/platform/kafka"
	"github.com/wanderwalks/service-walks/internal/platform/logger"
	"github.com/wanderwalks/service-walks/internal/platform/middleware"
	"github.com/wanderwalks/service-walks/internal/poi"
	"github.com/wanderwalks/service-walks/internal/repository"
	"github.com/wanderwalks/service-walks/internal/routing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.Server.AppEnv, "service-walks")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-walks",
		zap.Int("port", cfg.Server.Port),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.Server.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.WalkModel{},
			&repository.ParticipantModel{},
			&repository.WalkerStatsModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	walkRepo := repository.NewGormWalkRepository(db)
	statsRepo := repository.NewGormStatsRepository(db)

	// Initialize external data sources
	sourceTimeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second
	overpass := poi.NewOverpassClient(cfg.Sources.OverpassURL, cfg.Sources.UserAgent, sourceTimeout)
	wikipedia := poi.NewWikipediaClient(cfg.Sources.WikipediaAPIURL, cfg.Sources.WikipediaRESTURL, cfg.Sources.UserAgent, sourceTimeout)
	osrm := routing.NewOSRMClient(cfg.Sources.OSRMURL, cfg.Sources.UserAgent, sourceTimeout)
	nominatim := geocode.NewNominatimClient(cfg.Sources.NominatimURL, cfg.Sources.UserAgent, sourceTimeout)

	aggregator := poi.NewAggregator(overpass, wikipedia, poi.Options{
		RadiusCapMeters:     cfg.Route.RadiusCapMeters,
		MinViableCandidates: cfg.Route.MinViableCandidates,
		EnrichmentLimit:     cfg.Route.EnrichmentLimit,
		QuietMaxStops:       cfg.Route.QuietMaxStops,
		LivelyMaxStops:      cfg.Route.LivelyMaxStops,
		BalancedMaxStops:    cfg.Route.BalancedMaxStops,
	}, log)

	// Initialize application services
	defaultOrigin := &application.DefaultOrigin{
		Coordinate: route.Coordinate{
			Latitude:  cfg.Route.DefaultOriginLat,
			Longitude: cfg.Route.DefaultOriginLng,
		},
		Label: cfg.Route.DefaultOriginLabel,
	}
	routeService := application.NewRouteService(aggregator, osrm, nominatim, kafkaProducer, defaultOrigin, log)
	walkService := application.NewWalkService(walkRepo, kafkaProducer, log)
	sessionService := application.NewSessionService(kafkaProducer, cfg.Route.ArrivalThresholdMeters, log)
	statsService := application.NewStatsService(statsRepo, log)

	// Initialize and start the stats event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statsConsumer := walkEvents.NewStatsConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, statsRepo, log)
	defer func() { _ = statsConsumer.Close() }()

	go func() {
		log.Info("starting walk event consumer")
		if err := statsConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("walk event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(routeService)
	walkHandler := handler.NewWalkHandler(walkService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	statsHandler := handler.NewStatsHandler(statsService)
	healthHandler := handler.NewHealthHandler(db)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register routes
	healthHandler.RegisterRoutes(&router.RouterGroup)
	routeHandler.RegisterRoutes(&router.RouterGroup)
	walkHandler.RegisterRoutes(&router.RouterGroup)
	sessionHandler.RegisterRoutes(&router.RouterGroup)
	statsHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server. The write timeout bounds event streams too; SSE
	// clients reconnect when it closes a long-lived stream.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-walks...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-walks stopped")
}
