// Package main is the entry point for the marketing operations service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AiiMS-Group/landbot/app/handlers"
	"github.com/AiiMS-Group/landbot/app/router"
	"github.com/AiiMS-Group/landbot/app/scheduler"
	"github.com/AiiMS-Group/landbot/app/services"
	businessflow "github.com/AiiMS-Group/landbot/business_flow"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/models"
	"github.com/AiiMS-Group/landbot/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application holds all application dependencies
type Application struct {
	router    router.Router
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting marketing operations service...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Client{},
		&models.BudgetMutation{},
		&models.StatusMutation{},
		&models.Statistic{},
		&models.ScheduledMutation{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Redis cache connection established")
	return rc, nil
}

// initializeApplication wires repositories, upstream services, business
// flows, background schedulers, and the HTTP router together.
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		// The cache is an optimization; run without it rather than refusing to start.
		log.Printf("Cache unavailable, continuing without it: %v", err)
		rc = nil
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	// Repositories
	clientRepo := repository.NewClientRepository(db)
	budgetRepo := repository.NewBudgetMutationRepository(db)
	statusRepo := repository.NewStatusMutationRepository(db)
	statRepo := repository.NewStatisticRepository(db)
	schedRepo := repository.NewScheduledMutationRepository(db)

	// Upstream services
	adsService := services.NewGoogleAdsService(cfg.GoogleAds, log.Default())
	callsService := services.NewWildJarService(cfg.WildJar)
	crmService := services.NewFreshSalesService(cfg.FreshSales)
	chatService := services.NewLandBotService(cfg.LandBot)

	// Business flows
	aggregator := businessflow.NewMetricAggregator(adsService)
	mutationFlow := businessflow.NewMutationFlow(
		crmService, adsService, aggregator,
		clientRepo, budgetRepo, statusRepo, schedRepo,
		db, rc, cfg.Cache, location, log.Default(),
	)
	statsFlow := businessflow.NewStatisticsFlow(
		crmService, callsService, aggregator,
		clientRepo, statRepo,
		rc, cfg.Cache, location, log.Default(),
	)
	enquiryFlow := businessflow.NewEnquiryFlow(
		crmService, callsService, chatService, aggregator,
		cfg.LandBot, location, log.Default(),
	)

	// Background schedulers
	revertScheduler := scheduler.NewRevertScheduler(schedRepo, adsService, cfg.Scheduler, cfg.Logging)
	stopFuncs = append(stopFuncs, revertScheduler.Start(context.Background()))

	notifier := scheduler.NewEnquiryNotifier(enquiryFlow, cfg.Scheduler, cfg.Logging)
	stopFuncs = append(stopFuncs, notifier.Start(context.Background()))

	// HTTP layer
	adsHandler := handlers.NewAdsHandler(mutationFlow)
	statsHandler := handlers.NewStatisticsHandler(statsFlow)
	r := router.NewFiberRouter(cfg.Server, adsHandler, statsHandler)

	return &Application{
		router:    r,
		server:    r.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
