// Package main provides the main entry point for the carrier POS backend
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/amirphl/carrier-pos/app/handlers"
	"github.com/amirphl/carrier-pos/app/middleware"
	"github.com/amirphl/carrier-pos/app/router"
	"github.com/amirphl/carrier-pos/app/services"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/amirphl/carrier-pos/checkin"
	"github.com/amirphl/carrier-pos/config"
	"github.com/amirphl/carrier-pos/database"
	_ "github.com/amirphl/carrier-pos/docs"
	"github.com/amirphl/carrier-pos/events"
	"github.com/amirphl/carrier-pos/queue"
	"github.com/amirphl/carrier-pos/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	store     *database.Store
	stopFuncs []func()
}

func main() {
	initTemplate := flag.String("init-template", "", "create an empty store template database at the given path and exit")
	flag.Parse()

	if *initTemplate != "" {
		if err := createTemplateDatabase(context.Background(), *initTemplate); err != nil {
			log.Fatalf("Failed to create template database: %v", err)
		}
		log.Printf("Template database created at %s", *initTemplate)
		return
	}

	log.Println("Starting carrier POS application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCloser := configureLogging(cfg.Logging)
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	cancel()
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	if err := app.store.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}

	log.Println("Server stopped")
}

// configureLogging tees the standard logger into a rotating file when configured
func configureLogging(cfg config.LoggingConfig) io.Closer {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		log.Printf("Failed to create log directory, logging to stdout only: %v", err)
		return nil
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	} else {
		log.SetOutput(writer)
	}
	return writer
}

// initializeCache initializes the Redis client shared by the event bridge and verifies connectivity
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
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// startEventBridge relays bus events to the other terminals of the store through Redis
func startEventBridge(parent context.Context, client *redis.Client, bus *events.Bus, channel string) func() {
	bridgeCtx, cancel := context.WithCancel(parent)
	bridge := events.NewRedisBridge(client, bus, channel)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := bridge.Run(bridgeCtx); err != nil {
			log.Printf("Event bridge stopped: %v", err)
		}
	}()
	return func() {
		cancel()
		<-done
		_ = client.Close()
	}
}

// initializeApplication initializes the main application components
func initializeApplication(ctx context.Context, cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	store := database.NewStore(cfg.Database, database.WithLogLevel(cfg.Logging.Level))
	initCtx, initCancel := context.WithTimeout(ctx, time.Minute)
	if err := store.Initialize(initCtx); err != nil {
		// The API stays up; terminals retry through /api/v1/store/initialize
		log.Printf("Store initialization failed, serving in %s state: %v", store.State(), err)
	}
	initCancel()

	bus := events.NewBus()
	stopFuncs = append(stopFuncs, bus.Close)

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(ctx, rc, cfg.Cache.HealthCheckInterval))
		stopFuncs = append(stopFuncs, startEventBridge(ctx, rc, bus, cfg.Cache.EventsChannel()))
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(store)
	lineRepo := repository.NewLineRepository(store)
	deviceRepo := repository.NewDeviceRepository(store)
	deviceForSaleRepo := repository.NewDeviceForSaleRepository(store)

	var tokenService services.TokenService
	if cfg.Operator.AuthEnabled {
		tokenService, err = services.NewTokenService(
			cfg.JWT.AccessTokenTTL,
			cfg.JWT.RefreshTokenTTL,
			cfg.JWT.Issuer,
			cfg.JWT.Audience,
			cfg.JWT.UseRSAKeys,
			cfg.JWT.PrivateKey,
			cfg.JWT.PublicKey,
			cfg.JWT.SecretKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token service: %w", err)
		}
		log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)
	} else {
		log.Println("Operator authentication disabled")
	}

	// Initialize flows
	accountFlow := businessflow.NewAccountFlow(customerRepo, lineRepo, deviceRepo)
	lineFlow := businessflow.NewLineFlow(store, customerRepo, lineRepo, deviceRepo, accountFlow)
	inventoryFlow := businessflow.NewInventoryFlow(deviceRepo, lineRepo, deviceForSaleRepo)
	catalogFlow := businessflow.NewCatalogFlow()
	authFlow := businessflow.NewOperatorAuthFlow(cfg.Operator, tokenService)

	// Queue and check-in search
	manager := queue.NewManager(customerRepo)
	searches := checkin.NewRegistry(handlers.NameLookup(accountFlow), cfg.Queue.CheckInDebounce)
	manager.OnReset(searches.ResetAll)

	queueCtx, queueCancel := context.WithCancel(ctx)
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		manager.Run(queueCtx, bus, cfg.Queue.SubscriberBuffer)
	}()
	stopFuncs = append([]func(){func() {
		queueCancel()
		<-queueDone
	}}, stopFuncs...)

	queueFlow := businessflow.NewQueueFlow(manager, bus, accountFlow)

	// Initialize handlers
	timeout := handlers.WithRequestTimeout(cfg.Server.RequestTimeout)
	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Store:     handlers.NewStoreHandler(store, timeout),
		Auth:      handlers.NewAuthHandler(authFlow, timeout),
		CheckIn:   handlers.NewCheckInHandler(searches, queueFlow, catalogFlow, timeout),
		Queue:     handlers.NewQueueHandler(queueFlow, timeout),
		Account:   handlers.NewAccountHandler(accountFlow, lineFlow, timeout),
		Inventory: handlers.NewInventoryHandler(inventoryFlow, timeout),
		Catalog:   handlers.NewCatalogHandler(catalogFlow, timeout),
	}, middleware.NewAuthMiddleware(tokenService, cfg.Operator.AuthEnabled))

	fiberRouter := appRouter.(*router.FiberRouter)
	return &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		store:     store,
		stopFuncs: stopFuncs,
	}, nil
}

// createTemplateDatabase writes an empty store database that new terminals are provisioned from
func createTemplateDatabase(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open template database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.CreateCoreSchema(ctx, db)
}
