package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"cinetrack/internal/catalog"
	"cinetrack/internal/config"
	"cinetrack/internal/database"
	"cinetrack/internal/events"
	"cinetrack/internal/handler"
	"cinetrack/internal/metrics"
	"cinetrack/internal/repository"
	"cinetrack/internal/service"
	"cinetrack/internal/tmdb"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Redis (non-fatal if unavailable unless it is the state store)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		if cfg.Store.Driver == "redis" {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Warn("Redis unavailable, running without catalog cache", "error", err)
		rdb = nil
	}

	base, closeStore, err := openStore(cfg, rdb)
	if err != nil {
		slog.Error("failed to open device store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID, err = repository.DeviceID(ctx, base)
		if err != nil {
			slog.Error("failed to resolve device id", "error", err)
			os.Exit(1)
		}
	}
	store := repository.Namespaced(base, deviceID)

	// Catalog: TMDB behind the Redis cache
	var svc catalog.Service = tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.Options{
		Language:  cfg.TMDB.Language,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
		Observer:  metrics.RecordCatalogRequest,
	})
	if rdb != nil && cfg.CatalogCacheEnabled {
		svc = catalog.NewCachedService(svc, rdb)
	}

	bus := events.NewBus()
	bus.Subscribe(events.LogEvent)
	bus.Subscribe(metrics.ObserveEvent)

	device, err := service.NewDeviceService(ctx, service.Deps{
		DeviceID: deviceID,
		Catalog:  svc,
		Store:    store,
		Emitter:  bus,
	})
	if err != nil {
		slog.Error("failed to load device state", "error", err)
		os.Exit(1)
	}
	if err := device.Startup(ctx); err != nil {
		slog.Error("startup streak check failed", "error", err)
	}
	go device.RunStreakWatcher(ctx, cfg.StreakCheckInterval)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "cinetrack",
		ServerHeader: "cinetrack",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	handler.NewDeviceHandler(device).Routes(app.Group("/api/v1"))

	go func() {
		addr := net.JoinHostPort(cfg.Host, cfg.Port)
		slog.Info("starting cinetrack", "addr", addr, "device_id", deviceID, "store", cfg.Store.Driver)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down cinetrack...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	slog.Info("cinetrack shutdown complete")
}

// openStore opens the configured key-value backend. The returned func
// releases it.
func openStore(cfg *config.Config, rdb *redis.Client) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case "badger":
		db, err := database.OpenBadger(cfg.Store.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewBadgerStore(db), closer("badger", db), nil
	case "postgres":
		db, err := database.NewPostgres(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(db), closer("postgres", db), nil
	case "redis":
		// rdb is closed on shutdown with the cache connection.
		return repository.NewRedisStore(rdb), func() {}, nil
	default:
		slog.Warn("using in-memory store, device state will not survive a restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

func closer(name string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Error("error closing store", "driver", name, "error", err)
		}
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
