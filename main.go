package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/kafka"
	"storefront/pkg/lock"
	"storefront/pkg/rabbitmq"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	setLogLevel(cfg.LogLevel)

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// --- Event broker ---
	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("broker", cfg.EventsBroker).Msg("Failed to initialize event publisher")
	}
	defer closePublisher()

	// --- Exclusive sections ---
	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.LockBackend).Msg("Failed to initialize locker")
	}
	defer closeLocker()

	app := newApp(cfg, db, locker, publisher)

	// --- Start HTTP Server ---
	logger.Info().Str("port", cfg.AppPort).Str("database", cfg.DatabaseDriver).Str("broker", cfg.EventsBroker).Msg("Starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-quit
	logger.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("Server gracefully stopped")
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		logger.Warn().Str("level", level).Msg("Unknown LOG_LEVEL, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// newPublisher connects the configured broker. With "none" events are dropped.
func newPublisher(cfg *config.Config) (services.EventPublisher, func(), error) {
	switch cfg.EventsBroker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close RabbitMQ client")
			}
		}, nil
	case "kafka":
		publisher := kafka.NewPublisher(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close Kafka writer")
			}
		}, nil
	case "none":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported events broker %q", cfg.EventsBroker)
	}
}

// newLocker returns the in-process locker, or a redis one shared by every replica.
func newLocker(cfg *config.Config) (lock.Locker, func(), error) {
	switch cfg.LockBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return lock.NewRedisLocker(rdb, cfg.LockTTL), func() { rdb.Close() }, nil
	case "local":
		return lock.NewLocalLocker(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock backend %q", cfg.LockBackend)
	}
}

// newApp wires repositories, services and handlers into a fiber app.
func newApp(cfg *config.Config, db *gorm.DB, locker lock.Locker, publisher services.EventPublisher) *fiber.App {
	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)

	// --- Initialize Services ---
	notifications := services.NewNotificationService(notificationRepo, userRepo, wishlistRepo)
	svc := handlers.Services{
		Sessions:      services.NewSessionService(sessionRepo, userRepo),
		Users:         services.NewUserService(userRepo, notifications),
		Catalog:       services.NewCatalogService(productRepo, categoryRepo, notifications, publisher),
		Carts:         services.NewCartService(cartRepo, productRepo),
		Orders:        services.NewOrderService(orderRepo, cartRepo, notifications, publisher),
		Reviews:       services.NewReviewService(reviewRepo, productRepo, orderRepo, userRepo, notifications, locker, publisher),
		Wishlist:      services.NewWishlistService(wishlistRepo, productRepo, locker),
		Notifications: notifications,
	}

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{AppName: "storefront"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.APIKeyHeader,
	}))
	app.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit),
		Burst: cfg.RateBurst,
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			logger.Error().Err(err).Msg("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "down",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"events":   cfg.EventsBroker,
		})
	})

	// --- API Routes ---
	handlers.RegisterRoutes(app.Group("/api/v1"), svc, cfg.InternalAPIKey)

	return app
}
