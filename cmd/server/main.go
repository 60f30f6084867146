package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebridge/internal/di"
	sessionconfig "carebridge/internal/session/config"
	"carebridge/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`

	// Photos and voice notes travel as base64 JSON fields, so bodies get big.
	BodyLimitMB int `env:"BODY_LIMIT_MB" envDefault:"50"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()

	sessionCfg, err := sessionconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load session configuration: %v", err)
	}

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// MongoDB is only dialed when the session store uses it.
	var mongoClient *mongo.Client
	var mongoDB *mongo.Database
	if sessionCfg.StorageDriver == sessionconfig.DriverMongoDB {
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(sessionCfg.MongoDBURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			log.Fatalf("Failed to ping MongoDB: %v", err)
		}
		mongoDB = mongoClient.Database(sessionCfg.DatabaseName)
		appLogger.Info("MongoDB connection established successfully")
	} else {
		appLogger.Info("Using in-memory session store")
	}

	// Redis backs alert replay for the websocket stream; optional.
	var redisClient *redis.Client
	if sessionCfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     sessionCfg.RedisAddr,
			Password: sessionCfg.RedisPassword,
			DB:       sessionCfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}
		appLogger.Info("Redis connection established successfully")
	}

	if err := container.InitializeSession(sessionCfg, mongoClient, mongoDB, redisClient); err != nil {
		log.Fatalf("Failed to initialize session module: %v", err)
	}
	appLogger.Info("Session module initialized successfully")

	if err := container.InitializeIntegrations(); err != nil {
		log.Fatalf("Failed to initialize integrations module: %v", err)
	}
	appLogger.Info("Integrations module initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "CareBridge API v1.0",
		BodyLimit:    serverCfg.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			appLogger.Errorf("HTTP Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
			"storage":   sessionCfg.StorageDriver,
		})
	})

	api := app.Group("/api/v1")
	container.GetSessionModule().RegisterRoutes(api)
	container.GetIntegrationsModule().RegisterRoutes(api)
	appLogger.Info("API routes registered")

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
