package di

import (
	"context"
	"fmt"
	"sync"

	"carebridge/internal/integrations"
	"carebridge/internal/session"
	sessionconfig "carebridge/internal/session/config"
	"carebridge/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns module lifecycles and shared connections.
type Container struct {
	mu sync.RWMutex

	SessionModule      *session.Module
	IntegrationsModule *integrations.Module

	MongoClient *mongo.Client
	RedisClient *redis.Client

	SessionConfig *sessionconfig.Config
	Logger        logger.Logger
}

// NewContainer creates an empty DI container.
func NewContainer(log logger.Logger) *Container {
	return &Container{Logger: log}
}

// InitializeSession builds the session module. mongoDB and redisClient may be
// nil depending on configuration.
func (c *Container) InitializeSession(cfg *sessionconfig.Config, mongoClient *mongo.Client, mongoDB *mongo.Database, redisClient *redis.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SessionConfig = cfg
	c.MongoClient = mongoClient
	c.RedisClient = redisClient

	mod, err := session.NewModule(cfg, c.Logger, mongoDB, redisClient)
	if err != nil {
		return fmt.Errorf("failed to create session module: %w", err)
	}
	c.SessionModule = mod
	return nil
}

// InitializeIntegrations builds the integrations module.
func (c *Container) InitializeIntegrations() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mod, err := integrations.NewModule(c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create integrations module: %w", err)
	}
	c.IntegrationsModule = mod
	return nil
}

// GetSessionModule returns the initialized session module.
func (c *Container) GetSessionModule() *session.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SessionModule
}

// GetIntegrationsModule returns the initialized integrations module.
func (c *Container) GetIntegrationsModule() *integrations.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.IntegrationsModule
}

// HealthCheck verifies the shared backing services.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb unhealthy: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}
	return nil
}

// Close releases all container-owned resources.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.RedisClient = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
		c.MongoClient = nil
	}
	return firstErr
}
