package session

import (
	"context"
	"errors"

	httpadapter "carebridge/internal/session/adapter/http"
	redispersistence "carebridge/internal/session/adapter/persistence"
	memorypersistence "carebridge/internal/session/adapter/persistence/memory"
	mongodbpersistence "carebridge/internal/session/adapter/persistence/mongodb"
	"carebridge/internal/session/adapter/security"
	"carebridge/internal/session/config"
	"carebridge/internal/session/domain/repository"
	"carebridge/internal/session/usecase"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module wires the care session domain: storage, usecases and the HTTP
// surface. The Mongo and Redis clients are optional; with neither, sessions
// live in process memory and alert replay is disabled.
type Module struct {
	Config          *config.Config
	Repo            repository.SessionRepository
	TokenService    *security.JWTokenService
	SessionUsecase  usecase.SessionUsecase
	ResourceUsecase usecase.ResourceUsecase
	AlertUsecase    usecase.AlertUsecase
	RealtimeUsecase usecase.RealtimeUsecase
	EventBus        *eventbus.EventBus
	Handler         *httpadapter.HTTPHandler
	Logger          logger.Logger

	RedisClient *redis.Client
	EventStore  usecase.EventStore
}

// NewModule creates and initializes the session module.
func NewModule(cfg *config.Config, log logger.Logger, mongoDB *mongo.Database, redisClient *redis.Client) (*Module, error) {
	log.Info("Initializing session module...")

	bus := eventbus.NewEventBus(log)

	var repo repository.SessionRepository
	switch cfg.StorageDriver {
	case config.DriverMongoDB:
		if mongoDB == nil {
			return nil, errors.New("storage driver is mongodb but no database connection was provided")
		}
		mongoRepo := mongodbpersistence.NewSessionRepository(mongoDB, log)
		if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
			return nil, err
		}
		repo = mongoRepo
	case config.DriverMemory:
		repo = memorypersistence.NewSessionRepository()
	default:
		return nil, errors.New("unknown storage driver: " + cfg.StorageDriver)
	}
	log.Infof("Session repository initialized (driver=%s)", cfg.StorageDriver)

	tokens, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, err
	}

	var eventStore usecase.EventStore
	var realtimeUC usecase.RealtimeUsecase
	if redisClient != nil {
		eventStore = redispersistence.NewRedisEventStore(redisClient, log)
		realtimeUC = usecase.NewRealtimeUsecaseWithEventStore(eventStore, log)
		log.Info("Alert event store initialized (redis streams)")
	} else {
		realtimeUC = usecase.NewRealtimeUsecase(log)
		log.Info("Alert replay disabled, no redis address configured")
	}

	sessionUC := usecase.NewSessionUsecase(repo, tokens, bus, log)
	resourceUC := usecase.NewResourceUsecase(repo, bus, log)
	alertUC := usecase.NewAlertUsecase(repo, realtimeUC, bus, log)

	handler := httpadapter.NewHTTPHandler(sessionUC, resourceUC, alertUC, realtimeUC, tokens, log, cfg.RequireAuth)

	log.Info("Session module initialized successfully")
	return &Module{
		Config:          cfg,
		Repo:            repo,
		TokenService:    tokens,
		SessionUsecase:  sessionUC,
		ResourceUsecase: resourceUC,
		AlertUsecase:    alertUC,
		RealtimeUsecase: realtimeUC,
		EventBus:        bus,
		Handler:         handler,
		Logger:          log,
		RedisClient:     redisClient,
		EventStore:      eventStore,
	}, nil
}

// RegisterRoutes mounts the session API on the router (the /api/v1 group).
func (m *Module) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
}

// Stop releases module resources. The Mongo and Redis clients are owned by
// the caller, so there is nothing to close here yet.
func (m *Module) Stop() error {
	return nil
}
