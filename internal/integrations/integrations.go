package integrations

import (
	httpadapter "carebridge/internal/integrations/adapter/http"
	"carebridge/internal/integrations/assist"
	"carebridge/internal/integrations/config"
	"carebridge/internal/integrations/geocode"
	"carebridge/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Module wires the outbound integration clients and their HTTP surface.
type Module struct {
	Config  *config.Config
	Geocode *geocode.Client
	Assist  *assist.Client
	Handler *httpadapter.IntegrationsHandler
	Logger  logger.Logger
}

// NewModule creates and initializes the integrations module.
func NewModule(log logger.Logger) (*Module, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	geo := geocode.NewClient(cfg, log)
	as := assist.NewClient(cfg, log)
	if !as.Configured() {
		log.Warn("Assist API key not set, story and speech endpoints will answer 503")
	}

	return &Module{
		Config:  cfg,
		Geocode: geo,
		Assist:  as,
		Handler: httpadapter.NewIntegrationsHandler(geo, as, log),
		Logger:  log,
	}, nil
}

// RegisterRoutes mounts the integration routes on the router.
func (m *Module) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
}
