package http

import (
	"carebridge/internal/session/adapter/security"
	"carebridge/internal/session/usecase"
	"carebridge/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// HTTPHandler exposes the care session REST API. Routes hang off
// /api/v1/sessions/:code, with the reference code as the only addressing
// scheme for session data.
type HTTPHandler struct {
	SessionUC  usecase.SessionUsecase
	ResourceUC usecase.ResourceUsecase
	AlertUC    usecase.AlertUsecase
	RealtimeUC usecase.RealtimeUsecase
	Tokens     *security.JWTokenService
	Log        logger.Logger

	// RequireAuth gates mutating routes behind a caregiver token whose
	// refCode claim matches the path code.
	RequireAuth bool
}

// NewHTTPHandler creates the session HTTP handler.
func NewHTTPHandler(
	sessionUC usecase.SessionUsecase,
	resourceUC usecase.ResourceUsecase,
	alertUC usecase.AlertUsecase,
	realtimeUC usecase.RealtimeUsecase,
	tokens *security.JWTokenService,
	log logger.Logger,
	requireAuth bool,
) *HTTPHandler {
	return &HTTPHandler{
		SessionUC:   sessionUC,
		ResourceUC:  resourceUC,
		AlertUC:     alertUC,
		RealtimeUC:  realtimeUC,
		Tokens:      tokens,
		Log:         log,
		RequireAuth: requireAuth,
	}
}

// RegisterRoutes registers all session API routes on the router, which is
// expected to be the /api/v1 group.
func (h *HTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sessions", h.CreateSession)
	router.Post("/login", h.Login)

	session := router.Group("/sessions/:code", ReferenceCodeMiddleware())

	session.Get("/", h.GetSnapshot)
	session.Post("/profile", h.authGuard(), h.UpdateProfile)
	session.Post("/home-location", h.authGuard(), h.SetHomeLocation)
	session.Get("/watch-charging", h.GetWatchChargingTime)
	session.Post("/watch-charging", h.authGuard(), h.SetWatchChargingTime)

	h.registerResourceRoutes(session)
	h.registerAlertRoutes(session)
	h.registerStreamRoutes(session)
}
