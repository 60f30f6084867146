package http

import (
	"errors"
	"strconv"

	"carebridge/internal/integrations/assist"
	"carebridge/internal/integrations/geocode"
	"carebridge/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// IntegrationsHandler exposes the outbound proxy endpoints: reverse
// geocoding for the lost-alert map and the assist story/speech helpers.
type IntegrationsHandler struct {
	Geocode *geocode.Client
	Assist  *assist.Client
	Log     logger.Logger
}

// NewIntegrationsHandler creates the integrations HTTP handler.
func NewIntegrationsHandler(geo *geocode.Client, as *assist.Client, log logger.Logger) *IntegrationsHandler {
	return &IntegrationsHandler{
		Geocode: geo,
		Assist:  as,
		Log:     log,
	}
}

// RegisterRoutes mounts the integration routes on the /api/v1 group.
func (h *IntegrationsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/maps/location/:lat/:lng", h.ReverseGeocode)
	router.Post("/assist/story", h.GenerateStory)
	router.Post("/assist/speech", h.Speech)
}

// ReverseGeocode resolves a coordinate to human-readable addresses.
func (h *IntegrationsHandler) ReverseGeocode(c *fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Params("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Params("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_coordinates",
			"message": "lat and lng must be decimal numbers",
		})
	}

	addresses, err := h.Geocode.Reverse(c.UserContext(), lat, lng)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "geocode_failed",
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"addresses": addresses})
}

type storyRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateStory proxies memory-story generation.
func (h *IntegrationsHandler) GenerateStory(c *fiber.Ctx) error {
	var req storyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_prompt",
			"message": "prompt is required",
		})
	}

	story, err := h.Assist.GenerateStory(c.UserContext(), req.Prompt)
	if err != nil {
		return h.assistError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "story": story})
}

type speechRequest struct {
	Text string `json:"text"`
}

// Speech proxies text-to-speech and streams back MP3 audio.
func (h *IntegrationsHandler) Speech(c *fiber.Ctx) error {
	var req speechRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_text",
			"message": "text is required",
		})
	}

	audio, err := h.Assist.Speech(c.UserContext(), req.Text)
	if err != nil {
		return h.assistError(c, err)
	}
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}

func (h *IntegrationsHandler) assistError(c *fiber.Ctx, err error) error {
	if errors.Is(err, assist.ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "assist_not_configured",
			"message": "No assist API key is configured",
		})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error":   "assist_failed",
		"message": err.Error(),
	})
}
