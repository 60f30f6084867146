package http

import (
	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/session/domain/model"

	"github.com/gofiber/fiber/v2"
)

// handleUsecaseError maps usecase errors onto the API's error envelope.
func (h *HTTPHandler) handleUsecaseError(c *fiber.Ctx, err error, fallback string) error {
	if apperrors.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "session_not_found",
			"message": "No session exists for this reference code",
		})
	}
	if apperrors.IsValidation(err) {
		resp := fiber.Map{
			"error":   "validation_failed",
			"message": err.Error(),
		}
		if appErr, ok := err.(*apperrors.AppError); ok && len(appErr.Details) > 0 {
			resp["details"] = appErr.Details
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   fallback,
		"message": err.Error(),
	})
}

// CreateSession allocates a fresh session and returns its reference code.
func (h *HTTPHandler) CreateSession(c *fiber.Ctx) error {
	code, err := h.SessionUC.CreateSession(c.UserContext())
	if err != nil {
		h.Log.Error("Failed to create session", "error", err)
		return h.handleUsecaseError(c, err, "create_session_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"referenceCode": code,
	})
}

type loginRequest struct {
	ReferenceCode string `json:"referenceCode"`
}

// Login resolves a reference code into the session snapshot plus a caregiver
// token for the dashboard.
func (h *HTTPHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}

	s, token, err := h.SessionUC.Login(c.UserContext(), normalizeCode(req.ReferenceCode))
	if err != nil {
		h.Log.Warn("Login failed", "refCode", req.ReferenceCode, "error", err)
		return h.handleUsecaseError(c, err, "login_failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    s,
	})
}

// GetSnapshot returns the full session document. Unknown codes get the empty
// shape so a watch with a stale code keeps polling without erroring.
func (h *HTTPHandler) GetSnapshot(c *fiber.Ctx) error {
	s, err := h.SessionUC.GetSnapshot(c.UserContext(), refCode(c))
	if err != nil {
		h.Log.Error("Failed to load session snapshot", "refCode", refCode(c), "error", err)
		return h.handleUsecaseError(c, err, "get_session_failed")
	}
	return c.JSON(s)
}

// UpdateProfile merges non-empty fields of the payload into the profile.
func (h *HTTPHandler) UpdateProfile(c *fiber.Ctx) error {
	var update model.PatientProfile
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}

	profile, err := h.SessionUC.UpdateProfile(c.UserContext(), refCode(c), update)
	if err != nil {
		return h.handleUsecaseError(c, err, "update_profile_failed")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}

// SetHomeLocation replaces the stored home location.
func (h *HTTPHandler) SetHomeLocation(c *fiber.Ctx) error {
	var loc model.HomeLocation
	if err := c.BodyParser(&loc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}

	if err := h.SessionUC.SetHomeLocation(c.UserContext(), refCode(c), loc); err != nil {
		return h.handleUsecaseError(c, err, "set_home_location_failed")
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetWatchChargingTime returns the charging time, "22:00" for unknown codes.
func (h *HTTPHandler) GetWatchChargingTime(c *fiber.Ctx) error {
	t, err := h.SessionUC.GetWatchChargingTime(c.UserContext(), refCode(c))
	if err != nil {
		return h.handleUsecaseError(c, err, "get_watch_charging_failed")
	}
	return c.JSON(fiber.Map{"time": t})
}

type watchChargingRequest struct {
	Time string `json:"time"`
}

// SetWatchChargingTime validates and stores the HH:MM charging time.
func (h *HTTPHandler) SetWatchChargingTime(c *fiber.Ctx) error {
	var req watchChargingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}

	t, err := h.SessionUC.SetWatchChargingTime(c.UserContext(), refCode(c), req.Time)
	if err != nil {
		return h.handleUsecaseError(c, err, "set_watch_charging_failed")
	}
	return c.JSON(fiber.Map{"success": true, "time": t})
}
