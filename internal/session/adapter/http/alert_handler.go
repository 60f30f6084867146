package http

import (
	"carebridge/internal/session/domain/model"
	"carebridge/internal/session/usecase"

	"github.com/gofiber/fiber/v2"
)

func (h *HTTPHandler) registerAlertRoutes(router fiber.Router) {
	alerts := router.Group("/alerts")

	alerts.Post("/sos", h.emitAlert(model.AlertKindSOS))
	alerts.Post("/lost", h.emitAlert(model.AlertKindLost))
	alerts.Post("/unknown-person", h.emitAlert(model.AlertKindUnknownPerson))
	alerts.Post("/missed-medicine", h.emitAlert(model.AlertKindMissedMedicine))
	alerts.Post("/live-location", h.emitAlert(model.AlertKindLiveLocation))

	alerts.Get("/sos", h.listAlertGroup(func(hist *usecase.AlertHistory) []model.Alert { return hist.SOSAlerts }))
	alerts.Get("/lost", h.listAlertGroup(func(hist *usecase.AlertHistory) []model.Alert { return hist.LostAlerts }))
	alerts.Get("/security", h.listAlertGroup(func(hist *usecase.AlertHistory) []model.Alert { return hist.SecurityAlerts }))
	alerts.Get("/missed-medicines", h.listAlertGroup(func(hist *usecase.AlertHistory) []model.Alert { return hist.MissedMedicines }))
}

// emitAlert returns a handler that records an alert of one kind. Emission is
// the patient-safety path: it answers success even when the session is
// unknown or storage is down, so the device never retries into a loop.
func (h *HTTPHandler) emitAlert(kind model.AlertKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecase.EmitAlertRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequestBody(c)
			}
		}

		alert, err := h.AlertUC.Emit(c.UserContext(), refCode(c), kind, req)
		if err != nil {
			return h.handleUsecaseError(c, err, "emit_alert_failed")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    alert,
		})
	}
}

func (h *HTTPHandler) listAlertGroup(pick func(*usecase.AlertHistory) []model.Alert) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hist, err := h.AlertUC.History(c.UserContext(), refCode(c))
		if err != nil {
			return h.handleUsecaseError(c, err, "list_alerts_failed")
		}
		group := pick(hist)
		if group == nil {
			group = []model.Alert{}
		}
		return c.JSON(fiber.Map{"success": true, "data": group})
	}
}
