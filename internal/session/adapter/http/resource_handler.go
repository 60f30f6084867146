package http

import (
	"carebridge/internal/session/domain/model"
	"carebridge/internal/session/usecase"

	"github.com/gofiber/fiber/v2"
)

func (h *HTTPHandler) registerResourceRoutes(router fiber.Router) {
	router.Get("/routine", h.ListRoutine)
	router.Post("/routine", h.authGuard(), h.CreateRoutine)
	router.Delete("/routine/:id", h.authGuard(), h.deleteEntity(model.ResourceRoutine))

	router.Get("/people", h.ListPeople)
	router.Post("/people", h.authGuard(), h.CreatePerson)
	router.Delete("/people/:id", h.authGuard(), h.deleteEntity(model.ResourcePeople))

	router.Get("/places", h.ListPlaces)
	router.Post("/places", h.authGuard(), h.CreatePlace)
	router.Delete("/places/:id", h.authGuard(), h.deleteEntity(model.ResourcePlaces))

	router.Get("/medicines", h.ListMedicines)
	router.Post("/medicines", h.authGuard(), h.CreateMedicine)
	router.Delete("/medicines/:id", h.authGuard(), h.deleteEntity(model.ResourceMedicines))
	router.Post("/medicines/:id/taken", h.MarkMedicineTaken)

	router.Get("/appointments", h.ListAppointments)
	router.Post("/appointments", h.authGuard(), h.CreateAppointment)
	router.Delete("/appointments/:id", h.authGuard(), h.deleteEntity(model.ResourceAppointments))

	router.Get("/contacts", h.ListContacts)
	router.Post("/contacts", h.authGuard(), h.CreateContact)
	router.Delete("/contacts/:id", h.authGuard(), h.deleteEntity(model.ResourceContacts))
}

func badRequestBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "invalid_request_body",
		"message": "Failed to parse request body",
	})
}

func (h *HTTPHandler) respondList(c *fiber.Ctx, data interface{}, err error, fallback string) error {
	if err != nil {
		h.Log.Error("Failed to list resource", "refCode", refCode(c), "error", err)
		return h.handleUsecaseError(c, err, fallback)
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func (h *HTTPHandler) respondCreated(c *fiber.Ctx, entity interface{}, err error, fallback string) error {
	if err != nil {
		return h.handleUsecaseError(c, err, fallback)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entity})
}

func (h *HTTPHandler) ListRoutine(c *fiber.Ctx) error {
	entries, err := h.ResourceUC.ListRoutine(c.UserContext(), refCode(c))
	return h.respondList(c, entries, err, "list_routine_failed")
}

func (h *HTTPHandler) CreateRoutine(c *fiber.Ctx) error {
	var req usecase.CreateRoutineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	entry, err := h.ResourceUC.CreateRoutine(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, entry, err, "create_routine_failed")
}

func (h *HTTPHandler) ListPeople(c *fiber.Ctx) error {
	people, err := h.ResourceUC.ListPeople(c.UserContext(), refCode(c))
	return h.respondList(c, people, err, "list_people_failed")
}

func (h *HTTPHandler) CreatePerson(c *fiber.Ctx) error {
	var req usecase.CreatePersonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	person, err := h.ResourceUC.CreatePerson(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, person, err, "create_person_failed")
}

func (h *HTTPHandler) ListPlaces(c *fiber.Ctx) error {
	places, err := h.ResourceUC.ListPlaces(c.UserContext(), refCode(c))
	return h.respondList(c, places, err, "list_places_failed")
}

func (h *HTTPHandler) CreatePlace(c *fiber.Ctx) error {
	var req usecase.CreatePlaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	place, err := h.ResourceUC.CreatePlace(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, place, err, "create_place_failed")
}

func (h *HTTPHandler) ListMedicines(c *fiber.Ctx) error {
	medicines, err := h.ResourceUC.ListMedicines(c.UserContext(), refCode(c))
	return h.respondList(c, medicines, err, "list_medicines_failed")
}

func (h *HTTPHandler) CreateMedicine(c *fiber.Ctx) error {
	var req usecase.CreateMedicineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	medicine, err := h.ResourceUC.CreateMedicine(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, medicine, err, "create_medicine_failed")
}

func (h *HTTPHandler) ListAppointments(c *fiber.Ctx) error {
	appointments, err := h.ResourceUC.ListAppointments(c.UserContext(), refCode(c))
	return h.respondList(c, appointments, err, "list_appointments_failed")
}

func (h *HTTPHandler) CreateAppointment(c *fiber.Ctx) error {
	var req usecase.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	appointment, err := h.ResourceUC.CreateAppointment(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, appointment, err, "create_appointment_failed")
}

func (h *HTTPHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.ResourceUC.ListContacts(c.UserContext(), refCode(c))
	return h.respondList(c, contacts, err, "list_contacts_failed")
}

func (h *HTTPHandler) CreateContact(c *fiber.Ctx) error {
	var req usecase.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	contact, err := h.ResourceUC.CreateContact(c.UserContext(), refCode(c), req)
	return h.respondCreated(c, contact, err, "create_contact_failed")
}

// deleteEntity returns a handler deleting one entity from the resource's
// collection. Missing ids succeed silently; only an unknown session is 404.
func (h *HTTPHandler) deleteEntity(resource model.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := h.ResourceUC.Delete(c.UserContext(), refCode(c), resource, c.Params("id"))
		if err != nil {
			return h.handleUsecaseError(c, err, "delete_failed")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// MarkMedicineTaken flags a medicine as taken. A missing id still answers
// with success and a null payload so watch reminder flows never wedge on a
// stale id.
func (h *HTTPHandler) MarkMedicineTaken(c *fiber.Ctx) error {
	medicine, err := h.ResourceUC.MarkMedicineTaken(c.UserContext(), refCode(c), c.Params("id"))
	if err != nil {
		return h.handleUsecaseError(c, err, "mark_taken_failed")
	}
	return c.JSON(fiber.Map{"success": true, "data": medicine})
}
