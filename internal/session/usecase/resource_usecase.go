package usecase

import (
	"context"
	"sort"
	"strconv"
	"time"

	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"
	"carebridge/internal/session/domain/model"
	"carebridge/internal/session/domain/repository"

	"go.uber.org/zap"
)

// Typed create requests, one per sub-resource. The reference code never
// appears here: whatever a client echoes back in the body is dropped at the
// parse boundary, so it cannot leak into stored entities.

type CreateRoutineRequest struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

type CreatePersonRequest struct {
	Name        string                `json:"name"`
	Relation    string                `json:"relation"`
	Photo       string                `json:"photo"`
	VoiceNote   string                `json:"voiceNote"`
	Timeline    []model.TimelineEntry `json:"timeline"`
	Description string                `json:"description"`
}

type CreatePlaceRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
}

type CreateMedicineRequest struct {
	Name         string `json:"name"`
	Time         string `json:"time"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
}

type CreateAppointmentRequest struct {
	Doctor   string `json:"doctor"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Purpose  string `json:"purpose"`
}

type CreateContactRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
	Photo    string `json:"photo"`
}

// ResourceUsecase implements the shared CRUD contract over the session's
// sub-collections. Reads degrade to empty collections for unknown codes;
// writes fail with ErrSessionNotFound.
type ResourceUsecase interface {
	ListRoutine(ctx context.Context, code string) ([]model.RoutineEntry, error)
	ListPeople(ctx context.Context, code string) ([]model.Person, error)
	ListPlaces(ctx context.Context, code string) ([]model.Place, error)
	ListMedicines(ctx context.Context, code string) ([]model.Medicine, error)
	ListAppointments(ctx context.Context, code string) ([]model.Appointment, error)
	ListContacts(ctx context.Context, code string) ([]model.Contact, error)

	CreateRoutine(ctx context.Context, code string, req CreateRoutineRequest) (*model.RoutineEntry, error)
	CreatePerson(ctx context.Context, code string, req CreatePersonRequest) (*model.Person, error)
	CreatePlace(ctx context.Context, code string, req CreatePlaceRequest) (*model.Place, error)
	CreateMedicine(ctx context.Context, code string, req CreateMedicineRequest) (*model.Medicine, error)
	CreateAppointment(ctx context.Context, code string, req CreateAppointmentRequest) (*model.Appointment, error)
	CreateContact(ctx context.Context, code string, req CreateContactRequest) (*model.Contact, error)

	// Delete removes the entity with the id from the resource's collection.
	// Ids arrive as path strings; non-numeric or unknown ids are a silent
	// no-op as long as the session exists.
	Delete(ctx context.Context, code string, resource model.Resource, id string) error

	// MarkMedicineTaken sets taken=true and takenAt=now. A missing id still
	// succeeds, returning a nil medicine.
	MarkMedicineTaken(ctx context.Context, code string, id string) (*model.Medicine, error)
}

type resourceUsecase struct {
	repo     repository.SessionRepository
	eventBus *eventbus.EventBus
	log      logger.Logger
}

// NewResourceUsecase creates the sub-resource CRUD usecase.
func NewResourceUsecase(repo repository.SessionRepository, bus *eventbus.EventBus, log logger.Logger) ResourceUsecase {
	return &resourceUsecase{
		repo:     repo,
		eventBus: bus,
		log:      log,
	}
}

func (uc *resourceUsecase) snapshot(ctx context.Context, code string) (*model.Session, error) {
	s, err := uc.repo.GetSession(ctx, code)
	if err == apperrors.ErrSessionNotFound {
		return model.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListRoutine returns the daily routine ordered by time of day.
func (uc *resourceUsecase) ListRoutine(ctx context.Context, code string) ([]model.RoutineEntry, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	entries := s.DailyRoutine
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
	return entries, nil
}

func (uc *resourceUsecase) ListPeople(ctx context.Context, code string) ([]model.Person, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.KnownPeople, nil
}

func (uc *resourceUsecase) ListPlaces(ctx context.Context, code string) ([]model.Place, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.KnownPlaces, nil
}

func (uc *resourceUsecase) ListMedicines(ctx context.Context, code string) ([]model.Medicine, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Medicines, nil
}

func (uc *resourceUsecase) ListAppointments(ctx context.Context, code string) ([]model.Appointment, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Appointments, nil
}

func (uc *resourceUsecase) ListContacts(ctx context.Context, code string) ([]model.Contact, error) {
	s, err := uc.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.EmergencyContacts, nil
}

func (uc *resourceUsecase) CreateRoutine(ctx context.Context, code string, req CreateRoutineRequest) (*model.RoutineEntry, error) {
	ve := apperrors.NewValidationErrors()
	if req.Time == "" {
		ve.Add("time", "time is required", req.Time)
	}
	if req.Activity == "" {
		ve.Add("activity", "activity is required", req.Activity)
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	entry := model.RoutineEntry{
		ID:       model.NextEntityID(),
		Time:     req.Time,
		Activity: req.Activity,
	}
	if err := uc.repo.AddRoutineEntry(ctx, code, entry); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourceRoutine, entry.ID)
	return &entry, nil
}

func (uc *resourceUsecase) CreatePerson(ctx context.Context, code string, req CreatePersonRequest) (*model.Person, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidationErrors().Add("name", "name is required", req.Name).ToAppError()
	}

	person := model.Person{
		ID:          model.NextEntityID(),
		Name:        req.Name,
		Relation:    req.Relation,
		Photo:       req.Photo,
		VoiceNote:   req.VoiceNote,
		Timeline:    req.Timeline,
		Description: req.Description,
	}
	for i := range person.Timeline {
		if person.Timeline[i].ID == 0 {
			person.Timeline[i].ID = model.NextEntityID()
		}
	}
	if err := uc.repo.AddPerson(ctx, code, person); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourcePeople, person.ID)
	return &person, nil
}

func (uc *resourceUsecase) CreatePlace(ctx context.Context, code string, req CreatePlaceRequest) (*model.Place, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidationErrors().Add("name", "name is required", req.Name).ToAppError()
	}

	place := model.Place{
		ID:          model.NextEntityID(),
		Name:        req.Name,
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Description: req.Description,
	}
	if err := uc.repo.AddPlace(ctx, code, place); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourcePlaces, place.ID)
	return &place, nil
}

func (uc *resourceUsecase) CreateMedicine(ctx context.Context, code string, req CreateMedicineRequest) (*model.Medicine, error) {
	ve := apperrors.NewValidationErrors()
	if req.Name == "" {
		ve.Add("name", "name is required", req.Name)
	}
	if req.Time == "" {
		ve.Add("time", "time is required", req.Time)
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	medicine := model.Medicine{
		ID:           model.NextEntityID(),
		Name:         req.Name,
		Time:         req.Time,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
		Taken:        false,
	}
	if err := uc.repo.AddMedicine(ctx, code, medicine); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourceMedicines, medicine.ID)
	return &medicine, nil
}

func (uc *resourceUsecase) CreateAppointment(ctx context.Context, code string, req CreateAppointmentRequest) (*model.Appointment, error) {
	ve := apperrors.NewValidationErrors()
	if req.Doctor == "" {
		ve.Add("doctor", "doctor is required", req.Doctor)
	}
	if req.Date == "" {
		ve.Add("date", "date is required", req.Date)
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	appointment := model.Appointment{
		ID:       model.NextEntityID(),
		Doctor:   req.Doctor,
		Date:     req.Date,
		Time:     req.Time,
		Location: req.Location,
		Purpose:  req.Purpose,
	}
	if err := uc.repo.AddAppointment(ctx, code, appointment); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourceAppointments, appointment.ID)
	return &appointment, nil
}

func (uc *resourceUsecase) CreateContact(ctx context.Context, code string, req CreateContactRequest) (*model.Contact, error) {
	ve := apperrors.NewValidationErrors()
	if req.Name == "" {
		ve.Add("name", "name is required", req.Name)
	}
	if req.Phone == "" {
		ve.Add("phone", "phone is required", req.Phone)
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	contact := model.Contact{
		ID:       model.NextEntityID(),
		Name:     req.Name,
		Phone:    req.Phone,
		Relation: req.Relation,
		Photo:    req.Photo,
	}
	if err := uc.repo.AddContact(ctx, code, contact); err != nil {
		return nil, err
	}
	uc.publishCreated(ctx, code, model.ResourceContacts, contact.ID)
	return &contact, nil
}

func (uc *resourceUsecase) Delete(ctx context.Context, code string, resource model.Resource, id string) error {
	field := resource.Field()
	if field == "" {
		return apperrors.NewValidationErrors().Add("resource", "unknown resource", string(resource)).ToAppError()
	}

	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		// Ids are always numeric when we assigned them; a malformed id can
		// match nothing, so this is the same silent no-op as a missing id.
		exists, checkErr := uc.repo.CodeExists(ctx, code)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return apperrors.ErrSessionNotFound
		}
		return nil
	}

	if err := uc.repo.RemoveEntity(ctx, code, field, parsed); err != nil {
		return err
	}
	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeEntityDeleted, map[string]interface{}{
			"refCode":  code,
			"resource": string(resource),
			"id":       parsed,
		}, "resource_usecase"))
	}
	return nil
}

func (uc *resourceUsecase) MarkMedicineTaken(ctx context.Context, code string, id string) (*model.Medicine, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		exists, checkErr := uc.repo.CodeExists(ctx, code)
		if checkErr != nil {
			return nil, checkErr
		}
		if !exists {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, nil
	}

	takenAt := time.Now().UTC().Format(time.RFC3339)
	medicine, err := uc.repo.MarkMedicineTaken(ctx, code, parsed, takenAt)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		uc.log.Debug("markTaken for unknown medicine id",
			zap.String("refCode", code),
			zap.Int64("id", parsed))
		return nil, nil
	}
	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeMedicineTaken, map[string]interface{}{
			"refCode": code,
			"id":      parsed,
		}, "resource_usecase"))
	}
	return medicine, nil
}

func (uc *resourceUsecase) publishCreated(ctx context.Context, code string, resource model.Resource, id int64) {
	if uc.eventBus == nil {
		return
	}
	uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeEntityCreated, map[string]interface{}{
		"refCode":  code,
		"resource": string(resource),
		"id":       id,
	}, "resource_usecase"))
}
