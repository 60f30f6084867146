package memory

import (
	"context"
	"sync"

	"carebridge/internal/shared/errors"
	"carebridge/internal/session/domain/model"
)

// SessionRepository is the in-memory session store. It is the default driver:
// one process, one map, data lost on restart by design. A RWMutex serializes
// writers; snapshots handed out are deep copies.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewSessionRepository creates an empty in-memory store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*model.Session),
	}
}

// CreateSession inserts a new session keyed by its reference code.
func (r *SessionRepository) CreateSession(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ReferenceCode]; exists {
		return errors.ErrInvalidReferenceCode
	}
	r.sessions[s.ReferenceCode] = s.Clone()
	return nil
}

// GetSession returns a deep copy of the stored session.
func (r *SessionRepository) GetSession(ctx context.Context, code string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[code]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return s.Clone(), nil
}

// CodeExists reports whether the code is taken.
func (r *SessionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[code]
	return ok, nil
}

// MergeProfile merges the update into the stored profile.
func (r *SessionRepository) MergeProfile(ctx context.Context, code string, update model.PatientProfile) (*model.PatientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	s.PatientProfile.Merge(update)
	merged := s.PatientProfile
	return &merged, nil
}

// SetHomeLocation replaces the home location.
func (r *SessionRepository) SetHomeLocation(ctx context.Context, code string, loc model.HomeLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return errors.ErrSessionNotFound
	}
	s.HomeLocation = &loc
	return nil
}

// SetWatchChargingTime replaces the watch charging time.
func (r *SessionRepository) SetWatchChargingTime(ctx context.Context, code string, t string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return errors.ErrSessionNotFound
	}
	s.WatchChargingTime = t
	return nil
}

func (r *SessionRepository) AddRoutineEntry(ctx context.Context, code string, e model.RoutineEntry) error {
	return r.mutate(code, func(s *model.Session) {
		s.DailyRoutine = append(s.DailyRoutine, e)
	})
}

func (r *SessionRepository) AddPerson(ctx context.Context, code string, p model.Person) error {
	return r.mutate(code, func(s *model.Session) {
		s.KnownPeople = append(s.KnownPeople, p)
	})
}

func (r *SessionRepository) AddPlace(ctx context.Context, code string, p model.Place) error {
	return r.mutate(code, func(s *model.Session) {
		s.KnownPlaces = append(s.KnownPlaces, p)
	})
}

func (r *SessionRepository) AddMedicine(ctx context.Context, code string, m model.Medicine) error {
	return r.mutate(code, func(s *model.Session) {
		s.Medicines = append(s.Medicines, m)
	})
}

func (r *SessionRepository) AddAppointment(ctx context.Context, code string, a model.Appointment) error {
	return r.mutate(code, func(s *model.Session) {
		s.Appointments = append(s.Appointments, a)
	})
}

func (r *SessionRepository) AddContact(ctx context.Context, code string, c model.Contact) error {
	return r.mutate(code, func(s *model.Session) {
		s.EmergencyContacts = append(s.EmergencyContacts, c)
	})
}

// RemoveEntity drops the entity with the id from the collection under field.
// Unknown ids are a silent no-op.
func (r *SessionRepository) RemoveEntity(ctx context.Context, code string, field string, id int64) error {
	return r.mutate(code, func(s *model.Session) {
		switch field {
		case model.FieldDailyRoutine:
			s.DailyRoutine = filterRoutine(s.DailyRoutine, id)
		case model.FieldKnownPeople:
			s.KnownPeople = filterPeople(s.KnownPeople, id)
		case model.FieldKnownPlaces:
			s.KnownPlaces = filterPlaces(s.KnownPlaces, id)
		case model.FieldMedicines:
			s.Medicines = filterMedicines(s.Medicines, id)
		case model.FieldAppointments:
			s.Appointments = filterAppointments(s.Appointments, id)
		case model.FieldEmergencyContacts:
			s.EmergencyContacts = filterContacts(s.EmergencyContacts, id)
		}
	})
}

// MarkMedicineTaken marks the medicine taken. Missing ids succeed with a nil
// medicine.
func (r *SessionRepository) MarkMedicineTaken(ctx context.Context, code string, id int64, takenAt string) (*model.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	for i := range s.Medicines {
		if s.Medicines[i].ID == id {
			s.Medicines[i].Taken = true
			s.Medicines[i].TakenAt = takenAt
			m := s.Medicines[i]
			return &m, nil
		}
	}
	return nil, nil
}

// AppendAlert appends to the alert collection under field.
func (r *SessionRepository) AppendAlert(ctx context.Context, code string, field string, a model.Alert) error {
	return r.mutate(code, func(s *model.Session) {
		switch field {
		case model.FieldSOSAlerts:
			s.SOSAlerts = append(s.SOSAlerts, a)
		case model.FieldLostAlerts:
			s.LostAlerts = append(s.LostAlerts, a)
		case model.FieldMissedMedicines:
			s.MissedMedicines = append(s.MissedMedicines, a)
		case model.FieldSecurityAlerts:
			s.SecurityAlerts = append(s.SecurityAlerts, a)
		}
	})
}

func (r *SessionRepository) mutate(code string, fn func(*model.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return errors.ErrSessionNotFound
	}
	fn(s)
	return nil
}

func filterRoutine(in []model.RoutineEntry, id int64) []model.RoutineEntry {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func filterPeople(in []model.Person, id int64) []model.Person {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func filterPlaces(in []model.Place, id int64) []model.Place {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func filterMedicines(in []model.Medicine, id int64) []model.Medicine {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func filterAppointments(in []model.Appointment, id int64) []model.Appointment {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func filterContacts(in []model.Contact, id int64) []model.Contact {
	out := in[:0]
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
