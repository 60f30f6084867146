package model

import (
	"sync"
	"time"
)

// DefaultWatchChargingTime is applied to every new session and returned for
// unknown sessions on read-only queries.
const DefaultWatchChargingTime = "22:00"

// Location is the shape accepted for any location payload sent by a client.
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// HomeLocation is the patient's configured home position.
type HomeLocation struct {
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
}

// PatientProfile holds the patient's descriptive data. Updates merge into the
// existing profile: only fields present in the update replace stored values.
type PatientProfile struct {
	Name             string `json:"name,omitempty" bson:"name,omitempty"`
	Age              int    `json:"age,omitempty" bson:"age,omitempty"`
	Condition        string `json:"condition,omitempty" bson:"condition,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty" bson:"emergencyContact,omitempty"`
	EmergencyPhone   string `json:"emergencyPhone,omitempty" bson:"emergencyPhone,omitempty"`
	Address          string `json:"address,omitempty" bson:"address,omitempty"`
}

// Merge applies non-zero fields of update onto p.
func (p *PatientProfile) Merge(update PatientProfile) {
	if update.Name != "" {
		p.Name = update.Name
	}
	if update.Age != 0 {
		p.Age = update.Age
	}
	if update.Condition != "" {
		p.Condition = update.Condition
	}
	if update.EmergencyContact != "" {
		p.EmergencyContact = update.EmergencyContact
	}
	if update.EmergencyPhone != "" {
		p.EmergencyPhone = update.EmergencyPhone
	}
	if update.Address != "" {
		p.Address = update.Address
	}
}

// Session is the root aggregate for one patient-care session, keyed by its
// reference code. All sub-collections are initialized so that a session with
// no data still serializes to a well-formed empty shape.
type Session struct {
	ReferenceCode     string         `json:"referenceCode,omitempty" bson:"referenceCode"`
	CreatedAt         time.Time      `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	PatientProfile    PatientProfile `json:"patientProfile" bson:"patientProfile"`
	DailyRoutine      []RoutineEntry `json:"dailyRoutine" bson:"dailyRoutine"`
	KnownPeople       []Person       `json:"knownPeople" bson:"knownPeople"`
	KnownPlaces       []Place        `json:"knownPlaces" bson:"knownPlaces"`
	Medicines         []Medicine     `json:"medicines" bson:"medicines"`
	Appointments      []Appointment  `json:"appointments" bson:"appointments"`
	EmergencyContacts []Contact      `json:"emergencyContacts" bson:"emergencyContacts"`
	WatchChargingTime string         `json:"watchChargingTime" bson:"watchChargingTime"`
	HomeLocation      *HomeLocation  `json:"homeLocation" bson:"homeLocation"`
	SOSAlerts         []Alert        `json:"sosAlerts" bson:"sosAlerts"`
	LostAlerts        []Alert        `json:"lostAlerts" bson:"lostAlerts"`
	MissedMedicines   []Alert        `json:"missedMedicines" bson:"missedMedicines"`
	SecurityAlerts    []Alert        `json:"securityAlerts" bson:"securityAlerts"`
}

// NewSession allocates a session with empty defaults for the given code.
func NewSession(code string) *Session {
	return &Session{
		ReferenceCode:     code,
		CreatedAt:         time.Now().UTC(),
		PatientProfile:    PatientProfile{},
		DailyRoutine:      []RoutineEntry{},
		KnownPeople:       []Person{},
		KnownPlaces:       []Place{},
		Medicines:         []Medicine{},
		Appointments:      []Appointment{},
		EmergencyContacts: []Contact{},
		WatchChargingTime: DefaultWatchChargingTime,
		HomeLocation:      nil,
		SOSAlerts:         []Alert{},
		LostAlerts:        []Alert{},
		MissedMedicines:   []Alert{},
		SecurityAlerts:    []Alert{},
	}
}

// EmptySnapshot returns the benign empty shape served to read-only queries
// for unknown reference codes. It carries no code and no creation time.
func EmptySnapshot() *Session {
	s := NewSession("")
	s.CreatedAt = time.Time{}
	return s
}

// Normalize replaces any nil sub-collection with an empty one. Records loaded
// from storage pass through here so clients never see null collections.
func (s *Session) Normalize() {
	if s.DailyRoutine == nil {
		s.DailyRoutine = []RoutineEntry{}
	}
	if s.KnownPeople == nil {
		s.KnownPeople = []Person{}
	}
	if s.KnownPlaces == nil {
		s.KnownPlaces = []Place{}
	}
	if s.Medicines == nil {
		s.Medicines = []Medicine{}
	}
	if s.Appointments == nil {
		s.Appointments = []Appointment{}
	}
	if s.EmergencyContacts == nil {
		s.EmergencyContacts = []Contact{}
	}
	if s.SOSAlerts == nil {
		s.SOSAlerts = []Alert{}
	}
	if s.LostAlerts == nil {
		s.LostAlerts = []Alert{}
	}
	if s.MissedMedicines == nil {
		s.MissedMedicines = []Alert{}
	}
	if s.SecurityAlerts == nil {
		s.SecurityAlerts = []Alert{}
	}
	if s.WatchChargingTime == "" {
		s.WatchChargingTime = DefaultWatchChargingTime
	}
}

// Clone returns a deep copy of the session. The in-memory store hands out
// clones so callers cannot mutate stored state through a snapshot.
func (s *Session) Clone() *Session {
	c := *s
	c.DailyRoutine = append([]RoutineEntry{}, s.DailyRoutine...)
	c.KnownPeople = make([]Person, len(s.KnownPeople))
	for i, p := range s.KnownPeople {
		p.Timeline = append([]TimelineEntry{}, p.Timeline...)
		c.KnownPeople[i] = p
	}
	c.KnownPlaces = append([]Place{}, s.KnownPlaces...)
	c.Medicines = append([]Medicine{}, s.Medicines...)
	c.Appointments = append([]Appointment{}, s.Appointments...)
	c.EmergencyContacts = append([]Contact{}, s.EmergencyContacts...)
	c.SOSAlerts = append([]Alert{}, s.SOSAlerts...)
	c.LostAlerts = append([]Alert{}, s.LostAlerts...)
	c.MissedMedicines = append([]Alert{}, s.MissedMedicines...)
	c.SecurityAlerts = append([]Alert{}, s.SecurityAlerts...)
	if s.HomeLocation != nil {
		loc := *s.HomeLocation
		c.HomeLocation = &loc
	}
	return &c
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NextEntityID returns a monotonic millisecond-based identifier for
// sub-collection entities. Ids are unique within a process; cross-restart
// collisions are tolerated by the data model.
func NextEntityID() int64 {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastID {
		lastID++
	} else {
		lastID = now
	}
	return lastID
}
