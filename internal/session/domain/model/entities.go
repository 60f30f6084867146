package model

// Resource identifies one of the session's CRUD sub-collections.
type Resource string

const (
	ResourceRoutine      Resource = "routine"
	ResourcePeople       Resource = "people"
	ResourcePlaces       Resource = "places"
	ResourceMedicines    Resource = "medicines"
	ResourceAppointments Resource = "appointments"
	ResourceContacts     Resource = "contacts"
)

// Storage field names for sub-collections, shared by the BSON mapping and the
// generic repository operations.
const (
	FieldDailyRoutine      = "dailyRoutine"
	FieldKnownPeople       = "knownPeople"
	FieldKnownPlaces       = "knownPlaces"
	FieldMedicines         = "medicines"
	FieldAppointments      = "appointments"
	FieldEmergencyContacts = "emergencyContacts"
	FieldSOSAlerts         = "sosAlerts"
	FieldLostAlerts        = "lostAlerts"
	FieldMissedMedicines   = "missedMedicines"
	FieldSecurityAlerts    = "securityAlerts"
)

var resourceFields = map[Resource]string{
	ResourceRoutine:      FieldDailyRoutine,
	ResourcePeople:       FieldKnownPeople,
	ResourcePlaces:       FieldKnownPlaces,
	ResourceMedicines:    FieldMedicines,
	ResourceAppointments: FieldAppointments,
	ResourceContacts:     FieldEmergencyContacts,
}

// Field returns the storage field backing the resource, or "" for an unknown
// resource name.
func (r Resource) Field() string {
	return resourceFields[r]
}

// KnownResources lists all CRUD sub-resources in registration order.
func KnownResources() []Resource {
	return []Resource{
		ResourceRoutine,
		ResourcePeople,
		ResourcePlaces,
		ResourceMedicines,
		ResourceAppointments,
		ResourceContacts,
	}
}

// RoutineEntry is one scheduled activity in the patient's day.
type RoutineEntry struct {
	ID       int64  `json:"id" bson:"id"`
	Time     string `json:"time" bson:"time"`
	Activity string `json:"activity" bson:"activity"`
}

// TimelineEntry is one media memory attached to a known person.
type TimelineEntry struct {
	ID      int64  `json:"id" bson:"id"`
	Media   string `json:"media" bson:"media"`
	Type    string `json:"type" bson:"type"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
}

// Person is someone the patient should recognize. Photo and VoiceNote are
// opaque base64 media blobs supplied by the client.
type Person struct {
	ID          int64           `json:"id" bson:"id"`
	Name        string          `json:"name" bson:"name"`
	Relation    string          `json:"relation,omitempty" bson:"relation,omitempty"`
	Photo       string          `json:"photo,omitempty" bson:"photo,omitempty"`
	VoiceNote   string          `json:"voiceNote,omitempty" bson:"voiceNote,omitempty"`
	Timeline    []TimelineEntry `json:"timeline,omitempty" bson:"timeline,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// Place is a location the patient knows.
type Place struct {
	ID          int64   `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Address     string  `json:"address,omitempty" bson:"address,omitempty"`
	Lat         float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty" bson:"lng,omitempty"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
}

// Medicine is one scheduled medication.
type Medicine struct {
	ID           int64  `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	Time         string `json:"time" bson:"time"`
	Dosage       string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
	Taken        bool   `json:"taken" bson:"taken"`
	TakenAt      string `json:"takenAt,omitempty" bson:"takenAt,omitempty"`
}

// Appointment is one upcoming medical appointment.
type Appointment struct {
	ID       int64  `json:"id" bson:"id"`
	Doctor   string `json:"doctor" bson:"doctor"`
	Date     string `json:"date" bson:"date"`
	Time     string `json:"time,omitempty" bson:"time,omitempty"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
	Purpose  string `json:"purpose,omitempty" bson:"purpose,omitempty"`
}

// Contact is an emergency contact for the caregiver surface.
type Contact struct {
	ID       int64  `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Phone    string `json:"phone" bson:"phone"`
	Relation string `json:"relation,omitempty" bson:"relation,omitempty"`
	Photo    string `json:"photo,omitempty" bson:"photo,omitempty"`
}
