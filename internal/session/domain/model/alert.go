package model

import "time"

// AlertKind names an alert emission path as exposed over HTTP.
type AlertKind string

const (
	AlertKindSOS            AlertKind = "sos"
	AlertKindLost           AlertKind = "lost"
	AlertKindUnknownPerson  AlertKind = "unknown-person"
	AlertKindMissedMedicine AlertKind = "missed-medicine"
	AlertKindLiveLocation   AlertKind = "live-location"
)

// Stored alert type values.
const (
	AlertTypeSOS            = "sos"
	AlertTypeLost           = "lost"
	AlertTypeUnknownPerson  = "unknown_person"
	AlertTypeMissedMedicine = "missed_medicine"
	AlertTypeLive           = "live"
)

// Alert is one append-only alert record. Location and MedicineName are
// populated depending on the kind; Live marks live-location breadcrumbs
// stored alongside lost alerts.
type Alert struct {
	ID           int64     `json:"id" bson:"id"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
	Location     *Location `json:"location,omitempty" bson:"location,omitempty"`
	Type         string    `json:"type,omitempty" bson:"type,omitempty"`
	MedicineName string    `json:"medicineName,omitempty" bson:"medicineName,omitempty"`
	Live         bool      `json:"live,omitempty" bson:"live,omitempty"`
}

var alertFields = map[AlertKind]string{
	AlertKindSOS:            FieldSOSAlerts,
	AlertKindLost:           FieldLostAlerts,
	AlertKindUnknownPerson:  FieldSecurityAlerts,
	AlertKindMissedMedicine: FieldMissedMedicines,
	AlertKindLiveLocation:   FieldLostAlerts,
}

var alertTypes = map[AlertKind]string{
	AlertKindSOS:            AlertTypeSOS,
	AlertKindLost:           AlertTypeLost,
	AlertKindUnknownPerson:  AlertTypeUnknownPerson,
	AlertKindMissedMedicine: AlertTypeMissedMedicine,
	AlertKindLiveLocation:   AlertTypeLive,
}

// Field returns the storage field the kind appends to, or "" for an unknown
// kind.
func (k AlertKind) Field() string {
	return alertFields[k]
}

// StoredType returns the type value recorded on persisted alerts.
func (k AlertKind) StoredType() string {
	return alertTypes[k]
}

// IsValid reports whether the kind names a known alert path.
func (k AlertKind) IsValid() bool {
	_, ok := alertFields[k]
	return ok
}

// NewAlert builds a timestamped alert record for the kind.
func NewAlert(kind AlertKind, location *Location, medicineName string) Alert {
	return Alert{
		ID:           NextEntityID(),
		Timestamp:    time.Now().UTC(),
		Location:     location,
		Type:         kind.StoredType(),
		MedicineName: medicineName,
		Live:         kind == AlertKindLiveLocation,
	}
}

// AlertEvent is the realtime event fanned out to caregiver subscribers when
// an alert is persisted.
type AlertEvent struct {
	ReferenceCode string    `json:"referenceCode"`
	Kind          AlertKind `json:"kind"`
	Alert         Alert     `json:"alert"`
	ResumeToken   string    `json:"resumeToken,omitempty"`
}
