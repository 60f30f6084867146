package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("ABC123")

	assert.Equal(t, "ABC123", s.ReferenceCode)
	assert.Equal(t, DefaultWatchChargingTime, s.WatchChargingTime)
	assert.False(t, s.CreatedAt.IsZero())
	assert.NotNil(t, s.DailyRoutine)
	assert.NotNil(t, s.KnownPeople)
	assert.NotNil(t, s.Medicines)
	assert.NotNil(t, s.SOSAlerts)
	assert.Empty(t, s.DailyRoutine)
}

func TestEmptySnapshot_HasNoIdentity(t *testing.T) {
	s := EmptySnapshot()

	assert.Empty(t, s.ReferenceCode)
	assert.True(t, s.CreatedAt.IsZero())
	assert.NotNil(t, s.DailyRoutine)
	assert.NotNil(t, s.EmergencyContacts)
	assert.NotNil(t, s.LostAlerts)
	assert.Equal(t, DefaultWatchChargingTime, s.WatchChargingTime)
}

func TestProfileMerge_KeepsExistingOnZeroValues(t *testing.T) {
	profile := PatientProfile{Name: "Rosa", Age: 82, Address: "Elm St 4"}

	profile.Merge(PatientProfile{Name: "Rosa Maria"})

	assert.Equal(t, "Rosa Maria", profile.Name)
	assert.Equal(t, 82, profile.Age)
	assert.Equal(t, "Elm St 4", profile.Address)
}

func TestClone_IsDeep(t *testing.T) {
	s := NewSession("ABC123")
	s.Medicines = append(s.Medicines, Medicine{ID: 1, Name: "Aspirin", Time: "08:00"})

	clone := s.Clone()
	clone.Medicines[0].Name = "Ibuprofen"
	clone.PatientProfile.Name = "Changed"

	assert.Equal(t, "Aspirin", s.Medicines[0].Name)
	assert.NotEqual(t, "Changed", s.PatientProfile.Name)
}

func TestNormalize_ReplacesNilSlices(t *testing.T) {
	s := &Session{ReferenceCode: "ABC123"}
	s.Normalize()

	assert.NotNil(t, s.DailyRoutine)
	assert.NotNil(t, s.KnownPlaces)
	assert.NotNil(t, s.SecurityAlerts)
	assert.NotNil(t, s.MissedMedicines)
}

func TestNextEntityID_Monotonic(t *testing.T) {
	prev := NextEntityID()
	for i := 0; i < 1000; i++ {
		id := NextEntityID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestResourceField(t *testing.T) {
	assert.Equal(t, FieldDailyRoutine, ResourceRoutine.Field())
	assert.Equal(t, FieldEmergencyContacts, ResourceContacts.Field())
	assert.Empty(t, Resource("bogus").Field())
	assert.Len(t, KnownResources(), 6)
}

func TestAlertKindRouting(t *testing.T) {
	assert.Equal(t, FieldSOSAlerts, AlertKindSOS.Field())
	assert.Equal(t, FieldSecurityAlerts, AlertKindUnknownPerson.Field())
	assert.Equal(t, FieldLostAlerts, AlertKindLiveLocation.Field())
	assert.Equal(t, FieldMissedMedicines, AlertKindMissedMedicine.Field())

	assert.Equal(t, "unknown_person", AlertKindUnknownPerson.StoredType())
	assert.Equal(t, "missed_medicine", AlertKindMissedMedicine.StoredType())

	assert.True(t, AlertKindLost.IsValid())
	assert.False(t, AlertKind("noise").IsValid())
}

func TestNewAlert(t *testing.T) {
	loc := &Location{Latitude: -12.05, Longitude: -77.03}

	alert := NewAlert(AlertKindLiveLocation, loc, "")
	assert.True(t, alert.Live)
	assert.Equal(t, AlertTypeLive, alert.Type)
	assert.Equal(t, loc, alert.Location)
	assert.False(t, alert.Timestamp.IsZero())

	missed := NewAlert(AlertKindMissedMedicine, nil, "Aspirin")
	assert.False(t, missed.Live)
	assert.Equal(t, "Aspirin", missed.MedicineName)
	assert.Nil(t, missed.Location)
}
