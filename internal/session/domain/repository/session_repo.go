package repository

import (
	"context"

	"carebridge/internal/session/domain/model"
)

// SessionRepository is the persistence port for care sessions. Implementations
// exist for an in-memory map (default; data loss on restart is an accepted
// limitation) and MongoDB. All mutating operations return
// errors.ErrSessionNotFound when the code is unknown; GetSession does too,
// and read-side degradation to an empty shape is the caller's concern.
type SessionRepository interface {
	// CreateSession inserts a fully initialized session.
	CreateSession(ctx context.Context, s *model.Session) error

	// GetSession returns a snapshot of the session for the code.
	GetSession(ctx context.Context, code string) (*model.Session, error)

	// CodeExists reports whether a session with the code already exists.
	// Used by the reference code generator's collision check.
	CodeExists(ctx context.Context, code string) (bool, error)

	// MergeProfile merges non-zero fields of update into the stored profile
	// and returns the merged result.
	MergeProfile(ctx context.Context, code string, update model.PatientProfile) (*model.PatientProfile, error)

	// SetHomeLocation replaces the home location wholesale.
	SetHomeLocation(ctx context.Context, code string, loc model.HomeLocation) error

	// SetWatchChargingTime replaces the watch charging time ("HH:MM").
	SetWatchChargingTime(ctx context.Context, code string, t string) error

	AddRoutineEntry(ctx context.Context, code string, e model.RoutineEntry) error
	AddPerson(ctx context.Context, code string, p model.Person) error
	AddPlace(ctx context.Context, code string, p model.Place) error
	AddMedicine(ctx context.Context, code string, m model.Medicine) error
	AddAppointment(ctx context.Context, code string, a model.Appointment) error
	AddContact(ctx context.Context, code string, c model.Contact) error

	// RemoveEntity deletes the entity with the id from the sub-collection
	// stored under field. Removing a nonexistent id is a silent no-op.
	RemoveEntity(ctx context.Context, code string, field string, id int64) error

	// MarkMedicineTaken sets taken=true and takenAt on the medicine. When the
	// id is not found it returns (nil, nil): the operation still succeeds
	// with no payload, preserving the always-200 contract.
	MarkMedicineTaken(ctx context.Context, code string, id int64, takenAt string) (*model.Medicine, error)

	// AppendAlert appends an alert record to the collection stored under
	// field. Alert collections are append-only.
	AppendAlert(ctx context.Context, code string, field string, a model.Alert) error
}
