package mongodb

import (
	"context"

	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/shared/logger"
	"carebridge/internal/session/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const sessionsCollection = "sessions"

// SessionRepository implements the session store on MongoDB. Each session is
// one document keyed by referenceCode; sub-collection mutations use targeted
// update operators so concurrent writers on different sessions never touch
// each other.
type SessionRepository struct {
	col    *mongo.Collection
	logger logger.Logger
}

// NewSessionRepository creates a MongoDB-backed session repository.
func NewSessionRepository(db *mongo.Database, log logger.Logger) *SessionRepository {
	return &SessionRepository{
		col:    db.Collection(sessionsCollection),
		logger: log,
	}
}

// EnsureIndexes creates the unique index on referenceCode. Called once at
// startup.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "referenceCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// CreateSession inserts a new session document.
func (r *SessionRepository) CreateSession(ctx context.Context, s *model.Session) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrInvalidReferenceCode
		}
		r.logger.Error("Failed to insert session",
			zap.String("refCode", s.ReferenceCode),
			zap.Error(err))
		return err
	}
	return nil
}

// GetSession loads the full session document.
func (r *SessionRepository) GetSession(ctx context.Context, code string) (*model.Session, error) {
	var s model.Session
	err := r.col.FindOne(ctx, bson.M{"referenceCode": code}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load session",
			zap.String("refCode", code),
			zap.Error(err))
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

// CodeExists reports whether a session document exists for the code.
func (r *SessionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"referenceCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MergeProfile performs a single-document read-modify-write: load, merge in
// process, write the merged profile back.
func (r *SessionRepository) MergeProfile(ctx context.Context, code string, update model.PatientProfile) (*model.PatientProfile, error) {
	s, err := r.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}
	s.PatientProfile.Merge(update)

	if err := r.set(ctx, code, bson.M{"patientProfile": s.PatientProfile}); err != nil {
		return nil, err
	}
	merged := s.PatientProfile
	return &merged, nil
}

// SetHomeLocation replaces the home location.
func (r *SessionRepository) SetHomeLocation(ctx context.Context, code string, loc model.HomeLocation) error {
	return r.set(ctx, code, bson.M{"homeLocation": loc})
}

// SetWatchChargingTime replaces the watch charging time.
func (r *SessionRepository) SetWatchChargingTime(ctx context.Context, code string, t string) error {
	return r.set(ctx, code, bson.M{"watchChargingTime": t})
}

func (r *SessionRepository) AddRoutineEntry(ctx context.Context, code string, e model.RoutineEntry) error {
	return r.push(ctx, code, model.FieldDailyRoutine, e)
}

func (r *SessionRepository) AddPerson(ctx context.Context, code string, p model.Person) error {
	return r.push(ctx, code, model.FieldKnownPeople, p)
}

func (r *SessionRepository) AddPlace(ctx context.Context, code string, p model.Place) error {
	return r.push(ctx, code, model.FieldKnownPlaces, p)
}

func (r *SessionRepository) AddMedicine(ctx context.Context, code string, m model.Medicine) error {
	return r.push(ctx, code, model.FieldMedicines, m)
}

func (r *SessionRepository) AddAppointment(ctx context.Context, code string, a model.Appointment) error {
	return r.push(ctx, code, model.FieldAppointments, a)
}

func (r *SessionRepository) AddContact(ctx context.Context, code string, c model.Contact) error {
	return r.push(ctx, code, model.FieldEmergencyContacts, c)
}

// RemoveEntity pulls the entity with the id out of the array under field.
// A pull that matches nothing is a silent no-op as long as the session exists.
func (r *SessionRepository) RemoveEntity(ctx context.Context, code string, field string, id int64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"referenceCode": code},
		bson.M{"$pull": bson.M{field: bson.M{"id": id}}},
	)
	if err != nil {
		r.logger.Error("Failed to remove entity",
			zap.String("refCode", code),
			zap.String("field", field),
			zap.Int64("id", id),
			zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// MarkMedicineTaken sets taken/takenAt on the matching array element via an
// array filter. A session match with no modified element means the id was not
// found: the operation succeeds with a nil medicine.
func (r *SessionRepository) MarkMedicineTaken(ctx context.Context, code string, id int64, takenAt string) (*model.Medicine, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"referenceCode": code},
		bson.M{"$set": bson.M{
			"medicines.$[m].taken":   true,
			"medicines.$[m].takenAt": takenAt,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.id": id}},
		}),
	)
	if err != nil {
		r.logger.Error("Failed to mark medicine taken",
			zap.String("refCode", code),
			zap.Int64("id", id),
			zap.Error(err))
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.ErrSessionNotFound
	}
	// ModifiedCount 0 means the id was not found or the medicine was already
	// taken with the same takenAt; reload to tell the two apart.
	s, err := r.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range s.Medicines {
		if s.Medicines[i].ID == id {
			m := s.Medicines[i]
			return &m, nil
		}
	}
	return nil, nil
}

// AppendAlert pushes an alert record onto the collection under field.
func (r *SessionRepository) AppendAlert(ctx context.Context, code string, field string, a model.Alert) error {
	return r.push(ctx, code, field, a)
}

func (r *SessionRepository) push(ctx context.Context, code string, field string, entity interface{}) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"referenceCode": code},
		bson.M{"$push": bson.M{field: entity}},
	)
	if err != nil {
		r.logger.Error("Failed to append entity",
			zap.String("refCode", code),
			zap.String("field", field),
			zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) set(ctx context.Context, code string, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"referenceCode": code},
		bson.M{"$set": fields},
	)
	if err != nil {
		r.logger.Error("Failed to update session fields",
			zap.String("refCode", code),
			zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}
