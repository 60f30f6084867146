package memory

import (
	"context"
	"testing"

	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/session/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithSession(t *testing.T, code string) *SessionRepository {
	t.Helper()
	repo := NewSessionRepository()
	require.NoError(t, repo.CreateSession(context.Background(), model.NewSession(code)))
	return repo
}

func TestCreateAndGetSession(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")

	s, err := repo.GetSession(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", s.ReferenceCode)
	assert.Equal(t, model.DefaultWatchChargingTime, s.WatchChargingTime)

	exists, err := repo.CodeExists(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetSession(context.Background(), "ZZZZZZ")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestCreateSession_DuplicateCode(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")
	err := repo.CreateSession(context.Background(), model.NewSession("ABC123"))
	assert.Error(t, err)
}

func TestGetSession_ReturnsIsolatedCopy(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")
	require.NoError(t, repo.AddMedicine(context.Background(), "ABC123", model.Medicine{ID: 1, Name: "Aspirin"}))

	s, err := repo.GetSession(context.Background(), "ABC123")
	require.NoError(t, err)
	s.Medicines[0].Name = "Tampered"

	again, err := repo.GetSession(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", again.Medicines[0].Name)
}

func TestMergeProfile(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")

	_, err := repo.MergeProfile(context.Background(), "ABC123", model.PatientProfile{Name: "Rosa", Age: 82})
	require.NoError(t, err)

	merged, err := repo.MergeProfile(context.Background(), "ABC123", model.PatientProfile{Condition: "dementia"})
	require.NoError(t, err)
	assert.Equal(t, "Rosa", merged.Name)
	assert.Equal(t, 82, merged.Age)
	assert.Equal(t, "dementia", merged.Condition)

	_, err = repo.MergeProfile(context.Background(), "ZZZZZZ", model.PatientProfile{Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRemoveEntity(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")
	ctx := context.Background()
	require.NoError(t, repo.AddRoutineEntry(ctx, "ABC123", model.RoutineEntry{ID: 10, Time: "08:00", Activity: "Breakfast"}))
	require.NoError(t, repo.AddRoutineEntry(ctx, "ABC123", model.RoutineEntry{ID: 20, Time: "12:00", Activity: "Lunch"}))

	require.NoError(t, repo.RemoveEntity(ctx, "ABC123", model.FieldDailyRoutine, 10))

	s, err := repo.GetSession(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, s.DailyRoutine, 1)
	assert.Equal(t, int64(20), s.DailyRoutine[0].ID)

	// Removing an id that is not there is a silent no-op.
	require.NoError(t, repo.RemoveEntity(ctx, "ABC123", model.FieldDailyRoutine, 999))
	s, err = repo.GetSession(ctx, "ABC123")
	require.NoError(t, err)
	assert.Len(t, s.DailyRoutine, 1)

	assert.ErrorIs(t, repo.RemoveEntity(ctx, "ZZZZZZ", model.FieldDailyRoutine, 20), apperrors.ErrSessionNotFound)
}

func TestMarkMedicineTaken(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")
	ctx := context.Background()
	require.NoError(t, repo.AddMedicine(ctx, "ABC123", model.Medicine{ID: 7, Name: "Aspirin", Time: "08:00"}))

	m, err := repo.MarkMedicineTaken(ctx, "ABC123", 7, "2026-08-30T08:05:00Z")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.Taken)
	assert.Equal(t, "2026-08-30T08:05:00Z", m.TakenAt)

	// Missing id succeeds with a nil medicine.
	m, err = repo.MarkMedicineTaken(ctx, "ABC123", 999, "2026-08-30T08:05:00Z")
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = repo.MarkMedicineTaken(ctx, "ZZZZZZ", 7, "2026-08-30T08:05:00Z")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestAppendAlert_RoutesByField(t *testing.T) {
	repo := newRepoWithSession(t, "ABC123")
	ctx := context.Background()

	require.NoError(t, repo.AppendAlert(ctx, "ABC123", model.FieldSOSAlerts, model.NewAlert(model.AlertKindSOS, nil, "")))
	require.NoError(t, repo.AppendAlert(ctx, "ABC123", model.FieldSecurityAlerts, model.NewAlert(model.AlertKindUnknownPerson, nil, "")))
	require.NoError(t, repo.AppendAlert(ctx, "ABC123", model.FieldLostAlerts, model.NewAlert(model.AlertKindLiveLocation, &model.Location{Latitude: 1, Longitude: 2}, "")))

	s, err := repo.GetSession(ctx, "ABC123")
	require.NoError(t, err)
	assert.Len(t, s.SOSAlerts, 1)
	assert.Len(t, s.SecurityAlerts, 1)
	require.Len(t, s.LostAlerts, 1)
	assert.True(t, s.LostAlerts[0].Live)

	assert.ErrorIs(t, repo.AppendAlert(ctx, "ZZZZZZ", model.FieldSOSAlerts, model.NewAlert(model.AlertKindSOS, nil, "")), apperrors.ErrSessionNotFound)
}
