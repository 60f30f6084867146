package usecase

import (
	"context"
	"testing"
	"time"

	memorypersistence "carebridge/internal/session/adapter/persistence/memory"
	"carebridge/internal/session/domain/model"
	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlertFixture(t *testing.T) (AlertUsecase, RealtimeUsecase, *memorypersistence.SessionRepository) {
	t.Helper()
	repo := memorypersistence.NewSessionRepository()
	require.NoError(t, repo.CreateSession(context.Background(), model.NewSession("ABC123")))
	log := logger.NewLogger()
	realtime := NewRealtimeUsecase(log)
	return NewAlertUsecase(repo, realtime, eventbus.NewEventBus(log), log), realtime, repo
}

func TestEmit_PersistsByKind(t *testing.T) {
	uc, _, repo := newAlertFixture(t)
	ctx := context.Background()

	loc := &model.Location{Latitude: -12.05, Longitude: -77.03}
	_, err := uc.Emit(ctx, "ABC123", model.AlertKindSOS, EmitAlertRequest{Location: loc})
	require.NoError(t, err)
	_, err = uc.Emit(ctx, "ABC123", model.AlertKindUnknownPerson, EmitAlertRequest{})
	require.NoError(t, err)
	_, err = uc.Emit(ctx, "ABC123", model.AlertKindMissedMedicine, EmitAlertRequest{MedicineName: "Aspirin"})
	require.NoError(t, err)
	_, err = uc.Emit(ctx, "ABC123", model.AlertKindLiveLocation, EmitAlertRequest{Location: loc})
	require.NoError(t, err)

	s, err := repo.GetSession(ctx, "ABC123")
	require.NoError(t, err)

	require.Len(t, s.SOSAlerts, 1)
	assert.Equal(t, model.AlertTypeSOS, s.SOSAlerts[0].Type)
	assert.Equal(t, loc, s.SOSAlerts[0].Location)

	require.Len(t, s.SecurityAlerts, 1)
	assert.Equal(t, model.AlertTypeUnknownPerson, s.SecurityAlerts[0].Type)

	require.Len(t, s.MissedMedicines, 1)
	assert.Equal(t, "Aspirin", s.MissedMedicines[0].MedicineName)

	// Live locations ride on the lost alert trail.
	require.Len(t, s.LostAlerts, 1)
	assert.True(t, s.LostAlerts[0].Live)
}

func TestEmit_UnknownSessionStillSucceeds(t *testing.T) {
	uc, _, _ := newAlertFixture(t)

	alert, err := uc.Emit(context.Background(), "ZZZZZZ", model.AlertKindSOS, EmitAlertRequest{})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertTypeSOS, alert.Type)
}

func TestEmit_UnknownKindIsValidationError(t *testing.T) {
	uc, _, _ := newAlertFixture(t)

	_, err := uc.Emit(context.Background(), "ABC123", model.AlertKind("noise"), EmitAlertRequest{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEmit_FansOutToSubscribers(t *testing.T) {
	uc, realtime, _ := newAlertFixture(t)
	ctx := context.Background()

	events := make(chan model.AlertEvent, 8)
	require.NoError(t, realtime.Subscribe(ctx, "ABC123", "sub-1", events, ""))

	other := make(chan model.AlertEvent, 8)
	require.NoError(t, realtime.Subscribe(ctx, "OTHER1", "sub-2", other, ""))

	_, err := uc.Emit(ctx, "ABC123", model.AlertKindLost, EmitAlertRequest{})
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, "ABC123", event.ReferenceCode)
		assert.Equal(t, model.AlertKindLost, event.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected an alert event for the session's subscriber")
	}

	select {
	case <-other:
		t.Fatal("subscriber of another session must not receive the alert")
	default:
	}
}

func TestHistory(t *testing.T) {
	uc, _, _ := newAlertFixture(t)
	ctx := context.Background()

	_, err := uc.Emit(ctx, "ABC123", model.AlertKindSOS, EmitAlertRequest{})
	require.NoError(t, err)

	hist, err := uc.History(ctx, "ABC123")
	require.NoError(t, err)
	assert.Len(t, hist.SOSAlerts, 1)
	assert.Empty(t, hist.LostAlerts)

	// Unknown sessions read empty history.
	hist, err = uc.History(ctx, "ZZZZZZ")
	require.NoError(t, err)
	assert.Empty(t, hist.SOSAlerts)
	assert.NotNil(t, hist.SecurityAlerts)
}
