package usecase

import (
	"context"

	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"
	"carebridge/internal/session/domain/model"
	"carebridge/internal/session/domain/repository"

	"go.uber.org/zap"
)

// EmitAlertRequest carries the optional payload of an alert emission. All
// fields may be absent; an SOS from a watch with no GPS fix is still an SOS.
type EmitAlertRequest struct {
	Location     *model.Location `json:"location"`
	MedicineName string          `json:"medicineName"`
}

// AlertHistory groups the persisted alert collections of one session.
type AlertHistory struct {
	SOSAlerts       []model.Alert `json:"sosAlerts"`
	LostAlerts      []model.Alert `json:"lostAlerts"`
	SecurityAlerts  []model.Alert `json:"securityAlerts"`
	MissedMedicines []model.Alert `json:"missedMedicines"`
}

// AlertUsecase handles alert emission and history. Emission never fails the
// caller: the patient device fired an alarm, and a storage hiccup must not
// turn that into a device-side error loop.
type AlertUsecase interface {
	// Emit records an alert of the kind and fans it out to subscribers. The
	// returned alert is always non-nil for a valid kind, whether or not it
	// was persisted.
	Emit(ctx context.Context, code string, kind model.AlertKind, req EmitAlertRequest) (*model.Alert, error)

	// History returns the session's alert collections, empty for unknown
	// codes.
	History(ctx context.Context, code string) (*AlertHistory, error)
}

type alertUsecase struct {
	repo     repository.SessionRepository
	realtime RealtimeUsecase
	eventBus *eventbus.EventBus
	log      logger.Logger
}

// NewAlertUsecase creates the alert usecase.
func NewAlertUsecase(repo repository.SessionRepository, realtime RealtimeUsecase, bus *eventbus.EventBus, log logger.Logger) AlertUsecase {
	return &alertUsecase{
		repo:     repo,
		realtime: realtime,
		eventBus: bus,
		log:      log,
	}
}

func (uc *alertUsecase) Emit(ctx context.Context, code string, kind model.AlertKind, req EmitAlertRequest) (*model.Alert, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationErrors().Add("kind", "unknown alert kind", string(kind)).ToAppError()
	}

	alert := model.NewAlert(kind, req.Location, req.MedicineName)

	err := uc.repo.AppendAlert(ctx, code, kind.Field(), alert)
	if err == apperrors.ErrSessionNotFound {
		uc.log.Warn("Alert emitted for unknown session, acknowledged without persisting",
			zap.String("refCode", code),
			zap.String("kind", string(kind)))
		return &alert, nil
	}
	if err != nil {
		uc.log.Error("Failed to persist alert, acknowledging anyway",
			zap.String("refCode", code),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return &alert, nil
	}

	uc.log.Info("Alert recorded",
		zap.String("refCode", code),
		zap.String("kind", string(kind)),
		zap.Int64("alertId", alert.ID))

	if uc.realtime != nil {
		uc.realtime.PublishEvent(ctx, model.AlertEvent{
			ReferenceCode: code,
			Kind:          kind,
			Alert:         alert,
		})
	}
	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeAlertEmitted, map[string]interface{}{
			"refCode": code,
			"kind":    string(kind),
			"id":      alert.ID,
		}, "alert_usecase"))
	}
	return &alert, nil
}

func (uc *alertUsecase) History(ctx context.Context, code string) (*AlertHistory, error) {
	s, err := uc.repo.GetSession(ctx, code)
	if err == apperrors.ErrSessionNotFound {
		s = model.EmptySnapshot()
	} else if err != nil {
		return nil, err
	}

	return &AlertHistory{
		SOSAlerts:       s.SOSAlerts,
		LostAlerts:      s.LostAlerts,
		SecurityAlerts:  s.SecurityAlerts,
		MissedMedicines: s.MissedMedicines,
	}, nil
}
