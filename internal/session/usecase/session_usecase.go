package usecase

import (
	"context"
	"regexp"

	apperrors "carebridge/internal/shared/errors"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"
	"carebridge/internal/shared/refcode"
	"carebridge/internal/session/domain/model"
	"carebridge/internal/session/domain/repository"

	"go.uber.org/zap"
)

var watchTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TokenService issues and validates caregiver tokens scoped to one session.
type TokenService interface {
	GenerateToken(ctx context.Context, referenceCode string) (string, error)
}

// SessionUsecase covers session lifecycle and the singleton session fields
// (profile, home location, watch charging time).
type SessionUsecase interface {
	// CreateSession allocates a new session and returns its reference code.
	CreateSession(ctx context.Context) (string, error)

	// Login validates the code and returns the full snapshot plus a signed
	// caregiver token. Unknown codes fail with ErrSessionNotFound.
	Login(ctx context.Context, code string) (*model.Session, string, error)

	// GetSnapshot returns the session, or the benign empty shape for unknown
	// codes. It never fails on a missing session.
	GetSnapshot(ctx context.Context, code string) (*model.Session, error)

	// UpdateProfile merges the update into the stored profile.
	UpdateProfile(ctx context.Context, code string, update model.PatientProfile) (*model.PatientProfile, error)

	// SetHomeLocation replaces the home location.
	SetHomeLocation(ctx context.Context, code string, loc model.HomeLocation) error

	// SetWatchChargingTime replaces the watch charging time ("HH:MM").
	SetWatchChargingTime(ctx context.Context, code string, t string) (string, error)

	// GetWatchChargingTime returns the charging time, defaulting for unknown
	// sessions.
	GetWatchChargingTime(ctx context.Context, code string) (string, error)
}

type sessionUsecase struct {
	repo     repository.SessionRepository
	tokens   TokenService
	eventBus *eventbus.EventBus
	log      logger.Logger
}

// NewSessionUsecase creates the session usecase.
func NewSessionUsecase(repo repository.SessionRepository, tokens TokenService, bus *eventbus.EventBus, log logger.Logger) SessionUsecase {
	return &sessionUsecase{
		repo:     repo,
		tokens:   tokens,
		eventBus: bus,
		log:      log,
	}
}

func (uc *sessionUsecase) CreateSession(ctx context.Context) (string, error) {
	code, err := refcode.GenerateUnique(func(candidate string) bool {
		exists, checkErr := uc.repo.CodeExists(ctx, candidate)
		if checkErr != nil {
			uc.log.Warn("Code existence check failed, treating as taken",
				zap.String("refCode", candidate),
				zap.Error(checkErr))
			return true
		}
		return exists
	})
	if err != nil {
		return "", err
	}

	if err := uc.repo.CreateSession(ctx, model.NewSession(code)); err != nil {
		uc.log.Error("Failed to create session", zap.String("refCode", code), zap.Error(err))
		return "", err
	}

	uc.log.Info("Session created", zap.String("refCode", code))
	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeSessionCreated, code, "session_usecase"))
	}
	return code, nil
}

func (uc *sessionUsecase) Login(ctx context.Context, code string) (*model.Session, string, error) {
	s, err := uc.repo.GetSession(ctx, code)
	if err != nil {
		return nil, "", err
	}

	var token string
	if uc.tokens != nil {
		token, err = uc.tokens.GenerateToken(ctx, code)
		if err != nil {
			uc.log.Error("Failed to issue caregiver token", zap.String("refCode", code), zap.Error(err))
			return nil, "", err
		}
	}

	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeCaregiverLogin, code, "session_usecase"))
	}
	return s, token, nil
}

func (uc *sessionUsecase) GetSnapshot(ctx context.Context, code string) (*model.Session, error) {
	s, err := uc.repo.GetSession(ctx, code)
	if err == apperrors.ErrSessionNotFound {
		return model.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *sessionUsecase) UpdateProfile(ctx context.Context, code string, update model.PatientProfile) (*model.PatientProfile, error) {
	profile, err := uc.repo.MergeProfile(ctx, code, update)
	if err != nil {
		return nil, err
	}
	if uc.eventBus != nil {
		uc.eventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeProfileUpdated, code, "session_usecase"))
	}
	return profile, nil
}

func (uc *sessionUsecase) SetHomeLocation(ctx context.Context, code string, loc model.HomeLocation) error {
	return uc.repo.SetHomeLocation(ctx, code, loc)
}

func (uc *sessionUsecase) SetWatchChargingTime(ctx context.Context, code string, t string) (string, error) {
	if !watchTimePattern.MatchString(t) {
		ve := apperrors.NewValidationErrors().Add("time", "must be HH:MM", t)
		return "", ve.ToAppError()
	}
	if err := uc.repo.SetWatchChargingTime(ctx, code, t); err != nil {
		return "", err
	}
	return t, nil
}

func (uc *sessionUsecase) GetWatchChargingTime(ctx context.Context, code string) (string, error) {
	s, err := uc.repo.GetSession(ctx, code)
	if err == apperrors.ErrSessionNotFound {
		return model.DefaultWatchChargingTime, nil
	}
	if err != nil {
		return "", err
	}
	return s.WatchChargingTime, nil
}
