package usecase

import (
	"context"
	"sync"

	"carebridge/internal/shared/logger"
	"carebridge/internal/session/domain/model"

	"go.uber.org/zap"
)

// EventStore persists alert events for replay across reconnects. Implemented
// by the Redis Streams adapter; nil disables replay.
type EventStore interface {
	StoreEvent(ctx context.Context, event model.AlertEvent) error
	GetEventsSince(ctx context.Context, code string, resumeToken string) ([]model.AlertEvent, error)
}

// RealtimeUsecase fans alert events out to caregiver subscribers watching a
// session. One subscriber is one websocket connection.
type RealtimeUsecase interface {
	// Subscribe registers a channel to receive alert events for the session.
	// When the event store is available and resumeToken is non-empty (or ""
	// for full history), missed events are replayed onto the channel before
	// live delivery starts.
	Subscribe(ctx context.Context, code, subscriberID string, ch chan<- model.AlertEvent, resumeToken string) error

	// Unsubscribe removes one subscriber from a session.
	Unsubscribe(ctx context.Context, code, subscriberID string) error

	// UnsubscribeAll removes a subscriber from every session it watches.
	UnsubscribeAll(ctx context.Context, subscriberID string) error

	// PublishEvent stores the event for replay and delivers it to the
	// session's live subscribers. Slow subscribers are skipped, not awaited.
	PublishEvent(ctx context.Context, event model.AlertEvent)

	// SubscriberCount reports the live subscriber count for a session.
	SubscriberCount(code string) int
}

type realtimeUsecase struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan<- model.AlertEvent
	eventStore  EventStore
	log         logger.Logger
}

// NewRealtimeUsecase creates a fan-out hub without replay.
func NewRealtimeUsecase(log logger.Logger) RealtimeUsecase {
	return NewRealtimeUsecaseWithEventStore(nil, log)
}

// NewRealtimeUsecaseWithEventStore creates a fan-out hub that replays missed
// events from the store on subscribe.
func NewRealtimeUsecaseWithEventStore(store EventStore, log logger.Logger) RealtimeUsecase {
	return &realtimeUsecase{
		subscribers: make(map[string]map[string]chan<- model.AlertEvent),
		eventStore:  store,
		log:         log,
	}
}

func (uc *realtimeUsecase) Subscribe(ctx context.Context, code, subscriberID string, ch chan<- model.AlertEvent, resumeToken string) error {
	uc.mu.Lock()
	if uc.subscribers[code] == nil {
		uc.subscribers[code] = make(map[string]chan<- model.AlertEvent)
	}
	uc.subscribers[code][subscriberID] = ch
	uc.mu.Unlock()

	uc.log.Info("Subscriber registered",
		zap.String("refCode", code),
		zap.String("subscriberId", subscriberID))

	if uc.eventStore == nil {
		return nil
	}

	missed, err := uc.eventStore.GetEventsSince(ctx, code, resumeToken)
	if err != nil {
		// Replay is best effort; the live stream still works.
		uc.log.Warn("Failed to replay missed alert events",
			zap.String("refCode", code),
			zap.String("subscriberId", subscriberID),
			zap.Error(err))
		return nil
	}

	for _, event := range missed {
		select {
		case ch <- event:
		default:
			uc.log.Warn("Subscriber channel full during replay, dropping event",
				zap.String("refCode", code),
				zap.String("subscriberId", subscriberID))
		}
	}
	if len(missed) > 0 {
		uc.log.Info("Replayed missed alert events",
			zap.String("refCode", code),
			zap.String("subscriberId", subscriberID),
			zap.Int("count", len(missed)))
	}
	return nil
}

func (uc *realtimeUsecase) Unsubscribe(ctx context.Context, code, subscriberID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	subs, ok := uc.subscribers[code]
	if !ok {
		return nil
	}
	delete(subs, subscriberID)
	if len(subs) == 0 {
		delete(uc.subscribers, code)
	}
	return nil
}

func (uc *realtimeUsecase) UnsubscribeAll(ctx context.Context, subscriberID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for code, subs := range uc.subscribers {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(uc.subscribers, code)
		}
	}
	return nil
}

func (uc *realtimeUsecase) PublishEvent(ctx context.Context, event model.AlertEvent) {
	if uc.eventStore != nil {
		if err := uc.eventStore.StoreEvent(ctx, event); err != nil {
			uc.log.Warn("Failed to store alert event for replay",
				zap.String("refCode", event.ReferenceCode),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	}

	uc.mu.RLock()
	subs := uc.subscribers[event.ReferenceCode]
	channels := make([]chan<- model.AlertEvent, 0, len(subs))
	for _, ch := range subs {
		channels = append(channels, ch)
	}
	uc.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			uc.log.Warn("Subscriber channel full, dropping alert event",
				zap.String("refCode", event.ReferenceCode),
				zap.String("kind", string(event.Kind)))
		}
	}
}

func (uc *realtimeUsecase) SubscriberCount(code string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.subscribers[code])
}
