package persistence

import (
	"context"
	"encoding/json"
	"time"

	"carebridge/internal/shared/logger"
	"carebridge/internal/session/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	streamPrefix = "sessions:"
	streamSuffix = ":alerts"

	// maxStreamLength bounds per-session alert history kept for replay
	maxStreamLength = 10000
)

// RedisEventStore persists alert events in Redis Streams, one stream per
// session, so caregiver clients can replay alerts they missed while
// disconnected and multiple server instances share one event log.
type RedisEventStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisEventStore creates a new Redis-based alert event store.
func NewRedisEventStore(client *redis.Client, log logger.Logger) *RedisEventStore {
	return &RedisEventStore{
		client: client,
		logger: log,
	}
}

func streamName(code string) string {
	return streamPrefix + code + streamSuffix
}

// StoreEvent appends an alert event to the session's stream.
func (r *RedisEventStore) StoreEvent(ctx context.Context, event model.AlertEvent) error {
	alertData, err := json.Marshal(event.Alert)
	if err != nil {
		r.logger.Error("Failed to serialize alert", zap.Error(err))
		return err
	}

	stream := streamName(event.ReferenceCode)

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"refCode":   event.ReferenceCode,
			"kind":      string(event.Kind),
			"alert":     alertData,
			"timestamp": event.Alert.Timestamp.UnixNano(),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to store alert event in Redis",
			zap.String("stream", stream),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Alert event stored in Redis",
		zap.String("stream", stream),
		zap.String("kind", string(event.Kind)))

	return nil
}

// GetEventsSince retrieves alert events for the session after the resume
// token. An empty token replays the whole retained history.
func (r *RedisEventStore) GetEventsSince(ctx context.Context, code string, resumeToken string) ([]model.AlertEvent, error) {
	stream := streamName(code)
	lastID := "0"
	if resumeToken != "" {
		lastID = resumeToken
	}

	exists, err := r.client.Exists(ctx, stream).Result()
	if err != nil {
		r.logger.Error("Failed to check stream existence",
			zap.String("stream", stream),
			zap.Error(err))
		return nil, err
	}
	if exists == 0 {
		return []model.AlertEvent{}, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.client.XRead(readCtx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   1000,
		Block:   -1,
	}).Result()

	if err != nil {
		if err == redis.Nil || err == context.DeadlineExceeded {
			return []model.AlertEvent{}, nil
		}
		r.logger.Error("Failed to read alert events from Redis",
			zap.String("stream", stream),
			zap.String("resumeToken", resumeToken),
			zap.Error(err))
		return nil, err
	}

	var events []model.AlertEvent
	for _, streamRes := range res {
		for _, msg := range streamRes.Messages {
			event, err := r.parseEventFromMessage(code, msg)
			if err != nil {
				r.logger.Warn("Failed to parse alert event from Redis message",
					zap.String("messageId", msg.ID),
					zap.Error(err))
				continue
			}
			event.ResumeToken = msg.ID
			events = append(events, event)
		}
	}

	return events, nil
}

// EventCount returns the retained event count for a session's stream.
func (r *RedisEventStore) EventCount(ctx context.Context, code string) int {
	length, err := r.client.XLen(ctx, streamName(code)).Result()
	if err != nil {
		return 0
	}
	return int(length)
}

// HealthCheck pings Redis.
func (r *RedisEventStore) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisEventStore) parseEventFromMessage(code string, msg redis.XMessage) (model.AlertEvent, error) {
	event := model.AlertEvent{ReferenceCode: code}

	if kind, ok := msg.Values["kind"].(string); ok {
		event.Kind = model.AlertKind(kind)
	}
	if raw, ok := msg.Values["alert"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &event.Alert); err != nil {
			return event, err
		}
	}
	return event, nil
}
