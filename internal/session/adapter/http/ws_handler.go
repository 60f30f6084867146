package http

import (
	"context"
	"time"

	"carebridge/internal/session/domain/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// wsEventBuffer bounds the per-connection event queue. Alerts are rare,
	// so a full buffer means the client stopped reading.
	wsEventBuffer = 256

	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

func (h *HTTPHandler) registerStreamRoutes(router fiber.Router) {
	router.Use("/alerts/stream", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("resumeToken", c.Query("resumeToken"))
		return c.Next()
	})
	router.Get("/alerts/stream", websocket.New(h.handleAlertStream))
}

// handleAlertStream serves the caregiver alert feed. Each connection is one
// subscriber; alerts emitted for the session are pushed as JSON frames with
// a resumeToken the client can present on reconnect.
func (h *HTTPHandler) handleAlertStream(conn *websocket.Conn) {
	code := normalizeCode(conn.Params("code"))
	subscriberID := uuid.NewString()
	resumeToken, _ := conn.Locals("resumeToken").(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan model.AlertEvent, wsEventBuffer)
	if err := h.RealtimeUC.Subscribe(ctx, code, subscriberID, events, resumeToken); err != nil {
		h.Log.Error("Failed to subscribe alert stream",
			zap.String("refCode", code),
			zap.String("subscriberId", subscriberID),
			zap.Error(err))
		conn.Close()
		return
	}
	defer func() {
		if err := h.RealtimeUC.UnsubscribeAll(context.Background(), subscriberID); err != nil {
			h.Log.Warn("Failed to unsubscribe alert stream",
				zap.String("subscriberId", subscriberID),
				zap.Error(err))
		}
	}()

	h.Log.Info("Alert stream connected",
		zap.String("refCode", code),
		zap.String("subscriberId", subscriberID))

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces the close handshake.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Log.Info("Alert stream disconnected",
				zap.String("refCode", code),
				zap.String("subscriberId", subscriberID))
			return
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.Log.Warn("Failed to write alert event, closing stream",
					zap.String("refCode", code),
					zap.String("subscriberId", subscriberID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
