package handler

import (
	"cinema_booking/apperror"
	"cinema_booking/validate"
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SeatFeedUpgrade lets only websocket upgrades through to SeatFeed.
func (h *Handler) SeatFeedUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SeatFeed sends the seat map once, then relays every seat event of the
// showtime until the client goes away.
func (h *Handler) SeatFeed(c *websocket.Conn) {
	defer c.Close()

	showtimeID, _ := c.Locals(validate.IDKey).(uint)
	if showtimeID == 0 {
		_ = c.WriteJSON(map[string]string{"error": "invalid showtime id"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sub kênh Redis trước khi gửi sơ đồ ghế để không lỡ sự kiện
	pubsub, err := h.Feed.SubscribeSeatEvents(ctx, showtimeID)
	if err != nil {
		h.Log.Error("subscribe seat events", zap.Uint("showtimeId", showtimeID), zap.Error(err))
		return
	}
	defer pubsub.Close()

	seats, err := h.Availability.GetSeatStatus(ctx, showtimeID, nil, false)
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": apperror.Message(err)})
		return
	}
	if err := c.WriteJSON(seats); err != nil {
		return
	}

	// client đóng kết nối → dừng
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}
