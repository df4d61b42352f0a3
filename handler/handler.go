package handler

import (
	"cinema_booking/middleware"
	"cinema_booking/service"
	"cinema_booking/utils"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SeatFeed subscribes to seat changes of one showtime.
type SeatFeed interface {
	SubscribeSeatEvents(ctx context.Context, showtimeID uint) (*redis.PubSub, error)
}

type Handler struct {
	Auth         *service.AuthService
	Availability *service.AvailabilityService
	Pricing      *service.PricingService
	Bookings     *service.BookingService
	Coupons      *service.CouponService
	Payments     *service.PaymentService
	Feed         SeatFeed

	// FrontendURL receives the browser after a gateway return.
	FrontendURL string
	Log         *zap.Logger
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	return utils.HandleError(c, h.Log, err)
}

// userID is the caller's id, 0 for anonymous requests.
func userID(c *fiber.Ctx) uint {
	claim, ok := middleware.CurrentUser(c)
	if !ok {
		return 0
	}
	return claim.UserId
}
