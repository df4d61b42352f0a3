package router

import (
	"cinema_booking/handler"
	"cinema_booking/middleware"
	"cinema_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, secret []byte) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")

	protected := middleware.Protected(secret)
	optional := middleware.OptionalJWT(secret)
	admin := middleware.AdminOnly()
	byID := validate.GetById("id")

	auth := v1.Group("/auth")
	auth.Post("/register", validate.Register(), h.Register)
	auth.Post("/login", validate.Login(), h.Login)

	showtimes := v1.Group("/showtimes")
	showtimes.Get("/:id/seats", byID, h.GetSeats)
	showtimes.Get("/:id/prices", byID, h.GetPrices)
	showtimes.Get("/:id/ws", byID, h.SeatFeedUpgrade, websocket.New(h.SeatFeed))

	bookings := v1.Group("/bookings")
	bookings.Post("/", optional, validate.ReserveSeats(), h.ReserveSeats)
	bookings.Get("/:id", protected, byID, h.GetBooking)
	bookings.Post("/:id/cancel", protected, byID, h.CancelBooking)
	bookings.Post("/:id/coupon", protected, byID, validate.ApplyCoupon(), h.ApplyCoupon)

	coupons := v1.Group("/coupons")
	coupons.Post("/exchange", protected, validate.ExchangeCoupon(), h.ExchangeCoupon)

	payments := v1.Group("/payments")
	payments.Post("/", protected, validate.CreatePayment(), h.CreatePayment)
	// Callback từ cổng thanh toán
	payments.Get("/vnpay/return", h.VNPayReturn)
	payments.Get("/vnpay/ipn", h.VNPayIPN)
	payments.Get("/momo/return", h.MoMoReturn)
	payments.Get("/momo/ipn", h.MoMoIPN)
	payments.Post("/momo/ipn", h.MoMoIPN)

	adminGroup := v1.Group("/admin", protected, admin)
	adminGroup.Get("/showtimes/:id/seats", byID, h.GetSeatsAdmin)
	adminGroup.Patch("/bookings/:id/status", byID, validate.UpdateBookingStatus(), h.UpdateBookingStatus)
}
