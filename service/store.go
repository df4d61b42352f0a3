// Package service holds the booking core: seat availability, reservation,
// pricing, coupons, payment creation and gateway reconciliation. Storage,
// gateways, locks and notifications are injected so tests can use fakes.
package service

import (
	"cinema_booking/model"
	"context"
	"time"
)

type ShowtimeStore interface {
	// GetShowtime loads the showtime with its Movie and Screen, or apperror.NotFound.
	GetShowtime(ctx context.Context, id uint) (*model.Showtime, error)
	ListScreenSeats(ctx context.Context, screenID uint, includeDeleted bool) ([]model.Seat, error)
	// ActiveSeatIDs lists seats held by PENDING, CONFIRMED or COMPLETED bookings.
	ActiveSeatIDs(ctx context.Context, showtimeID uint) ([]uint, error)
	DeactivateEndedShowtimes(ctx context.Context, now time.Time) (int64, error)
}

type BookingStore interface {
	// CreateBooking inserts the booking and its seats in one transaction.
	// A seat already held on the showtime fails with apperror.SeatConflict.
	CreateBooking(ctx context.Context, booking *model.Booking) error
	// GetBooking loads the booking with Seats.Seat, Showtime and Payment.
	GetBooking(ctx context.Context, id uint) (*model.Booking, error)
	// UpdateBooking locks the booking row, applies update and persists it. Moving
	// into CANCELLED releases the booking's seats; a changed Payment.Status is saved too.
	UpdateBooking(ctx context.Context, id uint, update func(b *model.Booking) error) (*model.Booking, error)
	ListStaleBookings(ctx context.Context, before time.Time) ([]model.Booking, error)
}

type PaymentStore interface {
	GetPaymentMethod(ctx context.Context, id uint) (*model.PaymentMethod, error)
	// AttachPayment locks the booking, lets prepare validate it and build the new
	// payment, cancels the booking's previous PENDING payment, then stores the new
	// one as the booking's current payment.
	AttachPayment(ctx context.Context, bookingID uint, prepare func(b *model.Booking) (*model.Payment, error)) (*model.Payment, error)
	UpdatePayment(ctx context.Context, id uint, update func(p *model.Payment) error) error
	// ReconcilePayment locks the booking then the payment identified by
	// transactionID, applies apply and persists both. Points returned by apply
	// are added to the booking's user in the same transaction.
	ReconcilePayment(ctx context.Context, transactionID string, apply func(p *model.Payment, b *model.Booking) (points int, err error)) error
	ListStalePayments(ctx context.Context, before time.Time) ([]model.Payment, error)
}

type CouponStore interface {
	// ConsumeCoupon locks the booking and the user's oldest held instance of code,
	// calls apply (coupon is nil when the user holds none) and, when apply
	// succeeds, saves the booking and deletes the held instance atomically.
	ConsumeCoupon(ctx context.Context, bookingID, userID uint, code string, apply func(b *model.Booking, coupon *model.Coupon) error) (*model.Booking, error)
	// ExchangeCoupon spends the coupon's exchange points and grants one instance.
	ExchangeCoupon(ctx context.Context, userID uint, code string) (*model.UserCoupon, error)
}

type PriceQuery struct {
	SeatType  string // empty matches every seat type
	MovieType string
	DayType   string
	Clock     string // "HH:MM"
}

type PriceStore interface {
	FindTicketPrices(ctx context.Context, q PriceQuery, page model.Pagination) ([]model.TicketPrice, int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

// SeatLocker is a short-lived lock in front of the reservation transaction.
// The database index is what actually prevents double booking.
type SeatLocker interface {
	AcquireSeatLocks(ctx context.Context, showtimeID uint, seatIDs []uint, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSeatLocks(ctx context.Context, showtimeID uint, seatIDs []uint, token string) error
}

type SeatNotifier interface {
	PublishSeatEvent(ctx context.Context, event model.SeatEvent) error
}
