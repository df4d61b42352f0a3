package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/metrics"
	"cinema_booking/model"
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type BookingService struct {
	showtimes ShowtimeStore
	bookings  BookingStore
	pricing   *PricingService
	locker    SeatLocker
	notifier  SeatNotifier
	log       *zap.Logger
	now       func() time.Time
	lockTTL   time.Duration
}

type BookingOption func(*BookingService)

func WithSeatLocker(locker SeatLocker, ttl time.Duration) BookingOption {
	return func(s *BookingService) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithSeatNotifier(notifier SeatNotifier) BookingOption {
	return func(s *BookingService) { s.notifier = notifier }
}

func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(showtimes ShowtimeStore, bookings BookingStore, pricing *PricingService, log *zap.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		showtimes: showtimes,
		bookings:  bookings,
		pricing:   pricing,
		log:       log,
		now:       time.Now,
		lockTTL:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ReserveInput struct {
	ShowtimeID uint
	SeatIDs    []uint
	UserID     *uint
	Notes      string
}

// Reserve holds the requested seats for a new PENDING booking. Either every
// seat is held or none is.
func (s *BookingService) Reserve(ctx context.Context, in ReserveInput) (*model.ReserveResult, error) {
	result, err := s.reserve(ctx, in)
	switch {
	case err == nil:
		metrics.ReservationsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, apperror.SeatConflict):
		metrics.ReservationsTotal.WithLabelValues("conflict").Inc()
	default:
		metrics.ReservationsTotal.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *BookingService) reserve(ctx context.Context, in ReserveInput) (*model.ReserveResult, error) {
	showtime, err := s.showtimes.GetShowtime(ctx, in.ShowtimeID)
	if err != nil {
		return nil, err
	}
	if !showtime.IsActive {
		return nil, apperror.New(apperror.KindInvalidState, "showtime is not open for booking")
	}
	if showtime.HasStarted(s.now()) {
		return nil, apperror.New(apperror.KindInvalidState, "showtime already started")
	}

	seatIDs := lo.Uniq(in.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "at least one seat is required")
	}

	screenSeats, err := s.showtimes.ListScreenSeats(ctx, showtime.ScreenID, false)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(screenSeats, func(seat model.Seat) uint { return seat.ID })
	selected := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := byID[id]
		if !ok {
			return nil, apperror.New(apperror.KindInvalidInput, "seat %d is not on this screen", id)
		}
		selected = append(selected, seat)
	}

	// Fast path: the store re-checks under its unique index.
	held, err := s.showtimes.ActiveSeatIDs(ctx, in.ShowtimeID)
	if err != nil {
		return nil, err
	}
	if len(lo.Intersect(held, seatIDs)) > 0 {
		return nil, apperror.New(apperror.KindSeatConflict, constants.SEATS_ALREADY_BOOKED)
	}

	if s.locker != nil {
		token, ok, err := s.locker.AcquireSeatLocks(ctx, in.ShowtimeID, seatIDs, s.lockTTL)
		switch {
		case err != nil:
			s.log.Warn("seat lock unavailable, relying on database", zap.Uint("showtimeId", in.ShowtimeID), zap.Error(err))
		case !ok:
			return nil, apperror.New(apperror.KindSeatConflict, constants.SEATS_ALREADY_BOOKED)
		default:
			defer func() {
				if err := s.locker.ReleaseSeatLocks(context.WithoutCancel(ctx), in.ShowtimeID, seatIDs, token); err != nil {
					s.log.Warn("release seat locks", zap.Uint("showtimeId", in.ShowtimeID), zap.Error(err))
				}
			}()
		}
	}

	total, err := s.pricing.Total(ctx, showtime, selected)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:     in.UserID,
		ShowtimeID: in.ShowtimeID,
		Status:     constants.BOOKING_PENDING,
		TotalPrice: total,
		Notes:      in.Notes,
		Seats: lo.Map(selected, func(seat model.Seat, _ int) model.BookingSeat {
			return model.BookingSeat{ShowtimeID: in.ShowtimeID, SeatID: seat.ID, Seat: seat, Quantity: 1, Active: true}
		}),
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("seats reserved",
		zap.Uint("bookingId", booking.ID),
		zap.Uint("showtimeId", in.ShowtimeID),
		zap.Uints("seatIds", seatIDs),
		zap.Float64("total", total),
	)
	s.publish(ctx, in.ShowtimeID, seatIDs, constants.SEAT_BOOKED)

	return &model.ReserveResult{BookingID: booking.ID, Status: booking.Status, TotalPrice: booking.TotalPrice}, nil
}

// GetBooking returns the booking if userID owns it or isAdmin is set.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uint, isAdmin bool) (*model.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !b.OwnedBy(userID) {
		return nil, apperror.New(apperror.KindUnauthorized, "booking does not belong to user")
	}
	return b, nil
}

// Cancel is the owner-initiated cancel.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint) (*model.Booking, error) {
	b, err := s.bookings.UpdateBooking(ctx, bookingID, func(b *model.Booking) error {
		if !b.OwnedBy(userID) {
			return apperror.New(apperror.KindUnauthorized, "booking does not belong to user")
		}
		return s.cancel(b, true)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled by user", zap.Uint("bookingId", bookingID), zap.Uint("userId", userID))
	s.publish(ctx, b.ShowtimeID, b.SeatIDs(), constants.SEAT_AVAILABLE)
	return b, nil
}

// UpdateStatus is the admin status change.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uint, status string) (*model.Booking, error) {
	b, err := s.bookings.UpdateBooking(ctx, bookingID, func(b *model.Booking) error {
		if status == constants.BOOKING_CANCELLED {
			return s.cancel(b, true)
		}
		return transitionBooking(b, status, s.now(), true)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking status updated by admin", zap.Uint("bookingId", bookingID), zap.String("status", status))
	if status == constants.BOOKING_CANCELLED {
		s.publish(ctx, b.ShowtimeID, b.SeatIDs(), constants.SEAT_AVAILABLE)
	}
	return b, nil
}

// cancel moves b into CANCELLED and closes its payment: a PENDING attempt
// can no longer complete and a COMPLETED one is marked CANCELLED.
func (s *BookingService) cancel(b *model.Booking, enforceStart bool) error {
	if err := transitionBooking(b, constants.BOOKING_CANCELLED, s.now(), enforceStart); err != nil {
		return err
	}
	if b.Payment != nil && (b.Payment.Status == constants.PAYMENT_COMPLETED || b.Payment.Status == constants.PAYMENT_PENDING) {
		b.Payment.Status = constants.PAYMENT_CANCELLED
	}
	return nil
}

// ExpireStaleBookings cancels PENDING bookings created before the cutoff that
// have no payment in flight, releasing their seats.
func (s *BookingService) ExpireStaleBookings(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.bookings.ListStaleBookings(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, candidate := range stale {
		changed := false
		b, err := s.bookings.UpdateBooking(ctx, candidate.ID, func(b *model.Booking) error {
			if b.Status != constants.BOOKING_PENDING {
				return nil
			}
			if b.Payment != nil && b.Payment.Status == constants.PAYMENT_PENDING {
				return nil
			}
			changed = true
			return s.cancel(b, false)
		})
		if err != nil {
			s.log.Error("expire booking", zap.Uint("bookingId", candidate.ID), zap.Error(err))
			continue
		}
		if changed {
			expired++
			s.publish(ctx, b.ShowtimeID, b.SeatIDs(), constants.SEAT_AVAILABLE)
		}
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, showtimeID uint, seatIDs []uint, status string) {
	publishSeats(ctx, s.notifier, s.log, showtimeID, seatIDs, status)
}

func publishSeats(ctx context.Context, notifier SeatNotifier, log *zap.Logger, showtimeID uint, seatIDs []uint, status string) {
	if notifier == nil || len(seatIDs) == 0 {
		return
	}
	event := model.SeatEvent{ShowtimeID: showtimeID, SeatIDs: seatIDs, Status: status}
	if err := notifier.PublishSeatEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("publish seat event", zap.Uint("showtimeId", showtimeID), zap.Error(err))
	}
}
