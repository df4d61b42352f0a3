package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/model"
	"time"
)

var bookingTransitions = map[string][]string{
	constants.BOOKING_PENDING:   {constants.BOOKING_CONFIRMED, constants.BOOKING_CANCELLED, constants.BOOKING_COMPLETED},
	constants.BOOKING_CONFIRMED: {constants.BOOKING_CANCELLED, constants.BOOKING_COMPLETED},
	constants.BOOKING_COMPLETED: {constants.BOOKING_CANCELLED},
	constants.BOOKING_CANCELLED: {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionBooking applies a status change to b. enforceStart rejects
// cancelling a showtime that already started; reconciliation passes false.
// Same-status moves are no-ops.
func transitionBooking(b *model.Booking, to string, now time.Time, enforceStart bool) error {
	if b.Status == to {
		return nil
	}
	if _, known := bookingTransitions[to]; !known {
		return apperror.New(apperror.KindInvalidInput, "unknown booking status %q", to)
	}
	if !CanTransition(b.Status, to) {
		return apperror.New(apperror.KindInvalidTransition, "cannot move booking from %s to %s", b.Status, to)
	}
	if to == constants.BOOKING_CANCELLED && enforceStart && b.Showtime.ID != 0 && b.Showtime.HasStarted(now) {
		return apperror.New(apperror.KindInvalidState, "showtime already started")
	}
	b.Status = to
	return nil
}

// bookingStatusFor maps a payment status to the booking status it implies.
func bookingStatusFor(paymentStatus string) (string, error) {
	switch paymentStatus {
	case constants.PAYMENT_PENDING:
		return constants.BOOKING_PENDING, nil
	case constants.PAYMENT_COMPLETED:
		return constants.BOOKING_COMPLETED, nil
	case constants.PAYMENT_FAILED, constants.PAYMENT_CANCELLED:
		return constants.BOOKING_CANCELLED, nil
	}
	return "", apperror.New(apperror.KindInvalidState, "unknown payment status %q", paymentStatus)
}
