package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	statuses := []string{
		constants.BOOKING_PENDING,
		constants.BOOKING_CONFIRMED,
		constants.BOOKING_CANCELLED,
		constants.BOOKING_COMPLETED,
	}
	allowed := map[[2]string]bool{
		{constants.BOOKING_PENDING, constants.BOOKING_CONFIRMED}:   true,
		{constants.BOOKING_PENDING, constants.BOOKING_CANCELLED}:   true,
		{constants.BOOKING_PENDING, constants.BOOKING_COMPLETED}:   true,
		{constants.BOOKING_CONFIRMED, constants.BOOKING_CANCELLED}: true,
		{constants.BOOKING_CONFIRMED, constants.BOOKING_COMPLETED}: true,
		{constants.BOOKING_COMPLETED, constants.BOOKING_CANCELLED}: true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]string{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionBooking(t *testing.T) {
	start := time.Date(2024, 6, 3, 19, 0, 0, 0, ict)
	before := start.Add(-time.Hour)
	after := start.Add(time.Minute)

	newBooking := func(status string) *model.Booking {
		return &model.Booking{
			Status:   status,
			Showtime: model.Showtime{DTO: model.DTO{ID: 1}, StartTime: start},
		}
	}

	t.Run("same status is a no-op", func(t *testing.T) {
		b := newBooking(constants.BOOKING_CANCELLED)
		require.NoError(t, transitionBooking(b, constants.BOOKING_CANCELLED, after, true))
		assert.Equal(t, constants.BOOKING_CANCELLED, b.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		b := newBooking(constants.BOOKING_CANCELLED)
		err := transitionBooking(b, constants.BOOKING_PENDING, before, true)
		assert.ErrorIs(t, err, apperror.InvalidTransition)
		assert.Equal(t, constants.BOOKING_CANCELLED, b.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		err := transitionBooking(newBooking(constants.BOOKING_PENDING), "REFUNDED", before, true)
		assert.ErrorIs(t, err, apperror.InvalidInput)
	})

	t.Run("cancel after start is rejected when enforced", func(t *testing.T) {
		b := newBooking(constants.BOOKING_CONFIRMED)
		err := transitionBooking(b, constants.BOOKING_CANCELLED, after, true)
		assert.ErrorIs(t, err, apperror.InvalidState)
		assert.Equal(t, constants.BOOKING_CONFIRMED, b.Status)
	})

	t.Run("reconciliation cancels after start", func(t *testing.T) {
		b := newBooking(constants.BOOKING_PENDING)
		require.NoError(t, transitionBooking(b, constants.BOOKING_CANCELLED, after, false))
		assert.Equal(t, constants.BOOKING_CANCELLED, b.Status)
	})

	t.Run("complete after start is allowed", func(t *testing.T) {
		b := newBooking(constants.BOOKING_PENDING)
		require.NoError(t, transitionBooking(b, constants.BOOKING_COMPLETED, after, true))
		assert.Equal(t, constants.BOOKING_COMPLETED, b.Status)
	})
}

func TestBookingStatusFor(t *testing.T) {
	cases := map[string]string{
		constants.PAYMENT_PENDING:   constants.BOOKING_PENDING,
		constants.PAYMENT_COMPLETED: constants.BOOKING_COMPLETED,
		constants.PAYMENT_FAILED:    constants.BOOKING_CANCELLED,
		constants.PAYMENT_CANCELLED: constants.BOOKING_CANCELLED,
	}
	for payment, booking := range cases {
		got, err := bookingStatusFor(payment)
		require.NoError(t, err)
		assert.Equal(t, booking, got, payment)
	}

	_, err := bookingStatusFor("REFUNDED")
	assert.ErrorIs(t, err, apperror.InvalidState)
}
