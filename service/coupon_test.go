package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reserveFor(t *testing.T, f *fixture, userID uint, seatIDs ...uint) uint {
	t.Helper()
	res, err := f.bookingService().Reserve(context.Background(), ReserveInput{
		ShowtimeID: f.showtime.ID,
		SeatIDs:    seatIDs,
		UserID:     uintPtr(userID),
	})
	require.NoError(t, err)
	return res.BookingID
}

func TestCouponService_Apply(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name         string
		couponID     uint
		code         string
		wantFinal    float64
		wantDiscount float64
	}{
		{"percent from name", 1, "GIAM10", 180000, 20000},
		{"flat amount", 2, "FLAT50K", 150000, 50000},
		{"flat discount floors at zero", 3, "MEGA", 0, 200000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewCouponService(f.store, zap.NewNop())
			bookingID := reserveFor(t, f, userAn, seatA1, seatA3)
			f.giveCoupon(userAn, tc.couponID)

			res, err := svc.Apply(ctx, bookingID, userAn, " "+tc.code+" ")
			require.NoError(t, err)
			assert.Equal(t, tc.wantFinal, res.FinalAmount)
			assert.Equal(t, tc.wantDiscount, res.DiscountAmount)

			b, err := f.store.GetBooking(ctx, bookingID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFinal, b.TotalPrice)
			require.NotNil(t, b.CouponID)
			assert.Equal(t, tc.couponID, *b.CouponID)
			assert.Zero(t, f.store.heldCount(userAn), "the held instance is consumed")
		})
	}
}

func TestCouponService_ApplyRejects(t *testing.T) {
	ctx := context.Background()

	t.Run("booking already discounted", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCouponService(f.store, zap.NewNop())
		bookingID := reserveFor(t, f, userAn, seatA1, seatA3)
		f.giveCoupon(userAn, 1)
		f.giveCoupon(userAn, 2)

		first, err := svc.Apply(ctx, bookingID, userAn, "GIAM10")
		require.NoError(t, err)
		require.Equal(t, 180000.0, first.FinalAmount)

		_, err = svc.Apply(ctx, bookingID, userAn, "FLAT50K")
		assert.ErrorIs(t, err, apperror.InvalidState)

		b, err := f.store.GetBooking(ctx, bookingID)
		require.NoError(t, err)
		assert.Equal(t, 180000.0, b.TotalPrice, "no second discount")
		require.NotNil(t, b.CouponID)
		assert.Equal(t, uint(1), *b.CouponID)
		assert.Equal(t, 1, f.store.heldCount(userAn), "FLAT50K is still held")
	})

	t.Run("coupon not held", func(t *testing.T) {
		f := newFixture(t)
		bookingID := reserveFor(t, f, userAn, seatA1)
		f.giveCoupon(userBinh, 1)

		_, err := NewCouponService(f.store, zap.NewNop()).Apply(ctx, bookingID, userAn, "GIAM10")
		assert.ErrorIs(t, err, apperror.NotFound)
		assert.Equal(t, 1, f.store.heldCount(userBinh))
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newFixture(t)
		bookingID := reserveFor(t, f, userAn, seatA1)
		f.giveCoupon(userBinh, 1)

		_, err := NewCouponService(f.store, zap.NewNop()).Apply(ctx, bookingID, userBinh, "GIAM10")
		assert.ErrorIs(t, err, apperror.Unauthorized)
		assert.Equal(t, 1, f.store.heldCount(userBinh), "a rejected apply keeps the coupon")
	})

	t.Run("booking not pending", func(t *testing.T) {
		f := newFixture(t)
		bookingID := reserveFor(t, f, userAn, seatA1)
		_, err := f.bookingService().Cancel(ctx, bookingID, userAn)
		require.NoError(t, err)
		f.giveCoupon(userAn, 1)

		_, err = NewCouponService(f.store, zap.NewNop()).Apply(ctx, bookingID, userAn, "GIAM10")
		assert.ErrorIs(t, err, apperror.InvalidState)
		assert.Equal(t, 1, f.store.heldCount(userAn))
	})

	t.Run("empty code", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewCouponService(f.store, zap.NewNop()).Apply(ctx, 1, userAn, "  ")
		assert.ErrorIs(t, err, apperror.InvalidInput)
	})
}

func TestCouponService_ConcurrentApplySpendsOnce(t *testing.T) {
	f := newFixture(t)
	svc := NewCouponService(f.store, zap.NewNop())
	ctx := context.Background()
	first := reserveFor(t, f, userAn, seatA1)
	second := reserveFor(t, f, userAn, seatA2)
	f.giveCoupon(userAn, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bookingID := range []uint{first, second} {
		wg.Add(1)
		go func(i int, bookingID uint) {
			defer wg.Done()
			_, errs[i] = svc.Apply(ctx, bookingID, userAn, "GIAM10")
		}(i, bookingID)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, apperror.NotFound)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "one held coupon discounts one booking")

	discounted := 0
	for _, id := range []uint{first, second} {
		b, err := f.store.GetBooking(ctx, id)
		require.NoError(t, err)
		if b.CouponID != nil {
			discounted++
			assert.Equal(t, 81000.0, b.TotalPrice)
		}
	}
	assert.Equal(t, 1, discounted)
}

func TestCouponService_Exchange(t *testing.T) {
	f := newFixture(t)
	svc := NewCouponService(f.store, zap.NewNop())
	ctx := context.Background()
	f.store.users[userAn].Points = 50

	held, err := svc.Exchange(ctx, userAn, "GIAM10")
	require.NoError(t, err)
	assert.Equal(t, "GIAM10", held.Coupon.Code)
	assert.Equal(t, 30, f.store.points(userAn))

	_, err = svc.Exchange(ctx, userAn, "FLAT50K")
	assert.ErrorIs(t, err, apperror.InvalidState)
	assert.Equal(t, 30, f.store.points(userAn))

	_, err = svc.Exchange(ctx, userAn, "NOPE")
	assert.ErrorIs(t, err, apperror.NotFound)

	bookingID := reserveFor(t, f, userAn, seatA1, seatA3)
	res, err := svc.Apply(ctx, bookingID, userAn, "GIAM10")
	require.NoError(t, err)
	assert.Equal(t, 180000.0, res.FinalAmount)
	assert.Equal(t, constants.BOOKING_PENDING, mustBooking(t, f, bookingID).Status)
}
