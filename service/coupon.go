package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"context"
	"strings"

	"go.uber.org/zap"
)

type CouponService struct {
	coupons CouponStore
	log     *zap.Logger
}

func NewCouponService(coupons CouponStore, log *zap.Logger) *CouponService {
	return &CouponService{coupons: coupons, log: log}
}

// Apply spends one held instance of code on the user's PENDING booking. The
// discount and the coupon consumption commit together or not at all.
func (s *CouponService) Apply(ctx context.Context, bookingID, userID uint, code string) (*model.CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "coupon code is required")
	}

	var result model.CouponResult
	_, err := s.coupons.ConsumeCoupon(ctx, bookingID, userID, code, func(b *model.Booking, coupon *model.Coupon) error {
		if !b.OwnedBy(userID) {
			return apperror.New(apperror.KindUnauthorized, "booking does not belong to user")
		}
		if coupon == nil {
			return apperror.New(apperror.KindNotFound, "coupon %s is not held by user", code)
		}
		if b.Status != constants.BOOKING_PENDING {
			return apperror.New(apperror.KindInvalidState, "coupon can only be applied to a pending booking")
		}
		// mỗi booking chỉ một coupon
		if b.CouponID != nil {
			return apperror.New(apperror.KindInvalidState, "booking already has a coupon")
		}
		// total của payment đang chờ sẽ lệch với số tiền mới
		if b.Payment != nil && b.Payment.Status == constants.PAYMENT_PENDING {
			return apperror.New(apperror.KindInvalidState, "booking has a payment in progress")
		}

		final, discount := helper.ApplyDiscount(b.TotalPrice, *coupon)
		b.TotalPrice = final
		couponID := coupon.ID
		b.CouponID = &couponID

		result = model.CouponResult{BookingID: b.ID, FinalAmount: final, DiscountAmount: discount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("coupon applied",
		zap.Uint("bookingId", bookingID),
		zap.Uint("userId", userID),
		zap.String("code", code),
		zap.Float64("discount", result.DiscountAmount),
	)
	return &result, nil
}

// Exchange trades loyalty points for one instance of the coupon.
func (s *CouponService) Exchange(ctx context.Context, userID uint, code string) (*model.UserCoupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "coupon code is required")
	}
	held, err := s.coupons.ExchangeCoupon(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	s.log.Info("coupon exchanged", zap.Uint("userId", userID), zap.String("code", code))
	return held, nil
}
