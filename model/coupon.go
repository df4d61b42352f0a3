package model

import "strings"

type Coupon struct {
	DTO
	Code          string  `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name          string  `gorm:"not null" json:"name"`
	Value         float64 `gorm:"type:decimal(12,2);not null" json:"value"`
	ExchangePoint int     `gorm:"not null;default:0" json:"exchangePoint"`
	DiscountType  string  `gorm:"size:10" json:"discountType"` // PERCENT, FLAT; rỗng thì đoán theo tên
	IsActive      bool    `gorm:"not null;default:true" json:"isActive"`
}

// IsPercent reports whether Value is a percentage. Coupons created before
// DiscountType existed carry a "%" in their name instead.
func (c Coupon) IsPercent() bool {
	switch strings.ToUpper(c.DiscountType) {
	case "PERCENT":
		return true
	case "FLAT":
		return false
	}
	return strings.Contains(c.Name, "%")
}

// UserCoupon is one held coupon instance. It is deleted when applied.
type UserCoupon struct {
	DTO
	UserID   uint   `gorm:"not null;index" json:"userId"`
	CouponID uint   `gorm:"not null;index" json:"couponId"`
	Coupon   Coupon `gorm:"foreignKey:CouponID" json:"coupon"`
}

type ApplyCouponInput struct {
	Code string `json:"code" validate:"required,max=50"`
}

type ExchangeCouponInput struct {
	Code string `json:"code" validate:"required,max=50"`
}

type CouponResult struct {
	BookingID      uint    `json:"bookingId"`
	FinalAmount    float64 `json:"finalAmount"`
	DiscountAmount float64 `json:"discountAmount"`
}
