package helper

import (
	"cinema_booking/constants"
	"cinema_booking/model"
	"math"
	"strings"
)

// Điểm thưởng cho mỗi ghế theo loại ghế
var seatPoints = map[string]int{
	constants.SEAT_STANDARD: 10,
	constants.SEAT_VIP:      15,
	constants.SEAT_SWEETBOX: 20,
}

// SeatPoints returns the loyalty points earned for one seat of the given type.
// Unknown types earn nothing.
func SeatPoints(seatType string) int {
	return seatPoints[strings.ToUpper(seatType)]
}

// BookingPoints sums SeatPoints over the booking's seats.
func BookingPoints(seats []model.BookingSeat) int {
	total := 0
	for _, s := range seats {
		q := s.Quantity
		if q <= 0 {
			q = 1
		}
		total += SeatPoints(s.Seat.SeatType) * q
	}
	return total
}

// ApplyDiscount returns the discounted total and the amount taken off.
// The result never goes below zero.
func ApplyDiscount(total float64, coupon model.Coupon) (final float64, discount float64) {
	if coupon.IsPercent() {
		discount = total * coupon.Value / 100
	} else {
		discount = coupon.Value
	}
	final = math.Max(total-discount, 0)
	return final, total - final
}

// ToGatewayAmount converts a stored VND amount to the integer the gateways sign.
func ToGatewayAmount(amount float64) int64 {
	return int64(math.Round(amount))
}
