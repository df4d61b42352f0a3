package validate

import (
	"cinema_booking/model"

	"github.com/gofiber/fiber/v2"
)

func Register() fiber.Handler { return body[model.RegisterInput]() }

func Login() fiber.Handler { return body[model.LoginInput]() }

func ReserveSeats() fiber.Handler { return body[model.ReserveSeatsInput]() }

func UpdateBookingStatus() fiber.Handler { return body[model.UpdateBookingStatusInput]() }

func ApplyCoupon() fiber.Handler { return body[model.ApplyCouponInput]() }

func ExchangeCoupon() fiber.Handler { return body[model.ExchangeCouponInput]() }

func CreatePayment() fiber.Handler { return body[model.CreatePaymentInput]() }
