package handler

import (
	"cinema_booking/constants"
	"cinema_booking/middleware"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"
	"cinema_booking/validate"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const qrSize = 256

// ReserveSeats works for guests too; the booking is claimed when paid.
func (h *Handler) ReserveSeats(c *fiber.Ctx) error {
	input, _ := validate.Input[model.ReserveSeatsInput](c)

	var owner *uint
	if id := userID(c); id != 0 {
		owner = &id
	}
	result, err := h.Bookings.Reserve(c.UserContext(), service.ReserveInput{
		ShowtimeID: input.ShowtimeID,
		SeatIDs:    input.SeatIDs,
		UserID:     owner,
		Notes:      input.Notes,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, result)
}

func (h *Handler) GetBooking(c *fiber.Ctx) error {
	bookingID := validate.ID(c)
	claim, _ := middleware.CurrentUser(c)

	booking, err := h.Bookings.GetBooking(c.UserContext(), bookingID, claim.UserId, claim.Role == constants.ROLE_ADMIN)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, h.bookingResponse(booking))
}

func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	bookingID := validate.ID(c)
	booking, err := h.Bookings.Cancel(c.UserContext(), bookingID, userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, h.bookingResponse(booking))
}

func (h *Handler) UpdateBookingStatus(c *fiber.Ctx) error {
	bookingID := validate.ID(c)
	input, _ := validate.Input[model.UpdateBookingStatusInput](c)

	booking, err := h.Bookings.UpdateStatus(c.UserContext(), bookingID, input.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, h.bookingResponse(booking))
}

func (h *Handler) ApplyCoupon(c *fiber.Ctx) error {
	bookingID := validate.ID(c)
	input, _ := validate.Input[model.ApplyCouponInput](c)

	result, err := h.Coupons.Apply(c.UserContext(), bookingID, userID(c), input.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

func (h *Handler) ExchangeCoupon(c *fiber.Ctx) error {
	input, _ := validate.Input[model.ExchangeCouponInput](c)

	held, err := h.Coupons.Exchange(c.UserContext(), userID(c), input.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, held)
}

func (h *Handler) bookingResponse(b *model.Booking) model.BookingResponse {
	var resp model.BookingResponse
	if err := copier.Copy(&resp, b); err != nil {
		h.Log.Warn("copy booking", zap.Uint("bookingId", b.ID), zap.Error(err))
	}
	resp.Seats = lo.Map(b.Seats, func(s model.BookingSeat, _ int) model.BookingSeatResponse {
		return model.BookingSeatResponse{SeatID: s.SeatID, Label: s.Seat.Label(), SeatType: s.Seat.SeatType}
	})

	// vé chỉ có QR khi đã thanh toán
	if b.Status == constants.BOOKING_COMPLETED {
		var txn string
		if b.Payment != nil {
			txn = b.Payment.TransactionID
		}
		png, err := utils.GenerateQRCode(utils.BookingQRContent(b.ID, txn), qrSize)
		if err != nil {
			h.Log.Warn("generate booking qr", zap.Uint("bookingId", b.ID), zap.Error(err))
		} else {
			resp.QRCode = base64.StdEncoding.EncodeToString(png)
		}
	}
	return resp
}
