package handler

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"

	"github.com/gofiber/fiber/v2"
)

// VNPay IPN acknowledgements.
const (
	vnpAckOK           = "00"
	vnpAckBadSignature = "97"
	vnpAckMalformed    = "99"
)

// Callback từ VNPay (trình duyệt)
func (h *Handler) VNPayReturn(c *fiber.Ctx) error {
	outcome, err := h.Payments.HandleCallback(c.UserContext(), constants.METHOD_VNPAY, "return", callbackRequest(c))
	return h.redirectResult(c, outcome, err)
}

// VNPayIPN is server-to-server. Once the signature checks out the gateway
// gets "00" even if the payment could not be applied; that failure is logged.
func (h *Handler) VNPayIPN(c *fiber.Ctx) error {
	_, err := h.Payments.HandleCallback(c.UserContext(), constants.METHOD_VNPAY, "ipn", callbackRequest(c))
	switch {
	case err == nil:
		return c.SendString(vnpAckOK)
	case apperror.KindOf(err) == apperror.KindInvalidSignature:
		return c.SendString(vnpAckBadSignature)
	default:
		return c.SendString(vnpAckMalformed)
	}
}
