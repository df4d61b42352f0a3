package handler

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/gateway"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"
	"cinema_booking/validate"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	input, _ := validate.Input[model.CreatePaymentInput](c)

	result, err := h.Payments.CreatePayment(c.UserContext(), service.CreatePaymentRequest{
		BookingID:       input.BookingID,
		PaymentMethodID: input.PaymentMethodID,
		UserID:          userID(c),
		ClientIP:        c.IP(),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, result)
}

// callbackRequest captures the query both decoded and as it arrived.
func callbackRequest(c *fiber.Ctx) gateway.CallbackRequest {
	return gateway.CallbackRequest{
		Params:   c.Queries(),
		RawQuery: string(c.Request().URI().QueryString()),
	}
}

// redirectResult sends the browser back to the frontend. It never fails the
// request: every outcome ends on a result page.
func (h *Handler) redirectResult(c *fiber.Ctx, outcome *service.CallbackOutcome, verifyErr error) error {
	q := url.Values{}
	page := "/payment/failed"

	switch {
	case verifyErr != nil:
		q.Set("status", "INVALID")
		q.Set("code", string(apperror.KindOf(verifyErr)))
		q.Set("message", apperror.Message(verifyErr))
	case outcome.ReconcileErr != nil:
		q.Set("status", "ERROR")
		q.Set("transactionId", outcome.Result.TransactionID)
		q.Set("code", string(apperror.KindOf(outcome.ReconcileErr)))
		q.Set("message", apperror.Message(outcome.ReconcileErr))
	default:
		if outcome.Result.Status == constants.PAYMENT_COMPLETED {
			page = "/payment/success"
		}
		q.Set("status", outcome.Result.Status)
		q.Set("transactionId", outcome.Result.TransactionID)
		q.Set("code", outcome.Result.ResponseCode)
		q.Set("message", outcome.Result.Message)
	}
	return c.Redirect(h.FrontendURL+page+"?"+q.Encode(), fiber.StatusFound)
}
