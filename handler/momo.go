package handler

import (
	"bytes"
	"cinema_booking/constants"
	"cinema_booking/gateway"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) MoMoReturn(c *fiber.Ctx) error {
	outcome, err := h.Payments.HandleCallback(c.UserContext(), constants.METHOD_MOMO, "return", callbackRequest(c))
	return h.redirectResult(c, outcome, err)
}

// MoMoIPN accepts the notification as a GET query or a POST JSON body.
func (h *Handler) MoMoIPN(c *fiber.Ctx) error {
	req := callbackRequest(c)
	if c.Method() == fiber.MethodPost {
		params, err := momoBodyParams(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid body"})
		}
		req = gateway.CallbackRequest{Params: params}
	}

	if _, err := h.Payments.HandleCallback(c.UserContext(), constants.METHOD_MOMO, "ipn", req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Rejected"})
	}
	return c.JSON(fiber.Map{"message": "Success"})
}

// momoBodyParams flattens the IPN body to the strings MoMo signed.
// Numbers keep their wire form, e.g. amount 180000 not 1.8e+05.
func momoBodyParams(body []byte) (map[string]string, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	params := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			params[k] = ""
		case string:
			params[k] = t
		case json.Number:
			params[k] = t.String()
		default:
			params[k] = fmt.Sprint(t)
		}
	}
	return params, nil
}
