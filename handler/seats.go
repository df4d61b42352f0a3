package handler

import (
	"cinema_booking/apperror"
	"cinema_booking/model"
	"cinema_booking/utils"
	"cinema_booking/validate"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetSeats is the public seat map. ?theaterId= narrows it to one theater.
func (h *Handler) GetSeats(c *fiber.Ctx) error {
	showtimeID := validate.ID(c)

	var theaterID *uint
	if raw := c.Query("theaterId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return h.fail(c, apperror.New(apperror.KindInvalidInput, "theaterId must be a number"))
		}
		id := uint(v)
		theaterID = &id
	}

	seatMap, err := h.Availability.GetSeatStatus(c.UserContext(), showtimeID, theaterID, false)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, seatMap)
}

// GetSeatsAdmin includes deleted seats.
func (h *Handler) GetSeatsAdmin(c *fiber.Ctx) error {
	showtimeID := validate.ID(c)
	seatMap, err := h.Availability.GetSeatStatus(c.UserContext(), showtimeID, nil, true)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, seatMap)
}

func (h *Handler) GetPrices(c *fiber.Ctx) error {
	showtimeID := validate.ID(c)
	var page model.Pagination
	if err := c.QueryParser(&page); err != nil {
		return h.fail(c, apperror.Wrap(apperror.KindInvalidInput, err, "invalid pagination"))
	}

	prices, err := h.Pricing.ApplicablePrices(c.UserContext(), showtimeID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, prices)
}
