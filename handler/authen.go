package handler

import (
	"cinema_booking/model"
	"cinema_booking/validate"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	input, _ := validate.Input[model.RegisterInput](c)

	user, err := h.Auth.Register(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   user,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input, _ := validate.Input[model.LoginInput](c)

	tokenData, err := h.Auth.Login(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	// set access token vào HTTPOnly cookie
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokenData.AccessToken,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(72 * time.Hour),
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   tokenData,
	})
}
