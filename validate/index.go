package validate

import (
	"cinema_booking/constants"
	"cinema_booking/utils"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// InputKey is where validators leave the parsed body for the handler.
const InputKey = "input"

// IDKey holds the path id parsed by GetById.
const IDKey = "inputId"

func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.ParseUint(params, 10, 64)
		if err != nil || valueKey == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		// Save input to context locals
		c.Locals(IDKey, uint(valueKey))

		return c.Next()
	}
}

// body parses the JSON body into T, runs the struct tags and stores the
// result under InputKey.
func body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input T

		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": constants.ERROR_INPUT,
				"error":   fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": constants.ERROR_INPUT,
				"error":   err.Error(),
			})
		}

		c.Locals(InputKey, input)
		return c.Next()
	}
}

// Input returns what a validator stored. ok is false when the route has no
// validator for T.
func Input[T any](c *fiber.Ctx) (T, bool) {
	input, ok := c.Locals(InputKey).(T)
	return input, ok
}

// ID returns the path id stored by GetById, 0 when the route has none.
func ID(c *fiber.Ctx) uint {
	id, _ := c.Locals(IDKey).(uint)
	return id
}
