package middleware

import (
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const claimKey = "claim"

func tokenFrom(c *fiber.Ctx) string {
	token := c.Cookies("access_token")
	if token == "" {
		// check header Authorization: Bearer xxx
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return token
}

func Protected(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": constants.MISSING_TOKEN,
				"error":   "no token",
			})
		}

		jwtToken, err := helper.ParseToken(token, secret)
		if err != nil {
			return unauthorized(c, err)
		}
		claim, ok := helper.ClaimFromToken(jwtToken)
		if !ok {
			return unauthorized(c, errors.New("malformed claims"))
		}

		c.Locals("user", jwtToken)
		c.Locals(claimKey, claim)
		return c.Next()
	}
}

// OptionalJWT reads the token when present; an absent or bad token leaves
// the request anonymous.
func OptionalJWT(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return c.Next()
		}
		jwtToken, err := helper.ParseToken(token, secret)
		if err != nil {
			return c.Next()
		}
		if claim, ok := helper.ClaimFromToken(jwtToken); ok {
			c.Locals("user", jwtToken)
			c.Locals(claimKey, claim)
		}
		return c.Next()
	}
}

// AdminOnly must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, ok := CurrentUser(c)
		if !ok || claim.Role != constants.ROLE_ADMIN {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": constants.NOT_ADMIN,
				"error":   "Unauthorized",
			})
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) (model.TokenClaim, bool) {
	claim, ok := c.Locals(claimKey).(model.TokenClaim)
	return claim, ok
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": constants.INVALID_TOKEN,
		"error":   err.Error(),
	})
}
