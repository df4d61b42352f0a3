package validate

import (
	"cinema_booking/model"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveSeats(t *testing.T) {
	var got model.ReserveSeatsInput
	app := fiber.New()
	app.Post("/bookings", ReserveSeats(), func(c *fiber.Ctx) error {
		input, ok := Input[model.ReserveSeatsInput](c)
		require.True(t, ok)
		got = input
		return c.SendStatus(fiber.StatusCreated)
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"showtimeId":4,"seatIds":[11,12]}`, fiber.StatusCreated},
		{"no seats", `{"showtimeId":4,"seatIds":[]}`, fiber.StatusBadRequest},
		{"zero seat id", `{"showtimeId":4,"seatIds":[0]}`, fiber.StatusBadRequest},
		{"missing showtime", `{"seatIds":[11]}`, fiber.StatusBadRequest},
		{"not json", `seats please`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/bookings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
	assert.Equal(t, []uint{11, 12}, got.SeatIDs)
}

func TestGetById(t *testing.T) {
	app := fiber.New()
	app.Get("/bookings/:id", GetById("id"), func(c *fiber.Ctx) error {
		assert.Equal(t, uint(42), ID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	for path, want := range map[string]int{
		"/bookings/42":  fiber.StatusOK,
		"/bookings/0":   fiber.StatusBadRequest,
		"/bookings/abc": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestUpdateBookingStatus_RejectsUnknownStatus(t *testing.T) {
	app := fiber.New()
	app.Patch("/s", UpdateBookingStatus(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("PATCH", "/s", strings.NewReader(`{"status":"REFUNDED"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
