package utils

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingQRContent(t *testing.T) {
	assert.Equal(t, "BOOKING:12|TXN:BK12-Ab3dE", BookingQRContent(12, "BK12-Ab3dE"))
	assert.Equal(t, "BOOKING:12", BookingQRContent(12, ""))
}

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode(BookingQRContent(12, "BK12-Ab3dE"), 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}
