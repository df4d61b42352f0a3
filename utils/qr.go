package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// BookingQRContent is what the ticket QR encodes: the booking id, plus the
// gateway transaction id once a payment exists. Staff scan it at the door.
func BookingQRContent(bookingID uint, transactionID string) string {
	content := fmt.Sprintf("BOOKING:%d", bookingID)
	if transactionID != "" {
		content += "|TXN:" + transactionID
	}
	return content
}

// GenerateQRCode trả về ảnh PNG size x size của content
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
