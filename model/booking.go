package model

type Booking struct {
	DTO
	UserID     *uint         `gorm:"index" json:"userId,omitempty"` // null until a payment claims it
	ShowtimeID uint          `gorm:"not null;index" json:"showtimeId"`
	Showtime   Showtime      `gorm:"foreignKey:ShowtimeID" json:"showtime"`
	Seats      []BookingSeat `gorm:"foreignKey:BookingID" json:"seats"`
	Status     string        `gorm:"size:20;not null;default:PENDING;index" json:"status"` // PENDING, CONFIRMED, CANCELLED, COMPLETED
	TotalPrice float64       `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	Notes      string        `gorm:"type:text" json:"notes"`
	PaymentID  *uint         `json:"paymentId,omitempty"`
	Payment    *Payment      `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	CouponID   *uint         `json:"couponId,omitempty"`
}

func (b Booking) OwnedBy(userID uint) bool {
	return b.UserID != nil && *b.UserID == userID
}

func (b Booking) SeatIDs() []uint {
	ids := make([]uint, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}

// BookingSeat is one held seat. ShowtimeID is copied from the booking so the
// partial unique index (showtime_id, seat_id) WHERE active can reject a second hold.
type BookingSeat struct {
	DTO
	BookingID  uint `gorm:"not null;index" json:"bookingId"`
	ShowtimeID uint `gorm:"not null" json:"showtimeId"`
	SeatID     uint `gorm:"not null" json:"seatId"`
	Seat       Seat `gorm:"foreignKey:SeatID" json:"seat"`
	Quantity   int  `gorm:"not null;default:1" json:"quantity"`
	Active     bool `gorm:"not null;default:true" json:"active"`
}

type ReserveSeatsInput struct {
	ShowtimeID uint   `json:"showtimeId" validate:"required,gt=0"`
	SeatIDs    []uint `json:"seatIds" validate:"required,min=1,dive,gt=0"`
	Notes      string `json:"notes" validate:"max=500"`
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

type ReserveResult struct {
	BookingID  uint    `json:"bookingId"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"totalPrice"`
}

type BookingSeatResponse struct {
	SeatID   uint   `json:"seatId"`
	Label    string `json:"label"`
	SeatType string `json:"seatType"`
}

type BookingResponse struct {
	ID         uint                  `json:"id"`
	ShowtimeID uint                  `json:"showtimeId"`
	Status     string                `json:"status"`
	TotalPrice float64               `json:"totalPrice"`
	Notes      string                `json:"notes"`
	PaymentID  *uint                 `json:"paymentId,omitempty"`
	CouponID   *uint                 `json:"couponId,omitempty"`
	Seats      []BookingSeatResponse `json:"seats" copier:"-"`
	QRCode     string                `json:"qrCode,omitempty" copier:"-"` // base64 PNG, chỉ khi COMPLETED
}
