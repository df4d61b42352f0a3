package model

import "strconv"

// Seat is one position on a screen. (screen, row, column) is unique among
// non-deleted seats, enforced by a partial index created in database.Migrate.
type Seat struct {
	DTO
	ScreenID  uint   `gorm:"not null;index" json:"screenId"`
	Row       string `gorm:"size:5;not null" json:"row"`                        // e.g., "A", "B"
	Column    int    `gorm:"column:column_index;not null" json:"column"`        // e.g., 1, 2
	SeatType  string `gorm:"size:20;not null;default:STANDARD" json:"seatType"` // STANDARD, VIP, SWEETBOX
	IsDeleted bool   `gorm:"not null;default:false" json:"isDeleted"`
}

// Label renders the seat as shown on tickets, e.g. "A7".
func (s Seat) Label() string {
	return s.Row + strconv.Itoa(s.Column)
}

type SeatStatus struct {
	SeatID    uint   `json:"seatId"`
	Row       string `json:"row"`
	Column    int    `json:"column"`
	SeatType  string `json:"seatType"`
	Status    string `json:"status"` // AVAILABLE, BOOKED
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

type SeatRow struct {
	Row   string       `json:"row"`
	Seats []SeatStatus `json:"seats"`
}

type SeatMap struct {
	ShowtimeID uint      `json:"showtimeId"`
	ScreenID   uint      `json:"screenId"`
	Rows       []SeatRow `json:"rows"`
}

// SeatEvent is published on the realtime seat feed when holds change.
type SeatEvent struct {
	ShowtimeID uint   `json:"showtimeId"`
	SeatIDs    []uint `json:"seatIds"`
	Status     string `json:"status"`
}
