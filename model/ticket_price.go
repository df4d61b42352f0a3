package model

// TicketPrice is one row of the price table. StartTime and EndTime are "HH:MM"
// in the cinema time zone; the window is [StartTime, EndTime) and wraps past
// midnight when EndTime < StartTime.
type TicketPrice struct {
	DTO
	SeatType  string  `gorm:"size:20;not null;index:idx_ticket_price_lookup" json:"seatType"`
	MovieType string  `gorm:"size:10;not null;index:idx_ticket_price_lookup" json:"movieType"`
	DayType   string  `gorm:"size:10;not null;index:idx_ticket_price_lookup" json:"dayType"` // WEEKDAY, WEEKEND
	StartTime string  `gorm:"size:5;not null" json:"startTime"`
	EndTime   string  `gorm:"size:5;not null" json:"endTime"`
	Price     float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	IsActive  bool    `gorm:"not null;default:true" json:"isActive"`
}

// Covers reports whether clock ("HH:MM") falls inside the daily window.
func (p TicketPrice) Covers(clock string) bool {
	if p.StartTime == p.EndTime {
		return false
	}
	if p.StartTime < p.EndTime {
		return clock >= p.StartTime && clock < p.EndTime
	}
	return clock >= p.StartTime || clock < p.EndTime
}
