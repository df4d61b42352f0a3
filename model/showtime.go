package model

import "time"

type Showtime struct {
	DTO
	MovieID   uint      `gorm:"not null;index" json:"movieId"`
	Movie     Movie     `gorm:"foreignKey:MovieID" json:"movie"`
	ScreenID  uint      `gorm:"not null;index" json:"screenId"`
	Screen    Screen    `gorm:"foreignKey:ScreenID" json:"screen"`
	StartTime time.Time `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time `gorm:"not null;check:chk_showtime_window,end_time > start_time" json:"endTime"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	Price     float64   `gorm:"type:decimal(12,2);default:0" json:"price"` // dùng khi không có bảng giá
}

func (s Showtime) HasStarted(now time.Time) bool {
	return !now.Before(s.StartTime)
}
