package helper

import (
	"cinema_booking/constants"
	"time"
)

type DayInfo struct {
	Date      time.Time
	Weekday   time.Weekday
	IsWeekend bool
	DayType   string // WEEKDAY, WEEKEND
	Clock     string // "HH:MM"
}

// ClassifyDay converts t into the cinema's local time and derives the fields
// the price table is keyed on.
func ClassifyDay(t time.Time, loc *time.Location) DayInfo {
	if loc != nil {
		t = t.In(loc)
	}
	info := DayInfo{
		Date:    t,
		Weekday: t.Weekday(),
		DayType: constants.DAY_WEEKDAY,
		Clock:   t.Format("15:04"),
	}

	switch info.Weekday {
	case time.Saturday, time.Sunday:
		info.IsWeekend = true
		info.DayType = constants.DAY_WEEKEND
	}
	return info
}
