package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/model"
	"context"
	"sort"

	"github.com/samber/lo"
)

type AvailabilityService struct {
	showtimes ShowtimeStore
}

func NewAvailabilityService(showtimes ShowtimeStore) *AvailabilityService {
	return &AvailabilityService{showtimes: showtimes}
}

// GetSeatStatus returns every seat of the showtime's screen marked AVAILABLE or
// BOOKED, grouped by row. theaterID, when given, must own the screen.
// includeDeleted is the admin view.
func (s *AvailabilityService) GetSeatStatus(ctx context.Context, showtimeID uint, theaterID *uint, includeDeleted bool) (*model.SeatMap, error) {
	showtime, err := s.showtimes.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if showtime.Screen.ID == 0 || (showtime.Screen.IsDeleted && !includeDeleted) {
		return nil, apperror.New(apperror.KindNotFound, "screen not found")
	}
	if theaterID != nil && *theaterID != showtime.Screen.TheaterID {
		return nil, apperror.New(apperror.KindInvalidInput, "showtime does not belong to theater %d", *theaterID)
	}

	seats, err := s.showtimes.ListScreenSeats(ctx, showtime.ScreenID, includeDeleted)
	if err != nil {
		return nil, err
	}
	held, err := s.showtimes.ActiveSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	booked := lo.Associate(held, func(id uint) (uint, struct{}) { return id, struct{}{} })

	byRow := lo.GroupBy(seats, func(seat model.Seat) string { return seat.Row })
	rows := lo.Keys(byRow)
	sort.Strings(rows)

	result := &model.SeatMap{ShowtimeID: showtimeID, ScreenID: showtime.ScreenID, Rows: make([]model.SeatRow, 0, len(rows))}
	for _, row := range rows {
		rowSeats := byRow[row]
		sort.Slice(rowSeats, func(i, j int) bool { return rowSeats[i].Column < rowSeats[j].Column })

		statuses := lo.Map(rowSeats, func(seat model.Seat, _ int) model.SeatStatus {
			status := constants.SEAT_AVAILABLE
			if _, ok := booked[seat.ID]; ok {
				status = constants.SEAT_BOOKED
			}
			return model.SeatStatus{
				SeatID:    seat.ID,
				Row:       seat.Row,
				Column:    seat.Column,
				SeatType:  seat.SeatType,
				Status:    status,
				IsDeleted: seat.IsDeleted,
			}
		})
		result.Rows = append(result.Rows, model.SeatRow{Row: row, Seats: statuses})
	}
	return result, nil
}
