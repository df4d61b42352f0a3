package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"context"
	"strings"
	"time"
)

type PricingService struct {
	prices    PriceStore
	showtimes ShowtimeStore
	loc       *time.Location
}

func NewPricingService(prices PriceStore, showtimes ShowtimeStore, loc *time.Location) *PricingService {
	if loc == nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	return &PricingService{prices: prices, showtimes: showtimes, loc: loc}
}

// BasePrice finds the single active price row for the seat type, movie type
// and the day type and time of day of at.
func (s *PricingService) BasePrice(ctx context.Context, seatType, movieType string, at time.Time) (float64, error) {
	day := helper.ClassifyDay(at, s.loc)
	rows, _, err := s.prices.FindTicketPrices(ctx, PriceQuery{
		SeatType:  strings.ToUpper(seatType),
		MovieType: strings.ToUpper(movieType),
		DayType:   day.DayType,
		Clock:     day.Clock,
	}, model.Pagination{})
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, apperror.New(apperror.KindNotFound, constants.NO_TICKET_PRICE)
	}
	return rows[0].Price, nil
}

// ApplicablePrices lists the active price rows for every seat type at the
// showtime's start.
func (s *PricingService) ApplicablePrices(ctx context.Context, showtimeID uint, page model.Pagination) (*model.ResponseCustom, error) {
	showtime, err := s.showtimes.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	day := helper.ClassifyDay(showtime.StartTime, s.loc)
	rows, total, err := s.prices.FindTicketPrices(ctx, PriceQuery{
		MovieType: strings.ToUpper(showtime.Movie.MovieType),
		DayType:   day.DayType,
		Clock:     day.Clock,
	}, page)
	if err != nil {
		return nil, err
	}
	return &model.ResponseCustom{
		Rows:       rows,
		Limit:      page.Limit,
		Page:       page.Page,
		TotalCount: total,
	}, nil
}

// seatPrice resolves the price of one seat for a showtime, falling back to the
// showtime's own price when the table has no row for it.
func (s *PricingService) seatPrice(ctx context.Context, showtime *model.Showtime, seatType string) (float64, error) {
	price, err := s.BasePrice(ctx, seatType, showtime.Movie.MovieType, showtime.StartTime)
	if err == nil {
		return price, nil
	}
	if apperror.KindOf(err) == apperror.KindNotFound && showtime.Price > 0 {
		return showtime.Price, nil
	}
	return 0, err
}

// Total sums seat prices, resolving each seat type once.
func (s *PricingService) Total(ctx context.Context, showtime *model.Showtime, seats []model.Seat) (float64, error) {
	cache := make(map[string]float64)
	total := 0.0
	for _, seat := range seats {
		price, ok := cache[seat.SeatType]
		if !ok {
			var err error
			price, err = s.seatPrice(ctx, showtime, seat.SeatType)
			if err != nil {
				return 0, err
			}
			cache[seat.SeatType] = price
		}
		total += price
	}
	return total, nil
}
