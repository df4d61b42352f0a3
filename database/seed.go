package database

import (
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type priceWindow struct {
	start, end string
	factor     float64
}

// Khung giờ trong ngày; khung cuối vắt qua nửa đêm.
var priceWindows = []priceWindow{
	{"08:00", "17:00", 0.85},
	{"17:00", "23:00", 1},
	{"23:00", "08:00", 0.7},
}

var basePrices = map[string]float64{
	constants.SEAT_STANDARD: 90000,
	constants.SEAT_VIP:      110000,
	constants.SEAT_SWEETBOX: 200000,
}

var movieTypeSurcharge = map[string]float64{
	constants.MOVIE_2D:   0,
	constants.MOVIE_3D:   30000,
	constants.MOVIE_IMAX: 60000,
	constants.MOVIE_4DX:  80000,
}

// buildTicketPrices returns one row per seat type, movie type, day type and
// window. Weekend rows cost 10% more.
func buildTicketPrices() []model.TicketPrice {
	prices := make([]model.TicketPrice, 0)
	for seatType, base := range basePrices {
		for movieType, surcharge := range movieTypeSurcharge {
			for _, dayType := range []string{constants.DAY_WEEKDAY, constants.DAY_WEEKEND} {
				weekend := 1.0
				if dayType == constants.DAY_WEEKEND {
					weekend = 1.1
				}
				for _, w := range priceWindows {
					prices = append(prices, model.TicketPrice{
						SeatType:  seatType,
						MovieType: movieType,
						DayType:   dayType,
						StartTime: w.start,
						EndTime:   w.end,
						Price:     roundThousand((base + surcharge) * w.factor * weekend),
						IsActive:  true,
					})
				}
			}
		}
	}
	return prices
}

func roundThousand(v float64) float64 {
	return float64(int64(v/1000+0.5)) * 1000
}

func SeedData(db *gorm.DB, log *zap.Logger) {
	hash, err := helper.HashPassword("123456cn")
	if err != nil {
		log.Error("cannot hash seed password", zap.Error(err))
		return
	}
	admin := model.User{Email: "admin@cinema.local", Password: hash, FullName: "Administration", Role: constants.ROLE_ADMIN}
	if err := db.Where(model.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		log.Error("failed to seed admin", zap.Error(err))
	}

	for _, name := range []string{constants.METHOD_VNPAY, constants.METHOD_MOMO} {
		method := model.PaymentMethod{Name: name, IsActive: true}
		if err := db.Where(model.PaymentMethod{Name: name}).FirstOrCreate(&method).Error; err != nil {
			log.Error("failed to seed payment method", zap.String("name", name), zap.Error(err))
		}
	}

	var priceCount int64
	db.Model(&model.TicketPrice{}).Count(&priceCount)
	if priceCount == 0 {
		if err := db.CreateInBatches(buildTicketPrices(), 50).Error; err != nil {
			log.Error("failed to seed ticket prices", zap.Error(err))
		}
	}

	coupons := []model.Coupon{
		{Code: "GIAM10", Name: "Giảm 10%", Value: 10, ExchangePoint: 50, DiscountType: constants.DISCOUNT_PERCENT, IsActive: true},
		{Code: "GIAM50K", Name: "Giảm 50.000đ", Value: 50000, ExchangePoint: 100, DiscountType: constants.DISCOUNT_FLAT, IsActive: true},
	}
	for i := range coupons {
		if err := db.Where(model.Coupon{Code: coupons[i].Code}).FirstOrCreate(&coupons[i]).Error; err != nil {
			log.Error("failed to seed coupon", zap.String("code", coupons[i].Code), zap.Error(err))
		}
	}

	seedDemoShowtime(db, log)
	log.Info("seed data ready")
}

// seedDemoShowtime creates one theater with a 5x8 screen and a showtime
// tomorrow evening, only on an empty database.
func seedDemoShowtime(db *gorm.DB, log *zap.Logger) {
	var theaterCount int64
	db.Model(&model.Theater{}).Count(&theaterCount)
	if theaterCount > 0 {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		theater := model.Theater{Name: "Cinema Hà Nội", Address: "72 Lê Thánh Tôn, Hoàn Kiếm"}
		if err := tx.Create(&theater).Error; err != nil {
			return err
		}
		screen := model.Screen{TheaterID: theater.ID, Name: "Phòng 1", RowCount: 5, ColumnCount: 8}
		if err := tx.Omit("Theater").Create(&screen).Error; err != nil {
			return err
		}

		seats := make([]model.Seat, 0, screen.RowCount*screen.ColumnCount)
		for r := 0; r < screen.RowCount; r++ {
			row := string(rune('A' + r))
			seatType := constants.SEAT_STANDARD
			switch {
			case r == screen.RowCount-1:
				seatType = constants.SEAT_SWEETBOX
			case r >= 2:
				seatType = constants.SEAT_VIP
			}
			for col := 1; col <= screen.ColumnCount; col++ {
				seats = append(seats, model.Seat{ScreenID: screen.ID, Row: row, Column: col, SeatType: seatType})
			}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}

		movie := model.Movie{Title: "Đào, Phở và Piano", MovieType: constants.MOVIE_2D, Duration: 100}
		if err := tx.Create(&movie).Error; err != nil {
			return err
		}

		tomorrow := time.Now().AddDate(0, 0, 1)
		start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 19, 0, 0, 0, time.Local)
		showtime := model.Showtime{
			MovieID:   movie.ID,
			ScreenID:  screen.ID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(movie.Duration+15) * time.Minute),
			IsActive:  true,
		}
		if err := tx.Omit("Movie", "Screen").Create(&showtime).Error; err != nil {
			return fmt.Errorf("showtime: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to seed demo showtime", zap.Error(err))
	}
}
