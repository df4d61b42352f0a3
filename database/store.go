package database

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the postgres implementation of the service stores.
type Store struct {
	db *gorm.DB
}

var (
	_ service.ShowtimeStore = (*Store)(nil)
	_ service.BookingStore  = (*Store)(nil)
	_ service.PaymentStore  = (*Store)(nil)
	_ service.CouponStore   = (*Store)(nil)
	_ service.PriceStore    = (*Store)(nil)
	_ service.UserStore     = (*Store)(nil)
)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

func (s *Store) GetShowtime(ctx context.Context, id uint) (*model.Showtime, error) {
	var showtime model.Showtime
	err := s.db.WithContext(ctx).
		Preload("Movie").
		Preload("Screen").
		First(&showtime, id).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "showtime")
	}
	return &showtime, nil
}

func (s *Store) ListScreenSeats(ctx context.Context, screenID uint, includeDeleted bool) ([]model.Seat, error) {
	var seats []model.Seat
	query := s.db.WithContext(ctx).Where("screen_id = ?", screenID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if err := query.Order(`"row", column_index`).Find(&seats).Error; err != nil {
		return nil, utils.TranslateDBError(err, "seat")
	}
	return seats, nil
}

func (s *Store) ActiveSeatIDs(ctx context.Context, showtimeID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&model.BookingSeat{}).
		Where("showtime_id = ? AND active", showtimeID).
		Pluck("seat_id", &ids).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "booking seat")
	}
	return ids, nil
}

func (s *Store) DeactivateEndedShowtimes(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Showtime{}).
		Where("is_active AND end_time <= ?", now).
		Update("is_active", false)
	if res.Error != nil {
		return 0, utils.TranslateDBError(res.Error, "showtime")
	}
	return res.RowsAffected, nil
}

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return utils.TranslateDBError(err, "booking")
		}
		for i := range b.Seats {
			b.Seats[i].BookingID = b.ID
			b.Seats[i].ShowtimeID = b.ShowtimeID
			b.Seats[i].Active = true
		}
		if err := tx.Omit(clause.Associations).Create(&b.Seats).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Wrap(apperror.KindSeatConflict, err, constants.SEATS_ALREADY_BOOKED)
			}
			return utils.TranslateDBError(err, "booking seat")
		}
		return nil
	})
}

func (s *Store) GetBooking(ctx context.Context, id uint) (*model.Booking, error) {
	var b model.Booking
	err := s.db.WithContext(ctx).
		Preload("Seats.Seat").
		Preload("Showtime").
		Preload("Payment").
		First(&b, id).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "booking")
	}
	return &b, nil
}

// lockBooking takes the booking row lock, then loads what the services read.
func lockBooking(tx *gorm.DB, id uint) (*model.Booking, error) {
	var b model.Booking
	if err := tx.Clauses(forUpdate()).First(&b, id).Error; err != nil {
		return nil, utils.TranslateDBError(err, "booking")
	}
	if err := tx.Preload("Seat").Where("booking_id = ?", b.ID).Order("id").Find(&b.Seats).Error; err != nil {
		return nil, utils.TranslateDBError(err, "booking seat")
	}
	if err := tx.First(&b.Showtime, b.ShowtimeID).Error; err != nil {
		return nil, utils.TranslateDBError(err, "showtime")
	}
	if b.PaymentID != nil {
		var p model.Payment
		if err := tx.First(&p, *b.PaymentID).Error; err != nil {
			return nil, utils.TranslateDBError(err, "payment")
		}
		b.Payment = &p
	}
	return &b, nil
}

// saveBooking writes the mutable booking columns. Entering CANCELLED frees
// the seats for other bookings.
func saveBooking(tx *gorm.DB, b *model.Booking, prevStatus string) error {
	err := tx.Model(&model.Booking{}).Where("id = ?", b.ID).Updates(map[string]any{
		"status":      b.Status,
		"total_price": b.TotalPrice,
		"user_id":     b.UserID,
		"payment_id":  b.PaymentID,
		"coupon_id":   b.CouponID,
	}).Error
	if err != nil {
		return utils.TranslateDBError(err, "booking")
	}
	if b.Status == constants.BOOKING_CANCELLED && prevStatus != constants.BOOKING_CANCELLED {
		err := tx.Model(&model.BookingSeat{}).
			Where("booking_id = ? AND active", b.ID).
			Update("active", false).Error
		if err != nil {
			return utils.TranslateDBError(err, "booking seat")
		}
		for i := range b.Seats {
			b.Seats[i].Active = false
		}
	}
	return nil
}

func savePayment(tx *gorm.DB, p *model.Payment) error {
	err := tx.Model(&model.Payment{}).Where("id = ?", p.ID).Updates(map[string]any{
		"status":           p.Status,
		"payment_time":     p.PaymentTime,
		"gateway_response": p.GatewayResponse,
		"points_awarded":   p.PointsAwarded,
	}).Error
	return utils.TranslateDBError(err, "payment")
}

func (s *Store) UpdateBooking(ctx context.Context, id uint, update func(b *model.Booking) error) (*model.Booking, error) {
	var out *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		prevStatus := b.Status
		prevPayment := ""
		if b.Payment != nil {
			prevPayment = b.Payment.Status
		}

		if err := update(b); err != nil {
			return err
		}
		if err := saveBooking(tx, b, prevStatus); err != nil {
			return err
		}
		if b.Payment != nil && b.Payment.Status != prevPayment {
			if err := savePayment(tx, b.Payment); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListStaleBookings(ctx context.Context, before time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", constants.BOOKING_PENDING, before).
		Order("id").
		Find(&bookings).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "booking")
	}
	return bookings, nil
}

func (s *Store) GetPaymentMethod(ctx context.Context, id uint) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	if err := s.db.WithContext(ctx).First(&method, id).Error; err != nil {
		return nil, utils.TranslateDBError(err, "payment method")
	}
	return &method, nil
}

func (s *Store) AttachPayment(ctx context.Context, bookingID uint, prepare func(b *model.Booking) (*model.Payment, error)) (*model.Payment, error) {
	var out *model.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		prevStatus := b.Status

		p, err := prepare(b)
		if err != nil {
			return err
		}
		// lần thanh toán trước chưa xong thì hủy
		if b.Payment != nil && b.Payment.Status == constants.PAYMENT_PENDING {
			err := tx.Model(&model.Payment{}).
				Where("id = ? AND status = ?", b.Payment.ID, constants.PAYMENT_PENDING).
				Update("status", constants.PAYMENT_CANCELLED).Error
			if err != nil {
				return utils.TranslateDBError(err, "payment")
			}
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return utils.TranslateDBError(err, "payment")
		}

		paymentID := p.ID
		b.PaymentID = &paymentID
		if err := saveBooking(tx, b, prevStatus); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdatePayment(ctx context.Context, id uint, update func(p *model.Payment) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Payment
		if err := tx.Clauses(forUpdate()).First(&p, id).Error; err != nil {
			return utils.TranslateDBError(err, "payment")
		}
		if err := update(&p); err != nil {
			return err
		}
		return savePayment(tx, &p)
	})
}

// ReconcilePayment locks booking before payment, the same order every other
// writer uses.
func (s *Store) ReconcilePayment(ctx context.Context, transactionID string, apply func(p *model.Payment, b *model.Booking) (int, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var probe model.Payment
		if err := tx.Select("id", "booking_id").Where("transaction_id = ?", transactionID).First(&probe).Error; err != nil {
			return utils.TranslateDBError(err, "payment "+transactionID)
		}

		b, err := lockBooking(tx, probe.BookingID)
		if err != nil {
			return err
		}
		var p model.Payment
		if err := tx.Clauses(forUpdate()).First(&p, probe.ID).Error; err != nil {
			return utils.TranslateDBError(err, "payment")
		}
		prevStatus := b.Status

		points, err := apply(&p, b)
		if err != nil {
			return err
		}
		if err := saveBooking(tx, b, prevStatus); err != nil {
			return err
		}
		if err := savePayment(tx, &p); err != nil {
			return err
		}
		if points > 0 && b.UserID != nil {
			err := tx.Model(&model.User{}).
				Where("id = ?", *b.UserID).
				UpdateColumn("points", gorm.Expr("points + ?", points)).Error
			if err != nil {
				return utils.TranslateDBError(err, "user")
			}
		}
		return nil
	})
}

func (s *Store) ListStalePayments(ctx context.Context, before time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", constants.PAYMENT_PENDING, before).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "payment")
	}
	return payments, nil
}

func (s *Store) ConsumeCoupon(ctx context.Context, bookingID, userID uint, code string, apply func(b *model.Booking, coupon *model.Coupon) error) (*model.Booking, error) {
	var out *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}

		var held model.UserCoupon
		var coupon *model.Coupon
		err = tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "user_coupons"}}).
			Joins("JOIN coupons ON coupons.id = user_coupons.coupon_id").
			Where("user_coupons.user_id = ? AND coupons.code = ? AND coupons.is_active", userID, code).
			Order("user_coupons.id").
			Preload("Coupon").
			First(&held).Error
		switch {
		case err == nil:
			coupon = &held.Coupon
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return utils.TranslateDBError(err, "coupon")
		}

		prevStatus := b.Status
		if err := apply(b, coupon); err != nil {
			return err
		}
		if coupon == nil {
			return apperror.New(apperror.KindNotFound, "coupon %s is not held by user", code)
		}
		if err := saveBooking(tx, b, prevStatus); err != nil {
			return err
		}
		res := tx.Delete(&model.UserCoupon{}, held.ID)
		if res.Error != nil {
			return utils.TranslateDBError(res.Error, "coupon")
		}
		if res.RowsAffected != 1 {
			return apperror.New(apperror.KindNotFound, "coupon %s is not held by user", code)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ExchangeCoupon(ctx context.Context, userID uint, code string) (*model.UserCoupon, error) {
	var held model.UserCoupon
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon model.Coupon
		if err := tx.Where("code = ? AND is_active", code).First(&coupon).Error; err != nil {
			return utils.TranslateDBError(err, "coupon")
		}

		// trừ điểm có điều kiện, không cần khóa user
		res := tx.Model(&model.User{}).
			Where("id = ? AND points >= ?", userID, coupon.ExchangePoint).
			UpdateColumn("points", gorm.Expr("points - ?", coupon.ExchangePoint))
		if res.Error != nil {
			return utils.TranslateDBError(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
				return utils.TranslateDBError(err, "user")
			}
			if n == 0 {
				return apperror.New(apperror.KindNotFound, "user not found")
			}
			return apperror.New(apperror.KindInvalidState, "not enough points to exchange %s", code)
		}

		held = model.UserCoupon{UserID: userID, CouponID: coupon.ID}
		if err := tx.Omit(clause.Associations).Create(&held).Error; err != nil {
			return utils.TranslateDBError(err, "coupon")
		}
		held.Coupon = coupon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &held, nil
}

// FindTicketPrices matches rows whose [start_time, end_time) window holds
// q.Clock; a window with end before start wraps past midnight.
func (s *Store) FindTicketPrices(ctx context.Context, q service.PriceQuery, page model.Pagination) ([]model.TicketPrice, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.TicketPrice{}).
		Where("is_active AND movie_type = ? AND day_type = ?", q.MovieType, q.DayType).
		Where("((start_time < end_time AND start_time <= ? AND ? < end_time) OR (start_time > end_time AND (start_time <= ? OR ? < end_time)))",
			q.Clock, q.Clock, q.Clock, q.Clock)
	if q.SeatType != "" {
		query = query.Where("seat_type = ?", q.SeatType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.TranslateDBError(err, "ticket price")
	}
	var prices []model.TicketPrice
	err := utils.ApplyPagination(query, page.Limit, page.Page).
		Order("seat_type, start_time").
		Find(&prices).Error
	if err != nil {
		return nil, 0, utils.TranslateDBError(err, "ticket price")
	}
	return prices, total, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.New(apperror.KindInvalidInput, constants.EMAIL_EXISTS)
		}
		return utils.TranslateDBError(err, "user")
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, utils.TranslateDBError(err, "user")
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, utils.TranslateDBError(err, "user")
	}
	return &user, nil
}
