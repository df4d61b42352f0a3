package database

import (
	"cinema_booking/model"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres. Duplicate-key and foreign-key violations come
// back as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		// bookings.payment_id và payments.booking_id trỏ vào nhau
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	log.Info("connection opened to database")
	return db, nil
}

var models = []any{
	&model.User{},
	&model.Theater{},
	&model.Screen{},
	&model.Seat{},
	&model.Movie{},
	&model.Showtime{},
	&model.TicketPrice{},
	&model.Booking{},
	&model.BookingSeat{},
	&model.PaymentMethod{},
	&model.Payment{},
	&model.Coupon{},
	&model.UserCoupon{},
}

// Indexes gorm tags cannot express.
var partialIndexes = []string{
	// một ghế chỉ được giữ bởi một booking còn hiệu lực trong mỗi suất chiếu
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_booking_seats_active ON booking_seats (showtime_id, seat_id) WHERE active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_seats_position ON seats (screen_id, "row", column_index) WHERE NOT is_deleted`,
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	log.Info("database migrated")
	return nil
}
