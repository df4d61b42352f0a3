// Package scheduler runs the background jobs: deactivating showtimes that
// have ended and expiring payments and bookings left PENDING too long.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ShowtimeDeactivator interface {
	DeactivateEndedShowtimes(ctx context.Context, now time.Time) (int64, error)
}

type PaymentExpirer interface {
	ExpireStalePayments(ctx context.Context, ttl time.Duration) (int, error)
}

type BookingExpirer interface {
	ExpireStaleBookings(ctx context.Context, ttl time.Duration) (int, error)
}

type Config struct {
	Location *time.Location
	// PaymentTTL is how long a payment or booking may stay PENDING.
	PaymentTTL time.Duration
	// ExpiryEvery is how often the expiry job runs.
	ExpiryEvery time.Duration
	// ShowtimeSpec is the cron spec of the showtime job.
	ShowtimeSpec string
}

type Scheduler struct {
	cfg       Config
	log       *zap.Logger
	showtimes ShowtimeDeactivator
	payments  PaymentExpirer
	bookings  BookingExpirer
	now       func() time.Time

	cron *cron.Cron
	jobs gocron.Scheduler
}

func New(cfg Config, log *zap.Logger, showtimes ShowtimeDeactivator, payments PaymentExpirer, bookings BookingExpirer) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("ICT", 7*3600)
	}
	if cfg.PaymentTTL <= 0 {
		cfg.PaymentTTL = 15 * time.Minute
	}
	if cfg.ExpiryEvery <= 0 {
		cfg.ExpiryEvery = time.Minute
	}
	if cfg.ShowtimeSpec == "" {
		// mỗi 5 phút
		cfg.ShowtimeSpec = "*/5 * * * *"
	}

	s := &Scheduler{
		cfg:       cfg,
		log:       log,
		showtimes: showtimes,
		payments:  payments,
		bookings:  bookings,
		now:       time.Now,
	}

	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)
	if _, err := s.cron.AddFunc(cfg.ShowtimeSpec, s.DeactivateShowtimes); err != nil {
		return nil, err
	}

	jobs, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, err
	}
	_, err = jobs.NewJob(
		gocron.DurationJob(cfg.ExpiryEvery),
		gocron.NewTask(s.ExpirePending),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("expire-pending-payments"),
	)
	if err != nil {
		_ = jobs.Shutdown()
		return nil, err
	}
	s.jobs = jobs
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.jobs.Start()
	s.log.Info("scheduler started",
		zap.String("showtimeSpec", s.cfg.ShowtimeSpec),
		zap.Duration("expiryEvery", s.cfg.ExpiryEvery),
		zap.Duration("paymentTTL", s.cfg.PaymentTTL),
	)
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	<-s.cron.Stop().Done()
	err := s.jobs.Shutdown()
	s.log.Info("scheduler stopped")
	return err
}

// DeactivateShowtimes closes showtimes whose end time has passed.
func (s *Scheduler) DeactivateShowtimes() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.showtimes.DeactivateEndedShowtimes(ctx, s.now())
	if err != nil {
		s.log.Error("deactivate ended showtimes", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("showtimes deactivated", zap.Int64("count", n))
	}
}

// ExpirePending fails stale PENDING payments first, which cancels their
// bookings, then cancels stale bookings that never got a payment.
func (s *Scheduler) ExpirePending() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	payments, err := s.payments.ExpireStalePayments(ctx, s.cfg.PaymentTTL)
	if err != nil {
		s.log.Error("expire stale payments", zap.Error(err))
	}
	bookings, err := s.bookings.ExpireStaleBookings(ctx, s.cfg.PaymentTTL)
	if err != nil {
		s.log.Error("expire stale bookings", zap.Error(err))
	}
	if payments > 0 || bookings > 0 {
		s.log.Info("pending expired", zap.Int("payments", payments), zap.Int("bookings", bookings))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
