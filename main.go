package main

import (
	"cinema_booking/cache"
	"cinema_booking/config"
	"cinema_booking/database"
	"cinema_booking/gateway"
	"cinema_booking/handler"
	"cinema_booking/router"
	"cinema_booking/scheduler"
	"cinema_booking/service"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := newLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Settings, log *zap.Logger) error {
	if cfg.App.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	secret := []byte(cfg.App.JWTSecret)
	loc := cfg.App.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database.DSN(), log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}
	if cfg.Database.Seed {
		database.SeedData(db, log)
	}
	store := database.NewStore(db)

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	seatCache := cache.New(redisClient)

	registry := gateway.NewRegistry(
		gateway.NewVNPay(gateway.VNPayConfig{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			BaseURL:    cfg.VNPay.URL,
			ReturnURL:  cfg.App.AppURL + "/api/v1/payments/vnpay/return",
			Location:   loc,
		}, log),
		gateway.NewMoMo(gateway.MoMoConfig{
			PartnerCode: cfg.MoMo.PartnerCode,
			AccessKey:   cfg.MoMo.AccessKey,
			SecretKey:   cfg.MoMo.SecretKey,
			Endpoint:    cfg.MoMo.Endpoint,
			RedirectURL: cfg.App.AppURL + "/api/v1/payments/momo/return",
			IPNURL:      cfg.App.AppURL + "/api/v1/payments/momo/ipn",
			Timeout:     cfg.Booking.GatewayTimeout(),
		}, log),
	)

	pricing := service.NewPricingService(store, store, loc)
	bookings := service.NewBookingService(store, store, pricing, log,
		service.WithSeatLocker(seatCache, cfg.Booking.SeatLockTTL()),
		service.WithSeatNotifier(seatCache),
	)
	payments := service.NewPaymentService(store, registry, log,
		service.WithPaymentNotifier(seatCache),
		service.WithGatewayTimeout(cfg.Booking.GatewayTimeout()),
	)

	h := &handler.Handler{
		Auth:         service.NewAuthService(store, secret, log),
		Availability: service.NewAvailabilityService(store),
		Pricing:      pricing,
		Bookings:     bookings,
		Coupons:      service.NewCouponService(store, log),
		Payments:     payments,
		Feed:         seatCache,
		FrontendURL:  cfg.App.FrontendURL,
		Log:          log,
	}

	jobs, err := scheduler.New(scheduler.Config{
		Location:   loc,
		PaymentTTL: cfg.Booking.PaymentTTL(),
	}, log, store, payments, bookings)
	if err != nil {
		return err
	}
	jobs.Start()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))
	router.SetupRoutes(app, h, secret)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("port", cfg.App.Port))
		return app.Listen(":" + cfg.App.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		err := app.ShutdownWithTimeout(10 * time.Second)
		return errors.Join(err, jobs.Stop())
	})
	return g.Wait()
}
