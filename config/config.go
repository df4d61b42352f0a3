package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var loadEnvOnce sync.Once

// Config returns the value of an environment variable, loading .env on first use.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using system environment")
		}
	})
	return os.Getenv(key)
}

type Settings struct {
	App      AppSettings      `yaml:"app"`
	Database DatabaseSettings `yaml:"database"`
	Redis    RedisSettings    `yaml:"redis"`
	VNPay    VNPaySettings    `yaml:"vnpay"`
	MoMo     MoMoSettings     `yaml:"momo"`
	Booking  BookingSettings  `yaml:"booking"`
}

type AppSettings struct {
	Env         string `yaml:"env"`
	Port        string `yaml:"port"`
	AppURL      string `yaml:"app_url"`
	FrontendURL string `yaml:"frontend_url"`
	TimeZone    string `yaml:"time_zone"`
	JWTSecret   string `yaml:"jwt_secret"`
	CorsOrigins string `yaml:"cors_origins"`
}

type DatabaseSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Seed     bool   `yaml:"seed"`
}

func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type VNPaySettings struct {
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	URL        string `yaml:"url"`
}

type MoMoSettings struct {
	PartnerCode string `yaml:"partner_code"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Endpoint    string `yaml:"endpoint"`
}

type BookingSettings struct {
	PaymentTTLMinutes     int `yaml:"payment_ttl_minutes"`
	SeatLockSeconds       int `yaml:"seat_lock_seconds"`
	GatewayTimeoutSeconds int `yaml:"gateway_timeout_seconds"`
}

func (b BookingSettings) PaymentTTL() time.Duration {
	return time.Duration(b.PaymentTTLMinutes) * time.Minute
}

func (b BookingSettings) SeatLockTTL() time.Duration {
	return time.Duration(b.SeatLockSeconds) * time.Second
}

func (b BookingSettings) GatewayTimeout() time.Duration {
	return time.Duration(b.GatewayTimeoutSeconds) * time.Second
}

// Location resolves the cinema time zone, falling back to a fixed ICT offset
// when the tz database is not available in the container.
func (a AppSettings) Location() *time.Location {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.FixedZone("ICT", 7*3600)
	}
	return loc
}

func defaults() Settings {
	return Settings{
		App: AppSettings{
			Env:         "production",
			Port:        "8002",
			AppURL:      "http://localhost:8002",
			FrontendURL: "http://localhost:5173",
			TimeZone:    "Asia/Ho_Chi_Minh",
			CorsOrigins: "http://localhost:5173",
		},
		Database: DatabaseSettings{Host: "localhost", Port: 5432, SSLMode: "disable"},
		Redis:    RedisSettings{Addr: "localhost:6379"},
		VNPay:    VNPaySettings{URL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"},
		MoMo:     MoMoSettings{Endpoint: "https://test-payment.momo.vn/v2/gateway/api/create"},
		Booking: BookingSettings{
			PaymentTTLMinutes:     15,
			SeatLockSeconds:       10,
			GatewayTimeoutSeconds: 10,
		},
	}
}

// Load builds Settings from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables, in that order.
func Load() (*Settings, error) {
	cfg := defaults()

	if path := Config("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Settings) error {
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.Port, "PORT")
	setString(&cfg.App.AppURL, "APP_URL")
	setString(&cfg.App.FrontendURL, "FRONTEND_URL")
	setString(&cfg.App.TimeZone, "TZ_NAME")
	setString(&cfg.App.JWTSecret, "JWT_SECRET")
	setString(&cfg.App.CorsOrigins, "CORS_ORIGINS")

	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	if err := setInt(&cfg.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if v := Config("DB_SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse DB_SEED: %w", err)
		}
		cfg.Database.Seed = seed
	}

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&cfg.VNPay.TmnCode, "VNP_TMNCODE")
	setString(&cfg.VNPay.HashSecret, "VNP_HASHSECRET")
	setString(&cfg.VNPay.URL, "VNP_URL")

	setString(&cfg.MoMo.PartnerCode, "MOMO_PARTNER_CODE")
	setString(&cfg.MoMo.AccessKey, "MOMO_ACCESS_KEY")
	setString(&cfg.MoMo.SecretKey, "MOMO_SECRET_KEY")
	setString(&cfg.MoMo.Endpoint, "MOMO_ENDPOINT")

	if err := setInt(&cfg.Booking.PaymentTTLMinutes, "PAYMENT_TTL_MINUTES"); err != nil {
		return err
	}
	if err := setInt(&cfg.Booking.SeatLockSeconds, "SEAT_LOCK_SECONDS"); err != nil {
		return err
	}
	return setInt(&cfg.Booking.GatewayTimeoutSeconds, "GATEWAY_TIMEOUT_SECONDS")
}

func setString(dst *string, key string) {
	if v := Config(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := Config(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = n
	return nil
}
