package config

import (
	"log/slog"
	"time"
)

type LogLeveler string

func (l LogLeveler) Level() slog.Level {
	var level slog.Level

	_ = level.UnmarshalText([]byte(l))

	return level
}

// Config holds the server configuration.
type Config struct {
	LogLevel   LogLeveler `mapstructure:"LOG_LEVEL"`
	HTTP       HTTP       `mapstructure:",squash"`
	Redis      Redis      `mapstructure:",squash"`
	BookingAPI BookingAPI `mapstructure:",squash"`
	Funnel     Funnel     `mapstructure:",squash"`
	Auth       Auth       `mapstructure:",squash"`
	RabbitMQ   RabbitMQ   `mapstructure:",squash"`
}

type HTTP struct {
	Port               int           `mapstructure:"HTTP_PORT"`
	Timeout            time.Duration `mapstructure:"HTTP_TIMEOUT"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

type Redis struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	Timeout  time.Duration `mapstructure:"REDIS_TIMEOUT"`
}

// BookingAPI is the remote booking service every funnel step calls.
type BookingAPI struct {
	BaseURL      string        `mapstructure:"BOOKING_API_BASE_URL"`
	Timeout      time.Duration `mapstructure:"BOOKING_API_TIMEOUT"`
	MaxRetries   int           `mapstructure:"BOOKING_API_MAX_RETRIES"`
	RateLimitRPS int           `mapstructure:"BOOKING_API_RATE_LIMIT"`
}

type Funnel struct {
	PollInterval         time.Duration `mapstructure:"SEARCH_POLL_INTERVAL"`
	MaxPollAttempts      int           `mapstructure:"SEARCH_MAX_POLL_ATTEMPTS"`
	SessionTTL           time.Duration `mapstructure:"FUNNEL_SESSION_TTL"`
	OrderCacheExpiration time.Duration `mapstructure:"ORDER_CACHE_EXPIRATION"`
	BookingLockTimeout   time.Duration `mapstructure:"BOOKING_LOCK_TIMEOUT"`
}

type Auth struct {
	JWTSecret string `mapstructure:"AUTH_JWT_SECRET"`
	LoginPath string `mapstructure:"AUTH_LOGIN_PATH"`
}

// RabbitMQ is optional. Without a URL booking events are dropped.
type RabbitMQ struct {
	URL          string `mapstructure:"RABBITMQ_URL"`
	BookingQueue string `mapstructure:"BOOKING_EVENT_QUEUE"`
}
