package config

import (
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"LOG_LEVEL":                "info",
	"HTTP_PORT":                8080,
	"HTTP_TIMEOUT":             "30s",
	"CORS_ALLOWED_ORIGINS":     "http://localhost:3000",
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_TIMEOUT":            "3s",
	"BOOKING_API_TIMEOUT":      "15s",
	"BOOKING_API_MAX_RETRIES":  2,
	"BOOKING_API_RATE_LIMIT":   10,
	"SEARCH_POLL_INTERVAL":     "5s",
	"SEARCH_MAX_POLL_ATTEMPTS": 12,
	"FUNNEL_SESSION_TTL":       "30m",
	"ORDER_CACHE_EXPIRATION":   "24h",
	"BOOKING_LOCK_TIMEOUT":     "30s",
	"AUTH_LOGIN_PATH":          "/login",
	"BOOKING_EVENT_QUEUE":      "booking.confirmed",
}

// MustInitConfig reads configFile when it exists and lets environment variables
// override it. Every mapstructure key of Config is bound to the environment, so
// keys without a default are still picked up from env alone.
func MustInitConfig(configFile string) Config {
	var (
		vpr = viper.New()
		cfg Config
	)

	for key, value := range defaults {
		vpr.SetDefault(key, value)
	}

	vpr.AutomaticEnv()
	vpr.SetConfigFile(configFile)
	vpr.SetConfigType("env")

	if err := vpr.ReadInConfig(); err != nil {
		slog.Warn("config file not loaded, using environment only",
			slog.String("file", configFile),
			slog.String("error", err.Error()))
	} else {
		slog.Info("config file loaded", slog.String("file", configFile))
	}

	for _, key := range envKeys(reflect.TypeOf(Config{})) {
		_ = vpr.BindEnv(key)
	}

	if err := vpr.Unmarshal(&cfg); err != nil {
		slog.Error("cannot unmarshal config", slog.String("error", err.Error()))
		panic(err)
	}

	return cfg
}

// envKeys lists the mapstructure keys of t, flattening squashed sections.
func envKeys(t reflect.Type) []string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string

	for i := range t.NumField() {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}

		squash := slices.Contains(strings.Split(opts, ","), "squash") || (name == "" && field.Anonymous)
		if squash && field.Type.Kind() == reflect.Struct {
			keys = append(keys, envKeys(field.Type)...)
			continue
		}

		if name != "" {
			keys = append(keys, name)
		}
	}

	return keys
}
