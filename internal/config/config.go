package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	// BackendBaseURL is the weather proxy serving forecasts and history.
	BackendBaseURL string        `validate:"required,url"`
	HTTPTimeout    time.Duration `validate:"gt=0"`

	Port        string `validate:"required,numeric"`
	IconBaseURL string `validate:"required,url"`

	ForecastDays      int               `validate:"min=1,max=16"`
	ForecastDayPolicy weather.DayPolicy `validate:"oneof=samples calendar"`

	// Outbound resilience. Zero retries and a zero rate disable each feature.
	GatewayMaxRetries    int           `validate:"min=0,max=10"`
	GatewayRetryInterval time.Duration `validate:"gt=0"`
	GatewayRateLimit     float64       `validate:"min=0"`
	GatewayRateBurst     int           `validate:"min=1"`

	// HistoryResyncInterval re-reads the history periodically (0 = off).
	HistoryResyncInterval time.Duration `validate:"min=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	DevMode  bool
}

// Load reads configuration from a .env file, if any, and the environment.
// The returned bool reports whether a .env file was loaded.
func Load() (*AppConfig, bool, error) {
	loadedEnv := godotenv.Load() == nil

	cfg, err := FromEnv()
	if err != nil {
		return nil, loadedEnv, err
	}
	return cfg, loadedEnv, nil
}

// FromEnv reads configuration from the environment with sensible defaults.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.BackendBaseURL = strings.TrimRight(getenvDefault("BACKEND_BASE_URL", "http://localhost:3001"), "/")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.IconBaseURL = getenvDefault("ICON_BASE_URL", "https://openweathermap.org/img/w")

	if cfg.ForecastDays, err = getenvInt("FORECAST_DAYS", weather.DefaultForecastDays); err != nil {
		return nil, err
	}
	cfg.ForecastDayPolicy = weather.DayPolicy(strings.ToLower(getenvDefault("FORECAST_DAY_POLICY", string(weather.PolicySamples))))

	if cfg.GatewayMaxRetries, err = getenvInt("GATEWAY_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.GatewayRetryInterval, err = getenvDuration("GATEWAY_RETRY_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.GatewayRateLimit, err = getenvFloat("GATEWAY_RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.GatewayRateBurst, err = getenvInt("GATEWAY_RATE_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.HistoryResyncInterval, err = getenvDuration("HISTORY_RESYNC_INTERVAL", 0); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	if cfg.DevMode, err = getenvBool("DEV_MODE", false); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := getenvDefault(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := getenvDefault(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenvDefault(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := getenvDefault(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
