package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	// Embed tzdata so REPORT_TIMEZONE works without system zoneinfo.
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Cursor modes accepted by PHAB_CURSOR_MODE.
const (
	CursorModeTruthy   = "truthy"
	CursorModeExplicit = "explicit"
)

var (
	errAPITokenRequired   = errors.New("PHAB_API_TOKEN is required")
	errInvalidCursorMode  = errors.New("invalid cursor mode")
	errInvalidConcurrency = errors.New("concurrency must be at least 1")
	errInvalidRPS         = errors.New("rps must not be negative")
	errInvalidPageSize    = errors.New("gerrit page size must be positive")
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Phabricator PhabricatorConfig
	Gerrit      GerritConfig
	Report      ReportConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyPhabricatorAliases(cfg)

	return cfg, nil
}

// ValidatePhabricator checks the settings needed by the subscriptions command.
func (c *Config) ValidatePhabricator() error {
	p := c.Phabricator

	if strings.TrimSpace(p.APIToken) == "" {
		return errAPITokenRequired
	}

	if p.CursorMode != CursorModeTruthy && p.CursorMode != CursorModeExplicit {
		return fmt.Errorf("%w: %q (want %s or %s)", errInvalidCursorMode, p.CursorMode, CursorModeTruthy, CursorModeExplicit)
	}

	if p.Concurrency < 1 {
		return fmt.Errorf("%w: %d", errInvalidConcurrency, p.Concurrency)
	}

	if p.RPS < 0 {
		return fmt.Errorf("%w: %v", errInvalidRPS, p.RPS)
	}

	return nil
}

// ValidateGerrit checks the settings needed by the patches command.
func (c *Config) ValidateGerrit() error {
	if c.Gerrit.PageSize <= 0 {
		return fmt.Errorf("%w: %d", errInvalidPageSize, c.Gerrit.PageSize)
	}

	return nil
}

// Location resolves the report time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Report.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(c.Report.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading report timezone %q: %w", c.Report.Timezone, err)
		}

		return loc, nil
	}
}

func applyPhabricatorAliases(cfg *Config) {
	if !hasEnv("PHAB_API_TOKEN") {
		setStringFromEnv("PHABRICATOR_API_TOKEN", &cfg.Phabricator.APIToken)
	}

	if !hasEnv("PHAB_BASE_URL") {
		setStringFromEnv("PHABRICATOR_URL", &cfg.Phabricator.BaseURL)
	}

	if !hasEnv("PHAB_CONCURRENCY") {
		setIntFromEnv("PHABRICATOR_CONCURRENCY", &cfg.Phabricator.Concurrency)
	}

	if !hasEnv("PHAB_TIMEOUT") {
		setDurationFromEnv("PHABRICATOR_TIMEOUT", &cfg.Phabricator.Timeout)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

func setDurationFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}
