package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the TimeTrack service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	SessionTTL     time.Duration
	MaxPageSize    int
	AdminEmail     string
	AdminPassword  string
	ShutdownPeriod time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// the entries that are present. The bootstrap admin credentials are optional;
// when unset the service starts without seeding an account.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:timetrack.db?_pragma=foreign_keys(1)",
		SessionTTL:     24 * time.Hour,
		MaxPageSize:    100,
		ShutdownPeriod: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TIMETRACK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TIMETRACK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMETRACK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMETRACK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMETRACK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if sizeValue := strings.TrimSpace(os.Getenv("TIMETRACK_MAX_PAGE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "TIMETRACK_MAX_PAGE_SIZE")
		} else {
			cfg.MaxPageSize = size
		}
	}

	if periodValue := strings.TrimSpace(os.Getenv("TIMETRACK_SHUTDOWN_PERIOD")); periodValue != "" {
		period, err := time.ParseDuration(periodValue)
		if err != nil || period <= 0 {
			invalid = append(invalid, "TIMETRACK_SHUTDOWN_PERIOD")
		} else {
			cfg.ShutdownPeriod = period
		}
	}

	cfg.AdminEmail = strings.TrimSpace(os.Getenv("TIMETRACK_ADMIN_EMAIL"))
	cfg.AdminPassword = os.Getenv("TIMETRACK_ADMIN_PASSWORD")
	if cfg.AdminEmail == "" && cfg.AdminPassword != "" {
		invalid = append(invalid, "TIMETRACK_ADMIN_EMAIL")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		invalid = append(invalid, "TIMETRACK_ADMIN_PASSWORD")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
