// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreDriver selects the record store: "memory" (default) or "postgres".
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required when
	// StoreDriver is "postgres".
	DatabaseURL string

	// SessionSecret signs session tokens. Required.
	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	BcryptCost int

	// MinPricePerDay is the lowest daily price a car may be listed at.
	MinPricePerDay int64

	// StrictTransitions rejects booking status jumps outside the lifecycle
	// table. Off by default: any declared status may be written.
	StrictTransitions bool

	MaxBodyBytes int64

	// DefaultLocale is used when Accept-Language matches nothing: "en" or "vi".
	DefaultLocale string

	// AMQPURL enables event publishing when set.
	AMQPURL      string
	AMQPExchange string

	// AdminUsername and AdminPassword, when both set, bootstrap an admin
	// account at startup.
	AdminUsername string
	AdminPassword string

	// SeedSampleData loads the embedded sample inventory into an empty store.
	SeedSampleData bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set and every
// variable that does not parse.
func Load() (Config, error) {
	p := &parser{}
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        p.duration("SESSION_TTL", 24*time.Hour),
		SessionCookie:     getEnv("SESSION_COOKIE", "rental_session"),
		CookieSecure:      p.boolean("COOKIE_SECURE", false),
		BcryptCost:        int(p.integer("BCRYPT_COST", 10)),
		MinPricePerDay:    p.integer("MIN_PRICE_PER_DAY", 100000),
		StrictTransitions: p.boolean("STRICT_TRANSITIONS", false),
		MaxBodyBytes:      p.integer("MAX_BODY_BYTES", 1<<20),
		DefaultLocale:     strings.ToLower(getEnv("DEFAULT_LOCALE", "en")),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "rentals"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		SeedSampleData:    p.boolean("SEED_SAMPLE_DATA", false),
	}

	var missing []string
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverPostgres:
	default:
		p.fail("STORE_DRIVER", cfg.StoreDriver, "want memory or postgres")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		p.fail("LOG_LEVEL", cfg.LogLevel, "want debug, info, warn or error")
	}
	switch cfg.DefaultLocale {
	case "en", "vi":
	default:
		p.fail("DEFAULT_LOCALE", cfg.DefaultLocale, "want en or vi")
	}
	if cfg.SessionTTL <= 0 {
		p.fail("SESSION_TTL", cfg.SessionTTL.String(), "must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		p.fail("MAX_BODY_BYTES", strconv.FormatInt(cfg.MaxBodyBytes, 10), "must be positive")
	}
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		p.fail("ADMIN_USERNAME/ADMIN_PASSWORD", "", "set both or neither")
	}

	var errs []string
	if len(missing) > 0 {
		errs = append(errs, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	errs = append(errs, p.problems...)
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// DatabaseURL returns DATABASE_URL or an error when it is unset. Commands
// that only touch the schema use it instead of Load.
func DatabaseURL() (string, error) {
	u := os.Getenv("DATABASE_URL")
	if u == "" {
		return "", fmt.Errorf("config: required environment variables not set: DATABASE_URL")
	}
	return u, nil
}

// parser collects malformed values so Load can report all of them at once.
type parser struct {
	problems []string
}

func (p *parser) fail(key, value, why string) {
	if value == "" {
		p.problems = append(p.problems, fmt.Sprintf("%s: %s", key, why))
		return
	}
	p.problems = append(p.problems, fmt.Sprintf("%s=%q: %s", key, value, why))
}

func (p *parser) integer(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, "not an integer")
		return fallback
	}
	return n
}

func (p *parser) boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, "not a boolean")
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, "not a duration")
		return fallback
	}
	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
