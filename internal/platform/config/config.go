// Package config loads process configuration from environment variables with
// defaults that let the binary run locally without setup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all tunable parameters for the server process.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// JWTSigningKey signs and verifies access tokens (HS256).
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// AdmissionCost is the fixed credit amount debited per plan submission.
	// It is system-wide, never per-request.
	AdmissionCost int

	// MinLeadTime is how far in the future a plan's window must start.
	MinLeadTime time.Duration

	// PostgresDSN selects the postgres-backed stores when non-empty;
	// otherwise the in-memory stores are used.
	PostgresDSN string

	// Redis backs the credit ledger when configured.
	Redis RedisConfig

	LogLevel string
	SeedData bool
}

// RedisConfig carries connection settings for the optional Redis ledger store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		JWTIssuer:       "seaplan",
		TokenTTL:        time.Hour,
		AdmissionCost:   5,
		MinLeadTime:     48 * time.Hour,
		LogLevel:        "info",
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := defaults()
	var errs []error

	setString(&cfg.Addr, "SEAPLAN_ADDR")
	setDuration(&cfg.ShutdownTimeout, "SEAPLAN_SHUTDOWN_TIMEOUT", &errs)
	setDuration(&cfg.TokenTTL, "SEAPLAN_TOKEN_TTL", &errs)
	setInt(&cfg.AdmissionCost, "SEAPLAN_ADMISSION_COST", &errs)
	setDuration(&cfg.MinLeadTime, "SEAPLAN_MIN_LEAD_TIME", &errs)
	setString(&cfg.PostgresDSN, "SEAPLAN_PG_DSN")
	setString(&cfg.Redis.URL, "SEAPLAN_REDIS_URL")
	setString(&cfg.JWTIssuer, "SEAPLAN_JWT_ISSUER")

	cfg.JWTSigningKey = os.Getenv("SEAPLAN_JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Development default; must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	if v := os.Getenv("SEAPLAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.SeedData = strings.EqualFold(os.Getenv("SEAPLAN_SEED"), "true")

	if cfg.AdmissionCost <= 0 {
		errs = append(errs, fmt.Errorf("SEAPLAN_ADMISSION_COST must be > 0"))
	}
	if cfg.MinLeadTime < 0 {
		errs = append(errs, fmt.Errorf("SEAPLAN_MIN_LEAD_TIME must not be negative"))
	}

	return cfg, errors.Join(errs...)
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setInt(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}
