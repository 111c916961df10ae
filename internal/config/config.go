package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

// maxDurationSeconds caps second-valued settings at one year.
const maxDurationSeconds = 365 * 24 * 60 * 60

// Match modes for the public route allow-list.
const (
	MatchExact  = "exact"
	MatchPrefix = "prefix"
)

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultPublicRoutes are reachable without a bearer token.
var DefaultPublicRoutes = []string{
	"/api/health",
	"/api/auth/login",
	"/api/auth/register",
	"POST /api/leads",
}

type Config struct {
	Port       string
	Env        string
	AppVersion string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret     string
	TokenTTL      time.Duration
	PersistTokens bool
	PublicRoutes  []string
	PublicMatch   string

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	LeadRateLimitMax    int
	LeadRateLimitWindow time.Duration
	RateLimitBackend    string
	RedisURL            string

	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	tokenTTL, err := getEnvSeconds("AUTH_TOKEN_TTL_SECONDS", 3600)
	if err != nil {
		return Config{}, err
	}
	leadWindow, err := getEnvSeconds("LEAD_RATE_LIMIT_WINDOW_SECONDS", 600)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "mysql"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/datapulse?parseTime=true"),

		JWTSecret:     getEnv("JWT_SECRET", devJWTSecret),
		TokenTTL:      tokenTTL,
		PersistTokens: getEnvBool("AUTH_PERSIST_TOKENS", true),
		PublicRoutes:  getEnvList("AUTH_PUBLIC_ROUTES", DefaultPublicRoutes),
		PublicMatch:   strings.ToLower(getEnv("AUTH_PUBLIC_MATCH", MatchExact)),

		AuthRateLimitRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 5),
		AuthRateLimitBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 10),

		LeadRateLimitMax:    getEnvInt("LEAD_RATE_LIMIT_MAX", 5),
		LeadRateLimitWindow: leadWindow,
		RateLimitBackend:    strings.ToLower(getEnv("RATE_LIMIT_BACKEND", BackendMemory)),
		RedisURL:            getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL_SECONDS must be positive, got %s", c.TokenTTL)
	}
	switch c.DatabaseDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.PublicMatch {
	case MatchExact, MatchPrefix:
	default:
		return fmt.Errorf("unsupported AUTH_PUBLIC_MATCH %q", c.PublicMatch)
	}
	switch c.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst <= 0 {
		return errors.New("auth rate limit rps and burst must be positive")
	}
	if c.LeadRateLimitMax <= 0 || c.LeadRateLimitWindow <= 0 {
		return errors.New("lead rate limit max and window must be positive")
	}
	return nil
}

// UsesDevSecret reports whether the insecure fallback signing secret is in use.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvSeconds reads a whole number of seconds in (0, maxDurationSeconds].
func getEnvSeconds(key string, fallback int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 || n > maxDurationSeconds {
		return 0, fmt.Errorf("%s must be between 1 and %d seconds, got %q", key, maxDurationSeconds, v)
	}
	return time.Duration(n) * time.Second, nil
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvList splits a comma-separated variable, trimming blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
