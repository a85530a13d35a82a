package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	OrgDomain     string
	CORSOrigins   []string
	AuthRateRPS   float64
	AuthRateBurst int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "timetrack-backend"),
		OrgDomain:   fallback(os.Getenv("ORG_EMAIL_DOMAIN"), "wycliffeassociates.org"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	// tokens are valid for 8 hours unless overridden
	hours := fallback(os.Getenv("JWT_TTL_HOURS"), "8")
	if ttlHours, err := strconv.Atoi(hours); err == nil && ttlHours > 0 {
		cfg.JWTTTL = time.Duration(ttlHours) * time.Hour
	} else {
		cfg.JWTTTL = 8 * time.Hour
	}

	if rps, err := strconv.ParseFloat(fallback(os.Getenv("AUTH_RATE_RPS"), "5"), 64); err == nil && rps > 0 {
		cfg.AuthRateRPS = rps
	} else {
		cfg.AuthRateRPS = 5
	}
	if burst, err := strconv.Atoi(fallback(os.Getenv("AUTH_RATE_BURST"), "10")); err == nil && burst > 0 {
		cfg.AuthRateBurst = burst
	} else {
		cfg.AuthRateBurst = 10
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
