package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	AuthTokenTTL  time.Duration
	RiskThreshold float64
	BudgetWindow  time.Duration
	TokenTTL      time.Duration
}

// Defaults, overridable via environment.
var (
	AuthTokenTTL = 30 * time.Minute
	BudgetWindow = 24 * time.Hour
	TokenTTL     = 5 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PRIVY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("PRIVY_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	riskThreshold := 0.7
	if s := os.Getenv("PRIVY_RISK_THRESHOLD"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 && v <= 1 {
			riskThreshold = v
		}
	}

	if s := os.Getenv("PRIVY_BUDGET_WINDOW"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			BudgetWindow = d
		}
	}

	if s := os.Getenv("PRIVY_TOKEN_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			TokenTTL = d
		}
	}

	if s := os.Getenv("PRIVY_AUTH_TOKEN_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			AuthTokenTTL = d
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		AuthTokenTTL:  AuthTokenTTL,
		RiskThreshold: riskThreshold,
		BudgetWindow:  BudgetWindow,
		TokenTTL:      TokenTTL,
	}
}
