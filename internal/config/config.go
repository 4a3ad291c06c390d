package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	DBDSN         string
	JWTIssuer     string
	JWTSecret     string
	JWTTTL        time.Duration
	InternalToken string
	WSOrigin      string
	PriceFeedURL  string
	PriceTTL      time.Duration
	AgentsEnabled bool
	LogLevel      string
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.InternalToken = os.Getenv("INTERNAL_API_TOKEN")
	if c.InternalToken == "" {
		missing = append(missing, "INTERNAL_API_TOKEN")
	}
	c.WSOrigin = os.Getenv("WS_ORIGIN")
	if c.WSOrigin == "" {
		missing = append(missing, "WS_ORIGIN")
	}
	c.PriceFeedURL = os.Getenv("PRICE_FEED_URL")
	if c.PriceFeedURL == "" {
		missing = append(missing, "PRICE_FEED_URL")
	}
	priceTTL := os.Getenv("PRICE_TTL")
	if priceTTL == "" {
		c.PriceTTL = 10 * time.Second
	} else {
		d, err := time.ParseDuration(priceTTL)
		if err != nil {
			return c, err
		}
		c.PriceTTL = d
	}
	agents := os.Getenv("AGENTS_ENABLED")
	if agents == "" {
		c.AgentsEnabled = true
	} else {
		b, err := strconv.ParseBool(agents)
		if err != nil {
			return c, err
		}
		c.AgentsEnabled = b
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
