package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	TokenKey    string
	DatabaseURL string
	TLSCert     string
	TLSKey      string
	RateLimit   float64
	RateBurst   int
	BatchLimit  int
}

func (c Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Accounts reports whether user accounts and saved history are enabled.
func (c Config) Accounts() bool { return c.DatabaseURL != "" }

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
	}

	var err error
	if cfg.RateLimit, err = strconv.ParseFloat(getenv("RATE_LIMIT", "1"), 64); err != nil || cfg.RateLimit <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be a positive number")
	}
	if cfg.RateBurst, err = strconv.Atoi(getenv("RATE_BURST", "5")); err != nil || cfg.RateBurst < 1 {
		return Config{}, fmt.Errorf("RATE_BURST must be a positive integer")
	}
	if cfg.BatchLimit, err = strconv.Atoi(getenv("BATCH_LIMIT", "500")); err != nil || cfg.BatchLimit < 1 {
		return Config{}, fmt.Errorf("BATCH_LIMIT must be a positive integer")
	}
	if cfg.Accounts() && cfg.TokenKey == "" {
		return Config{}, fmt.Errorf("TOKEN_KEY environment variable is not set")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
