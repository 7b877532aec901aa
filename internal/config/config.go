package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinSessionTTL bounds SESSION_TTL from below; the idle-session janitor
// ticks at half the TTL.
const MinSessionTTL = time.Second

type Config struct {
	AgentBaseURL string
	AgentTimeout time.Duration

	Port        string
	ProfilePath string

	RateLimitPerMinute int
	SessionTTL         time.Duration

	Profile *Profile
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		AgentBaseURL:       os.Getenv("AGENT_BASE_URL"),
		Port:               os.Getenv("PORT"),
		ProfilePath:        os.Getenv("PROFILE_PATH"),
		RateLimitPerMinute: parseIntEnv("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	if cfg.AgentTimeout, err = parseDurationEnv("AGENT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.AgentBaseURL == "" {
		return nil, fmt.Errorf("required env var AGENT_BASE_URL is not set")
	}
	if cfg.SessionTTL < MinSessionTTL {
		return nil, fmt.Errorf("SESSION_TTL must be at least %s, got %s", MinSessionTTL, cfg.SessionTTL)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitPerMinute)
	}

	if cfg.ProfilePath != "" {
		cfg.Profile, err = LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
	} else {
		cfg.Profile = DefaultProfile()
	}

	return cfg, nil
}

func parseIntEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
