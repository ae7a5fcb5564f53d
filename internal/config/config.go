package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string // dev / staging / prod
	HTTPAddr string

	// Tokens
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ActivationTokenTTL time.Duration

	// ActivationBaseURL is the confirm link prefix; the token is appended.
	ActivationBaseURL string

	// Password policy
	PasswordMinLength      int
	PasswordCommonListFile string

	// Rate limits (per route and identity)
	RateLimitLogin        int
	RateLimitRegistration int
	RateLimitResend       int
	RateLimitWindow       time.Duration

	// Infrastructure. Optional in dev, where in-process stores are used.
	DBAddr        string
	DBDebug       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

func Load() (*Config, error) {
	// .env is a local convenience only.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                    getEnv("ENV", "dev"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		PasswordCommonListFile: os.Getenv("PASSWORD_COMMON_LIST_FILE"),
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	cfg.ActivationBaseURL = os.Getenv("ACTIVATION_BASE_URL")
	if cfg.ActivationBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: ACTIVATION_BASE_URL")
	}
	if u, err := url.Parse(cfg.ActivationBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("ACTIVATION_BASE_URL must be an absolute http(s) URL: %q", cfg.ActivationBaseURL)
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ActivationTokenTTL, err = getDuration("ACTIVATION_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.PasswordMinLength, err = getInt("PASSWORD_MIN_LENGTH", 8); err != nil {
		return nil, err
	}
	if cfg.PasswordMinLength < 1 {
		return nil, fmt.Errorf("PASSWORD_MIN_LENGTH must be positive, got %d", cfg.PasswordMinLength)
	}

	if cfg.RateLimitLogin, err = getInt("RATE_LIMIT_LOGIN", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRegistration, err = getInt("RATE_LIMIT_REGISTRATION", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitResend, err = getInt("RATE_LIMIT_RESEND", 3); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	// Outside dev the service cannot run without its backing services, so
	// fail fast instead of starting half-initialized.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.DBDebug = os.Getenv("DB_DEBUG") == "true"
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if !cfg.IsDev() {
		for key, v := range map[string]string{
			"DB_ADDR":    cfg.DBAddr,
			"REDIS_ADDR": cfg.RedisAddr,
			"RABBIT_URL": cfg.RabbitURL,
		} {
			if v == "" {
				return nil, fmt.Errorf("missing required env var: %s", key)
			}
		}
	}
	if cfg.DBAddr != "" && !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, fmt.Errorf("DB_ADDR must be a postgres URL")
	}

	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
