package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	SecretKey   string
	DatabaseURL string
	GinMode     string
	LogLevel    string
	WakeTimeout time.Duration
	TLSCertFile string
	TLSKeyFile  string
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:        8080,
		GinMode:     "release",
		LogLevel:    "info",
		WakeTimeout: 5 * time.Second,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	cfg.SecretKey = env.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		return Config{}, fmt.Errorf("SECRET_KEY is required")
	}

	cfg.DatabaseURL = env.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}
	if raw := env.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	// The wake acknowledgement deadline is policy, not protocol.
	if raw := env.Getenv("WAKE_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid WAKE_TIMEOUT_SECONDS")
		}
		cfg.WakeTimeout = time.Duration(seconds) * time.Second
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	return cfg, nil
}
