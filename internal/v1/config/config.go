// Package config loads and validates process configuration from the
// environment, following the fail-fast-at-startup pattern used across this
// codebase: collect every violation, report them together, never partially
// start with a bad value.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds validated environment configuration for the server process.
type Config struct {
	// Defaults to 8080 when PORT is unset
	Port string

	// Optional, defaulted
	GoEnv    string
	LogLevel string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string

	AllowedOrigins string

	// Room tuning (§4.6, §5). ScoreCap, RoundCap, MaxRedealMultiplier,
	// InitialHandSize, RoundStartDelay and AnimationTimeout are loaded and
	// validated here, but the game and rules packages use their own
	// constants for these values.
	ScoreCap             int
	RoundCap             int
	MaxRedealMultiplier  int
	InitialHandSize      int
	RoundStartDelay      time.Duration
	AnimationTimeout     time.Duration
	BotDeclareDelayMin   time.Duration
	BotDeclareDelayMax   time.Duration
	BotRedealDelayMin    time.Duration
	BotRedealDelayMax    time.Duration
	RoomCleanupGrace     time.Duration
	MessageQueueCap      int
	EventLogRingCap      int

	// Rate limits (§5)
	RateLimitConnOpen  string
	RateLimitInbound   string
	RateLimitDeclare   string
	RateLimitPlay      string
}

// ValidateEnv validates all environment variables and returns a Config.
// Returns an error accumulating every violation found.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	} else if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
	}

	cfg.RedisEnabled = os.Getenv("REDIS_ENABLED") == "true"
	if cfg.RedisEnabled {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = "localhost:6379"
			slog.Warn("REDIS_ADDR not set, using default", "addr", cfg.RedisAddr)
		} else if !isValidHostPort(cfg.RedisAddr) {
			errs = append(errs, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got '%s')", cfg.RedisAddr))
		}
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}

	cfg.GoEnv = getEnvOrDefault("GO_ENV", "production")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.AllowedOrigins = getEnvOrDefault("ALLOWED_ORIGINS", "*")

	cfg.ScoreCap = getEnvIntOrDefault("SCORE_CAP", 50, &errs)
	cfg.RoundCap = getEnvIntOrDefault("ROUND_CAP", 20, &errs)
	cfg.MaxRedealMultiplier = getEnvIntOrDefault("MAX_REDEAL_MULTIPLIER", 4, &errs)
	cfg.InitialHandSize = getEnvIntOrDefault("INITIAL_HAND_SIZE", 8, &errs)
	cfg.MessageQueueCap = getEnvIntOrDefault("MESSAGE_QUEUE_CAP", 256, &errs)
	cfg.EventLogRingCap = getEnvIntOrDefault("EVENT_LOG_RING_CAP", 200, &errs)

	cfg.RoundStartDelay = getEnvDurationOrDefault("ROUND_START_DELAY", 5*time.Second, &errs)
	cfg.AnimationTimeout = getEnvDurationOrDefault("ANIMATION_TIMEOUT", 3*time.Second, &errs)
	cfg.BotDeclareDelayMin = getEnvDurationOrDefault("BOT_DECLARE_DELAY_MIN", 500*time.Millisecond, &errs)
	cfg.BotDeclareDelayMax = getEnvDurationOrDefault("BOT_DECLARE_DELAY_MAX", 1500*time.Millisecond, &errs)
	cfg.BotRedealDelayMin = getEnvDurationOrDefault("BOT_REDEAL_DELAY_MIN", 300*time.Millisecond, &errs)
	cfg.BotRedealDelayMax = getEnvDurationOrDefault("BOT_REDEAL_DELAY_MAX", 800*time.Millisecond, &errs)
	cfg.RoomCleanupGrace = getEnvDurationOrDefault("ROOM_CLEANUP_GRACE", 30*time.Second, &errs)

	cfg.RateLimitConnOpen = getEnvOrDefault("RATE_LIMIT_CONN_OPEN", "5-M")
	cfg.RateLimitInbound = getEnvOrDefault("RATE_LIMIT_INBOUND", "120-M")
	cfg.RateLimitDeclare = getEnvOrDefault("RATE_LIMIT_DECLARE", "10-M")
	cfg.RateLimitPlay = getEnvOrDefault("RATE_LIMIT_PLAY", "30-M")

	if cfg.BotDeclareDelayMin > cfg.BotDeclareDelayMax {
		errs = append(errs, "BOT_DECLARE_DELAY_MIN must be <= BOT_DECLARE_DELAY_MAX")
	}
	if cfg.BotRedealDelayMin > cfg.BotRedealDelayMax {
		errs = append(errs, "BOT_REDEAL_DELAY_MIN must be <= BOT_REDEAL_DELAY_MAX")
	}
	if cfg.MaxRedealMultiplier < 1 {
		errs = append(errs, "MAX_REDEAL_MULTIPLIER must be >= 1")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidatedConfig(cfg)
	return cfg, nil
}

func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	port, err := strconv.Atoi(parts[1])
	return err == nil && port >= 1 && port <= 65535
}

func logValidatedConfig(cfg *Config) {
	slog.Info("environment configuration validated",
		"port", cfg.Port,
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
		"redis_enabled", cfg.RedisEnabled,
		"redis_addr", redactSecret(cfg.RedisAddr),
		"score_cap", cfg.ScoreCap,
		"round_cap", cfg.RoundCap,
		"max_redeal_multiplier", cfg.MaxRedealMultiplier,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int, errs *[]string) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be an integer (got '%s')", key, raw))
		return defaultValue
	}
	return v
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be a valid duration (got '%s')", key, raw))
		return defaultValue
	}
	return v
}

// redactSecret redacts a secret-ish value, showing only the first 8 characters.
func redactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
