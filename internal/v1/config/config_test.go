package config

import (
	"os"
	"strings"
	"testing"
)

func setupTestEnv(t *testing.T) func() {
	keys := []string{
		"PORT", "REDIS_ENABLED", "REDIS_ADDR", "GO_ENV", "LOG_LEVEL",
		"SCORE_CAP", "ROUND_CAP", "MAX_REDEAL_MULTIPLIER", "BOT_DECLARE_DELAY_MIN",
		"BOT_DECLARE_DELAY_MAX", "BOT_REDEAL_DELAY_MIN", "BOT_REDEAL_DELAY_MAX",
	}
	orig := map[string]string{}
	for _, k := range keys {
		orig[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	return func() {
		for k, v := range orig {
			if v != "" {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

func TestValidateEnv_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected PORT to default to '8080', got '%s'", cfg.Port)
	}
	if cfg.GoEnv != "production" {
		t.Errorf("expected GO_ENV to default to 'production', got '%s'", cfg.GoEnv)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LOG_LEVEL to default to 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.ScoreCap != 50 {
		t.Errorf("expected ScoreCap to default to 50, got %d", cfg.ScoreCap)
	}
	if cfg.RoundCap != 20 {
		t.Errorf("expected RoundCap to default to 20, got %d", cfg.RoundCap)
	}
	if cfg.MaxRedealMultiplier != 4 {
		t.Errorf("expected MaxRedealMultiplier to default to 4, got %d", cfg.MaxRedealMultiplier)
	}
	if cfg.InitialHandSize != 8 {
		t.Errorf("expected InitialHandSize to default to 8, got %d", cfg.InitialHandSize)
	}
}

func TestValidateEnv_InvalidPort(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "99999")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for invalid PORT, got nil")
	}
	if !strings.Contains(err.Error(), "PORT must be a valid port number") {
		t.Errorf("expected error about invalid PORT, got: %v", err)
	}
}

func TestValidateEnv_InvalidRedisAddr(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("REDIS_ENABLED", "true")
	os.Setenv("REDIS_ADDR", "invalid-format")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for invalid REDIS_ADDR, got nil")
	}
	if !strings.Contains(err.Error(), "REDIS_ADDR must be in format 'host:port'") {
		t.Errorf("expected error about REDIS_ADDR format, got: %v", err)
	}
}

func TestValidateEnv_RedisDefaultAddr(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("REDIS_ENABLED", "true")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected REDIS_ADDR to default to 'localhost:6379', got '%s'", cfg.RedisAddr)
	}
}

func TestValidateEnv_InvalidBotDelayBounds(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("BOT_DECLARE_DELAY_MIN", "2s")
	os.Setenv("BOT_DECLARE_DELAY_MAX", "1s")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for inverted bot delay bounds, got nil")
	}
	if !strings.Contains(err.Error(), "BOT_DECLARE_DELAY_MIN must be <= BOT_DECLARE_DELAY_MAX") {
		t.Errorf("expected error about bot delay bounds, got: %v", err)
	}
}

func TestValidateEnv_InvalidRedealCap(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("MAX_REDEAL_MULTIPLIER", "0")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for MAX_REDEAL_MULTIPLIER < 1, got nil")
	}
}

func TestRedactSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected string
	}{
		{"empty", "", ""},
		{"long secret", "this-is-a-very-long-secret-key", "this-is-***"},
		{"short secret", "short", "***"},
		{"exactly 8 chars", "12345678", "***"},
		{"9 chars", "123456789", "12345678***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redactSecret(tt.secret)
			if result != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestIsValidHostPort(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected bool
	}{
		{"valid localhost", "localhost:8080", true},
		{"valid IP", "127.0.0.1:3000", true},
		{"valid hostname", "example.com:443", true},
		{"missing port", "localhost", false},
		{"missing host", ":8080", false},
		{"invalid port", "localhost:99999", false},
		{"non-numeric port", "localhost:abc", false},
		{"multiple colons", "localhost:8080:9090", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isValidHostPort(tt.addr)
			if result != tt.expected {
				t.Errorf("isValidHostPort('%s') = %v, expected %v", tt.addr, result, tt.expected)
			}
		})
	}
}
