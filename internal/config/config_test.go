package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("PUBLIC_API_KEYS", "pub_a, pub_b")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("POLL_MAX_ATTEMPTS", "5")
	t.Setenv("POLL_DELAY_MS", "250")
	t.Setenv("POLL_ATTEMPT_TIMEOUT_MS", "1234")
	t.Setenv("RATE_LIMIT_RPM", "111")
	t.Setenv("RATE_LIMIT_BURST", "22")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[1] != "pub_b" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("origins wrong: %+v", cfg.AllowedOrigins)
	}
	b := cfg.Budget()
	if b.MaxAttempts != 5 || b.Delay != 250*time.Millisecond || b.AttemptTimeout != 1234*time.Millisecond {
		t.Fatalf("budget wrong: %+v", b)
	}
	if cfg.RateLimitRPM != 111 || cfg.RateLimitBurst != 22 {
		t.Fatalf("rate limit wrong: %+v", cfg)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxAttempts != 10 || cfg.PollDelay != 5*time.Second || cfg.AttemptTimeout != 30*time.Second {
		t.Fatalf("unexpected default budget: %+v", cfg.Budget())
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("default origins should be wildcard, got %v", cfg.AllowedOrigins)
	}
	if len(cfg.PublicAPIKeys) != 0 {
		t.Fatalf("expected auth off by default, got %v", cfg.PublicAPIKeys)
	}
	if got := cfg.MaxSequenceDuration(); got != 345*time.Second {
		t.Fatalf("MaxSequenceDuration=%v", got)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pollrelay.yaml")
	yaml := `
addr: ":7070"
allowed_origins: ["https://a.example", "https://b.example"]
poll:
  max_attempts: 3
  delay_ms: 100
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("POLL_DELAY_MS", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.MaxAttempts != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PollDelay != 42*time.Millisecond {
		t.Fatalf("env should override file, got %v", cfg.PollDelay)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins from file list wrong: %v", cfg.AllowedOrigins)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Setenv("POLL_MAX_ATTEMPTS", "0")
	t.Setenv("POLL_ATTEMPT_TIMEOUT_MS", "0")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "POLL_MAX_ATTEMPTS") || !strings.Contains(msg, "POLL_ATTEMPT_TIMEOUT_MS") {
		t.Fatalf("expected both problems reported, got %q", msg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestRead_RejectsNonNumericSettings(t *testing.T) {
	t.Setenv("POLL_DELAY_MS", "soon")
	t.Setenv("HISTORY_SIZE", "lots")

	_, err := Read("")
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("want 2 separate problems, got %d: %v", n, err)
	}
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "POLL_DELAY_MS") {
		t.Fatalf("Load should refuse the same settings, got %v", err)
	}
}

func TestValidate_LevelShutdownAndHistory(t *testing.T) {
	cfg, err := Read("")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	cfg.LogLevel = "loud"
	cfg.ShutdownGrace = 0
	cfg.HistorySize = 0

	errs := multierr.Errors(cfg.Validate())
	if len(errs) != 2 {
		t.Fatalf("want LOG_LEVEL and SHUTDOWN_TIMEOUT_MS problems only, got %v", errs)
	}
	msg := multierr.Combine(errs...).Error()
	if !strings.Contains(msg, "LOG_LEVEL") || !strings.Contains(msg, "SHUTDOWN_TIMEOUT_MS") {
		t.Fatalf("unexpected problems: %q", msg)
	}
}
