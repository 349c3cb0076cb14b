package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/pollrelay/internal/domain"
)

type Config struct {
	Addr           string        // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir         string        // logs directory
	LogLevel       string        // debug | info | warn | error
	LogDevelopment bool          // human-readable console output
	AllowedOrigins []string      // CORS allow-list; "*" allows any origin
	PublicAPIKeys  []string      // empty = no auth
	RateLimitRPM   int           // per client IP; 0 disables
	RateLimitBurst int           //
	HistorySize    int           // recent sequences kept for GET /api/polls
	SlackWebhook   string        // timeout alerts; empty disables
	ShutdownGrace  time.Duration // how long in-flight polls get on SIGTERM

	MaxAttempts    int
	PollDelay      time.Duration
	AttemptTimeout time.Duration
	MaxBodyBytes   int64
	UserAgent      string
}

// env var -> viper key
var envBindings = map[string]string{
	"addr":              "API_ADDR",
	"log_dir":           "LOG_DIR",
	"log_level":         "LOG_LEVEL",
	"log_development":   "LOG_DEVELOPMENT",
	"allowed_origins":   "ALLOWED_ORIGINS",
	"public_api_keys":   "PUBLIC_API_KEYS",
	"rate_limit_rpm":    "RATE_LIMIT_RPM",
	"rate_limit_burst":  "RATE_LIMIT_BURST",
	"history_size":      "HISTORY_SIZE",
	"slack_webhook_url": "SLACK_WEBHOOK_URL",
	"shutdown_ms":       "SHUTDOWN_TIMEOUT_MS",
	"poll.max_attempts": "POLL_MAX_ATTEMPTS",
	"poll.delay_ms":     "POLL_DELAY_MS",
	"poll.timeout_ms":   "POLL_ATTEMPT_TIMEOUT_MS",
	"poll.max_body":     "POLL_MAX_BODY_BYTES",
	"poll.user_agent":   "POLL_USER_AGENT",
}

func setDefaults(v *viper.Viper) {
	def := domain.DefaultBudget()
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("public_api_keys", "")
	v.SetDefault("rate_limit_rpm", 0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("history_size", 100)
	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("shutdown_ms", 60_000)
	v.SetDefault("poll.max_attempts", def.MaxAttempts)
	v.SetDefault("poll.delay_ms", def.Delay.Milliseconds())
	v.SetDefault("poll.timeout_ms", def.AttemptTimeout.Milliseconds())
	v.SetDefault("poll.max_body", 10<<20)
	v.SetDefault("poll.user_agent", "pollrelay/1.0")
}

// numeric keys are parsed strictly so "abc" is reported instead of read as 0
var intKeys = []string{
	"rate_limit_rpm", "rate_limit_burst", "history_size", "shutdown_ms",
	"poll.max_attempts", "poll.delay_ms", "poll.timeout_ms", "poll.max_body",
}

// Load reads defaults, then the optional config file at path (YAML, TOML or
// JSON by extension), then environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read is Load without Validate. Parse failures of numeric settings are
// combined with multierr.
func Read(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var err error
	num := make(map[string]int64, len(intKeys))
	for _, key := range intKeys {
		n, perr := cast.ToInt64E(v.Get(key))
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s must be an integer: %w", envBindings[key], perr))
		}
		num[key] = n
	}
	ms := func(key string) time.Duration { return time.Duration(num[key]) * time.Millisecond }

	cfg := Config{
		Addr:           v.GetString("addr"),
		LogDir:         v.GetString("log_dir"),
		LogLevel:       v.GetString("log_level"),
		LogDevelopment: v.GetBool("log_development"),
		AllowedOrigins: splitList(v.Get("allowed_origins")),
		PublicAPIKeys:  splitList(v.Get("public_api_keys")),
		RateLimitRPM:   int(num["rate_limit_rpm"]),
		RateLimitBurst: int(num["rate_limit_burst"]),
		HistorySize:    int(num["history_size"]),
		SlackWebhook:   v.GetString("slack_webhook_url"),
		ShutdownGrace:  ms("shutdown_ms"),
		MaxAttempts:    int(num["poll.max_attempts"]),
		PollDelay:      ms("poll.delay_ms"),
		AttemptTimeout: ms("poll.timeout_ms"),
		MaxBodyBytes:   num["poll.max_body"],
		UserAgent:      v.GetString("poll.user_agent"),
	}
	return cfg, err
}

// Validate reports every invalid knob at once; multierr.Errors splits the
// result.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("API_ADDR must not be empty"))
	}
	if c.MaxAttempts < 1 {
		err = multierr.Append(err, errors.New("POLL_MAX_ATTEMPTS must be >= 1"))
	}
	if c.PollDelay < 0 {
		err = multierr.Append(err, errors.New("POLL_DELAY_MS must be >= 0"))
	}
	if c.AttemptTimeout <= 0 {
		err = multierr.Append(err, errors.New("POLL_ATTEMPT_TIMEOUT_MS must be > 0"))
	}
	if c.MaxBodyBytes <= 0 {
		err = multierr.Append(err, errors.New("POLL_MAX_BODY_BYTES must be > 0"))
	}
	if c.LogLevel != "" {
		if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("LOG_LEVEL: %w", lerr))
		}
	}
	if c.HistorySize < 0 {
		err = multierr.Append(err, errors.New("HISTORY_SIZE must be >= 0"))
	}
	if c.ShutdownGrace <= 0 {
		err = multierr.Append(err, errors.New("SHUTDOWN_TIMEOUT_MS must be > 0"))
	}
	if c.RateLimitRPM < 0 {
		err = multierr.Append(err, errors.New("RATE_LIMIT_RPM must be >= 0"))
	}
	if c.RateLimitRPM > 0 && c.RateLimitBurst < 1 {
		err = multierr.Append(err, errors.New("RATE_LIMIT_BURST must be >= 1 when rate limiting"))
	}
	return err
}

// Budget is the per-sequence budget handed to the executor.
func (c Config) Budget() domain.PollBudget {
	return domain.PollBudget{
		MaxAttempts:    c.MaxAttempts,
		Delay:          c.PollDelay,
		AttemptTimeout: c.AttemptTimeout,
	}
}

// MaxSequenceDuration is the worst case wall time of one poll sequence.
func (c Config) MaxSequenceDuration() time.Duration {
	return time.Duration(c.MaxAttempts)*c.AttemptTimeout + time.Duration(c.MaxAttempts-1)*c.PollDelay
}

// splitList accepts "a,b" from the environment or a list from a config file.
func splitList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
