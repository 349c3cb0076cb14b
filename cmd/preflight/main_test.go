package main

import (
	"strings"
	"testing"
)

func TestCheck_MatchesConfigRules(t *testing.T) {
	// config accepts HISTORY_SIZE=0 (falls back to the default ring size)
	t.Setenv("HISTORY_SIZE", "0")
	if _, problems := check(""); len(problems) != 0 {
		t.Fatalf("want no problems, got %v", problems)
	}
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	t.Setenv("POLL_MAX_ATTEMPTS", "0")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "0")
	t.Setenv("RATE_LIMIT_RPM", "60")
	t.Setenv("RATE_LIMIT_BURST", "0")

	_, problems := check("")
	if len(problems) != 4 {
		t.Fatalf("want 4 problems, got %d: %v", len(problems), problems)
	}
	var all []string
	for _, p := range problems {
		all = append(all, p.Error())
	}
	joined := strings.Join(all, "\n")
	for _, name := range []string{"POLL_MAX_ATTEMPTS", "LOG_LEVEL", "SHUTDOWN_TIMEOUT_MS", "RATE_LIMIT_BURST"} {
		if !strings.Contains(joined, name) {
			t.Fatalf("%s not reported in %q", name, joined)
		}
	}
}

func TestCheck_NonNumeric(t *testing.T) {
	t.Setenv("POLL_DELAY_MS", "soon")
	if _, problems := check(""); len(problems) != 1 || !strings.Contains(problems[0].Error(), "POLL_DELAY_MS") {
		t.Fatalf("want one POLL_DELAY_MS problem, got %v", problems)
	}
}

func TestCheck_MissingConfigFile(t *testing.T) {
	if _, problems := check(t.TempDir() + "/nope.yaml"); len(problems) != 1 {
		t.Fatalf("want one problem for a missing file, got %v", problems)
	}
}

func TestWarnings_OpenDefaults(t *testing.T) {
	cfg, problems := check("")
	if len(problems) != 0 {
		t.Fatalf("defaults should validate: %v", problems)
	}
	w := strings.Join(warnings(cfg), "\n")
	for _, want := range []string{"PUBLIC_API_KEYS", "ALLOWED_ORIGINS", "SLACK_WEBHOOK_URL"} {
		if !strings.Contains(w, want) {
			t.Fatalf("missing %s warning in %q", want, w)
		}
	}

	cfg.PublicAPIKeys = []string{"k"}
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	cfg.SlackWebhook = "https://hooks.slack.com/services/x"
	if got := warnings(cfg); len(got) != 0 {
		t.Fatalf("want no warnings, got %v", got)
	}
}
