// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/pollrelay/internal/config"
)

func main() {
	cfg, problems := check(os.Getenv("CONFIG_FILE"))
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, "✖", p)
	}
	if len(problems) > 0 {
		os.Exit(1)
	}
	for _, w := range warnings(cfg) {
		fmt.Fprintln(os.Stderr, "⚠", w)
	}
	fmt.Println("✔", "API_ADDR="+cfg.Addr)
	fmt.Printf("✔ poll budget: %d attempts, %s delay, %s per attempt (worst case %s)\n",
		cfg.MaxAttempts, cfg.PollDelay, cfg.AttemptTimeout, cfg.MaxSequenceDuration())
	fmt.Println("✔", "preflight passed")
}

// check runs the same loading and validation cmd/api starts with.
func check(configFile string) (config.Config, []error) {
	cfg, err := config.Read(configFile)
	if err != nil {
		return cfg, multierr.Errors(err)
	}
	return cfg, multierr.Errors(cfg.Validate())
}

func warnings(cfg config.Config) []string {
	var out []string
	if len(cfg.PublicAPIKeys) == 0 {
		out = append(out, "PUBLIC_API_KEYS is empty; /poll-webhook/ and /api/polls are open to anyone who can reach them.")
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			out = append(out, "ALLOWED_ORIGINS allows any origin (with credentials).")
			break
		}
	}
	switch {
	case cfg.SlackWebhook == "":
		out = append(out, "SLACK_WEBHOOK_URL empty; poll timeouts will only be logged.")
	case !isHTTPS(cfg.SlackWebhook):
		out = append(out, "SLACK_WEBHOOK_URL is not an https URL.")
	}
	if strings.HasPrefix(cfg.Addr, "0.0.0.0") || strings.HasPrefix(cfg.Addr, ":") {
		out = append(out, "API_ADDR listens on all interfaces.")
	}
	return out
}

func isHTTPS(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}
