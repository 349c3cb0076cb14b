// Command pollctl talks to a running poll relay.
//
// Usage:
//
//	pollctl poll https://jobs.example.com/result/42
//	pollctl history --limit 5
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pollctl",
	Short: "Submit webhook URLs to a poll relay and inspect recent sequences",
	Long: `pollctl sends a webhook URL to a running poll relay, which polls it until
the downstream job is ready (or the retry budget runs out) and relays the result.

The relay address comes from --api, falling back to $API_BASE and then
http://localhost:8080. Pass --api-key (or $POLL_API_KEY) when the relay has
PUBLIC_API_KEYS configured.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("api", envOr("API_BASE", "http://localhost:8080"), "relay base URL")
	rootCmd.PersistentFlags().String("api-key", os.Getenv("POLL_API_KEY"), "API key sent as X-API-Key")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
