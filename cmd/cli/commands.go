package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll <webhook-url>",
	Short: "Ask the relay to poll a webhook URL and print the relayed result",
	Long: `Ask the relay to poll a webhook URL until it is ready.

The command blocks while the relay polls. The relay's HTTP status and body are
printed as-is; a 408 means the retry budget ran out.

Example:
  pollctl poll https://jobs.example.com/result/42
  pollctl poll jobs.example.com/result/42 --api http://relay:8080`,
	Args: cobra.ExactArgs(1),
	RunE: runPoll,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent poll sequences kept by the relay",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of sequences to show")
	rootCmd.AddCommand(pollCmd, historyCmd)
}

func clientFrom(cmd *cobra.Command) *client {
	base, _ := cmd.Flags().GetString("api")
	key, _ := cmd.Flags().GetString("api-key")
	return newClient(base, key)
}

func runPoll(cmd *cobra.Command, args []string) error {
	target, err := normalizeTarget(args[0])
	if err != nil {
		return err
	}
	status, body, err := clientFrom(cmd).poll(cmd.Context(), target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d\n%s\n", status, pretty(body))
	if status != 200 {
		return fmt.Errorf("relay returned status %d", status)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	status, body, err := clientFrom(cmd).history(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("relay returned status %d: %s", status, body)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty(body))
	return nil
}
