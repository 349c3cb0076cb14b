package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/pollrelay/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

type Multi []Notifier

// Send tries every notifier and returns all failures combined.
func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// TimeoutMessage renders the alert sent when a poll sequence exhausts its
// budget.
func TimeoutMessage(rec domain.SequenceRecord) (title, text string) {
	title = "⏱ Poll sequence timed out"

	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nSequence: %s\nAttempts: %d\nElapsed: %s\n",
		rec.URL, rec.ID, len(rec.Attempts),
		rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	if n := len(rec.Attempts); n > 0 {
		last := rec.Attempts[n-1]
		switch {
		case last.Error != "":
			fmt.Fprintf(&b, "Last: %s (%s)", last.Classification, last.Error)
		default:
			fmt.Fprintf(&b, "Last: %s (HTTP %d)", last.Classification, last.StatusCode)
		}
	}
	return title, b.String()
}
