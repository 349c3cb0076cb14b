package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_WritesAlert(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	if err := (Log{Logger: zap.New(core)}).Send(context.Background(), "title", "body"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	entries := logs.FilterMessage("alert").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 alert log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["title"]; got != "title" {
		t.Fatalf("title field = %v", got)
	}
}

func TestMulti_LogStillRecordsWhenSlackFails(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	slackErr := errors.New("slack down")
	m := Multi{failing{slackErr}, Log{Logger: zap.New(core)}}

	err := m.Send(context.Background(), "t", "x")
	if !errors.Is(err, slackErr) {
		t.Fatalf("want slack error surfaced, got %v", err)
	}
	if logs.FilterMessage("alert").Len() != 1 {
		t.Fatalf("log notifier should still run after a failing notifier")
	}
}
