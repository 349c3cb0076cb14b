package poll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pollrelay/internal/domain"
	"github.com/hamed0406/pollrelay/internal/notify"
	"github.com/hamed0406/pollrelay/internal/probe"
	"github.com/hamed0406/pollrelay/internal/repo"
)

const (
	bodyPreviewBytes = 256
	alertTimeout     = 10 * time.Second
)

// Recorder receives metrics for attempts and sequences. Every StartSequence
// is matched by exactly one ObserveSequence.
type Recorder interface {
	StartSequence()
	ObserveAttempt(class domain.Classification, latency time.Duration)
	ObserveSequence(status domain.SequenceStatus, attempts int, elapsed time.Duration)
}

type Executor struct {
	Prober   probe.Prober
	Budget   domain.PollBudget
	Logger   *zap.Logger
	Recorder Recorder          // optional
	History  repo.HistoryStore // optional
	Notifier notify.Notifier   // optional, alerted on timeout
}

func NewExecutor(logger *zap.Logger, p probe.Prober, budget domain.PollBudget) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{Prober: p, Budget: budget, Logger: logger}
}

// Execute runs one poll sequence against target. It returns the Ready result,
// ErrInvalidInput, an error wrapping ErrTimeout, or ctx.Err() when the caller
// goes away mid-sequence.
func (e *Executor) Execute(ctx context.Context, target string) (domain.PollResult, error) {
	if strings.TrimSpace(target) == "" {
		return domain.PollResult{}, ErrInvalidInput
	}

	maxAttempts := e.Budget.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	rec := &domain.SequenceRecord{
		ID:        SequenceIDFrom(ctx),
		URL:       RedactURL(target),
		StartedAt: time.Now().UTC(),
	}
	log := e.Logger.With(
		zap.String("sequence_id", string(rec.ID)),
		zap.String("url", rec.URL),
	)
	if e.Recorder != nil {
		e.Recorder.StartSequence()
	}
	log.Info("poll_start",
		zap.Int("max_attempts", maxAttempts),
		zap.Duration("delay", e.Budget.Delay),
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out := e.Prober.Probe(ctx, target)
		out.Attempt = attempt
		if err := ctx.Err(); err != nil {
			e.finish(ctx, log, rec, domain.StatusCanceled)
			return domain.PollResult{}, err
		}

		class := Classify(out)
		e.observeAttempt(log, rec, out, class)

		if class.Terminal() {
			payload, wrapped := ReadyPayload(out)
			if wrapped && IsJSONContentType(out.ContentType) {
				log.Warn("poll_malformed_json",
					zap.Int("attempt", attempt),
					zap.String("content_type", out.ContentType),
				)
			}
			e.finish(ctx, log, rec, domain.StatusReady)
			return domain.PollResult{
				Payload:     payload,
				ContentType: out.ContentType,
				Attempts:    attempt,
				Wrapped:     wrapped,
			}, nil
		}

		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, e.Budget.Delay); err != nil {
			e.finish(ctx, log, rec, domain.StatusCanceled)
			return domain.PollResult{}, err
		}
	}

	e.finish(ctx, log, rec, domain.StatusTimeout)
	return domain.PollResult{}, fmt.Errorf("%w after %d attempts", ErrTimeout, maxAttempts)
}

// sleep waits d or until ctx is done, whichever comes first. Only the
// calling goroutine is suspended.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Executor) observeAttempt(log *zap.Logger, rec *domain.SequenceRecord, out domain.AttemptOutcome, class domain.Classification) {
	ar := domain.AttemptRecord{
		Attempt:        out.Attempt,
		StatusCode:     out.StatusCode,
		Classification: class,
		LatencyMS:      out.Latency.Seconds() * 1000,
	}
	fields := []zap.Field{
		zap.Int("attempt", out.Attempt),
		zap.String("classification", string(class)),
		zap.Float64("latency_ms", ar.LatencyMS),
	}
	if out.Kind == domain.OutcomeTransportFailure {
		ar.Error = out.Err.Error()
		fields = append(fields, zap.Error(out.Err))
	} else {
		fields = append(fields,
			zap.Int("status", out.StatusCode),
			zap.String("body_preview", preview(out.Body)),
		)
	}
	log.Info("poll_attempt", fields...)

	rec.Attempts = append(rec.Attempts, ar)
	if e.Recorder != nil {
		e.Recorder.ObserveAttempt(class, out.Latency)
	}
}

func (e *Executor) finish(ctx context.Context, log *zap.Logger, rec *domain.SequenceRecord, status domain.SequenceStatus) {
	rec.Status = status
	rec.FinishedAt = time.Now().UTC()
	elapsed := rec.FinishedAt.Sub(rec.StartedAt)

	switch status {
	case domain.StatusReady:
		log.Info("poll_ready", zap.Int("attempts", len(rec.Attempts)), zap.Duration("elapsed", elapsed))
	case domain.StatusTimeout:
		log.Warn("poll_timeout", zap.Int("attempts", len(rec.Attempts)), zap.Duration("elapsed", elapsed))
	default:
		log.Info("poll_canceled", zap.Int("attempts", len(rec.Attempts)), zap.Duration("elapsed", elapsed))
	}

	if e.Recorder != nil {
		e.Recorder.ObserveSequence(status, len(rec.Attempts), elapsed)
	}
	if e.History != nil {
		// the caller's ctx may already be canceled; history is in-process
		if err := e.History.Append(context.WithoutCancel(ctx), rec); err != nil {
			log.Warn("poll_history_append_error", zap.Error(err))
		}
	}
	if status == domain.StatusTimeout && e.Notifier != nil {
		go e.alert(context.WithoutCancel(ctx), log, *rec)
	}
}

// alert is best-effort and never delays the response to the caller.
func (e *Executor) alert(ctx context.Context, log *zap.Logger, rec domain.SequenceRecord) {
	ctx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()
	title, text := notify.TimeoutMessage(rec)
	if err := e.Notifier.Send(ctx, title, text); err != nil {
		log.Warn("poll_timeout_alert_error", zap.Error(err))
	}
}

func preview(b []byte) string {
	if len(b) <= bodyPreviewBytes {
		return string(b)
	}
	return string(b[:bodyPreviewBytes]) + "..."
}
