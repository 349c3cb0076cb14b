package domain

import "time"

type SequenceID string

type SequenceStatus string

const (
	StatusReady    SequenceStatus = "ready"
	StatusTimeout  SequenceStatus = "timeout"
	StatusCanceled SequenceStatus = "canceled"
)

// AttemptRecord is the diagnostic trace of one attempt kept in history.
type AttemptRecord struct {
	Attempt        int            `json:"attempt"`
	StatusCode     int            `json:"status_code,omitempty"`
	Classification Classification `json:"classification"`
	Error          string         `json:"error,omitempty"`
	LatencyMS      float64        `json:"latency_ms"`
}

// SequenceRecord summarizes a finished poll sequence. URL is always redacted.
type SequenceRecord struct {
	ID         SequenceID      `json:"id"`
	URL        string          `json:"url"`
	Status     SequenceStatus  `json:"status"`
	Attempts   []AttemptRecord `json:"attempts"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}
