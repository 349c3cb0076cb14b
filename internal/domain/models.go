package domain

import (
	"encoding/json"
	"time"
)

// PollRequest is the inbound body of POST /poll-webhook/.
type PollRequest struct {
	WebhookURL string `json:"webhook_url"`
}

// PollBudget bounds one poll sequence. It is never shared between sequences.
type PollBudget struct {
	MaxAttempts    int
	Delay          time.Duration
	AttemptTimeout time.Duration
}

// DefaultBudget mirrors the relay's production settings.
func DefaultBudget() PollBudget {
	return PollBudget{
		MaxAttempts:    10,
		Delay:          5 * time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

type OutcomeKind int

const (
	OutcomeResponse OutcomeKind = iota
	OutcomeTransportFailure
)

// AttemptOutcome is what one GET against the target produced.
// Err is set iff Kind == OutcomeTransportFailure; the response fields are
// zero in that case.
type AttemptOutcome struct {
	Attempt     int
	Kind        OutcomeKind
	StatusCode  int
	ContentType string
	Body        []byte
	Err         error
	Latency     time.Duration
}

// Classification is the verdict on a single attempt.
type Classification string

const (
	ClassTerminal         Classification = "terminal"
	ClassAcceptedSentinel Classification = "accepted_sentinel"
	ClassProcessing       Classification = "processing"
	ClassUnexpectedStatus Classification = "unexpected_status"
	ClassTransportFailure Classification = "transport_failure"
)

// Terminal reports whether the classification ends the poll sequence.
func (c Classification) Terminal() bool { return c == ClassTerminal }

// PollResult is the Ready outcome of a poll sequence. Timeouts are reported
// as errors, not results.
type PollResult struct {
	Payload     json.RawMessage
	ContentType string
	Attempts    int
	// Wrapped is true when Payload is the non-JSON envelope rather than the
	// downstream body.
	Wrapped bool
}

// NonJSONPayload wraps terminal bodies that cannot be relayed as JSON.
type NonJSONPayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

const NonJSONMessage = "Non-JSON response"
