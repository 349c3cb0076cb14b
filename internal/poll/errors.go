package poll

import "errors"

var (
	// ErrInvalidInput is returned when no target URL was supplied. No attempt
	// is made.
	ErrInvalidInput = errors.New("no webhook URL provided")

	// ErrTimeout is returned once the attempt budget is exhausted without a
	// terminal response.
	ErrTimeout = errors.New("timeout waiting for webhook result")
)
