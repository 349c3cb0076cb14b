package probe

import (
	"context"

	"github.com/hamed0406/pollrelay/internal/domain"
)

// Prober performs a single GET against target and reports what happened.
//
// Implementations never return an error: failures to complete the exchange
// are reported as an AttemptOutcome with Kind OutcomeTransportFailure so the
// caller can classify them like any other attempt.
type Prober interface {
	Probe(ctx context.Context, target string) domain.AttemptOutcome
}
