package poll

import (
	"context"

	"github.com/google/uuid"

	"github.com/hamed0406/pollrelay/internal/domain"
)

type sequenceIDKey struct{}

// WithSequenceID attaches the id the executor should log the sequence under.
func WithSequenceID(ctx context.Context, id domain.SequenceID) context.Context {
	return context.WithValue(ctx, sequenceIDKey{}, id)
}

// SequenceIDFrom returns the id stored by WithSequenceID, or a fresh UUIDv7.
func SequenceIDFrom(ctx context.Context) domain.SequenceID {
	if id, ok := ctx.Value(sequenceIDKey{}).(domain.SequenceID); ok && id != "" {
		return id
	}
	return NewSequenceID()
}

func NewSequenceID() domain.SequenceID {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.SequenceID(uuid.NewString())
	}
	return domain.SequenceID(id.String())
}
