package repo

import (
	"context"

	"github.com/hamed0406/pollrelay/internal/domain"
)

// HistoryStore keeps finished poll sequences for diagnostics. Nothing read
// from it influences polling.
type HistoryStore interface {
	Append(ctx context.Context, r *domain.SequenceRecord) error
	// Recent returns up to limit records, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]domain.SequenceRecord, error)
	Get(ctx context.Context, id domain.SequenceID) (*domain.SequenceRecord, error)
}
