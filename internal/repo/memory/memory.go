package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/pollrelay/internal/domain"
)

const defaultCapacity = 100

// Store is a fixed-size ring of recent sequences. Contents are lost on
// restart.
type Store struct {
	mu    sync.RWMutex
	ring  []domain.SequenceRecord
	next  int
	count int
}

func New(capacity int) *Store {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Store{ring: make([]domain.SequenceRecord, capacity)}
}

func (m *Store) Append(ctx context.Context, r *domain.SequenceRecord) error {
	cp := *r
	cp.Attempts = append([]domain.AttemptRecord(nil), r.Attempts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring[m.next] = cp
	m.next = (m.next + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	return nil
}

func (m *Store) Recent(ctx context.Context, limit int) ([]domain.SequenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.SequenceRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.ring)) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out, nil
}

// Get returns the newest sequence with id (callers may reuse X-Request-ID),
// or nil, nil when it is unknown or already evicted.
func (m *Store) Get(ctx context.Context, id domain.SequenceID) (*domain.SequenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := 1; i <= m.count; i++ {
		idx := (m.next - i + len(m.ring)) % len(m.ring)
		if m.ring[idx].ID == id {
			r := m.ring[idx]
			return &r, nil
		}
	}
	return nil, nil
}
