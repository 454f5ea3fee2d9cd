package activity

import (
	"context"
	"sync"
)

// MemoryStore keeps events in process memory; used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewMemoryStore keeps at most limit most recent events; limit <= 0 keeps 10000.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = 10000
	}
	return &MemoryStore{limit: limit}
}

// Record appends an event, dropping the oldest beyond the limit.
func (m *MemoryStore) Record(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	if len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
	return nil
}

// Summary aggregates retained events.
func (m *MemoryStore) Summary(_ context.Context) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := Summary{ByKind: make(map[Kind]KindTotals)}
	chats := make(map[int64]struct{})
	for _, ev := range m.events {
		t := sum.ByKind[ev.Kind]
		t.Events++
		t.Items += ev.Count
		sum.ByKind[ev.Kind] = t
		chats[ev.ChatID] = struct{}{}
		if sum.Since.IsZero() || ev.CreatedAt.Before(sum.Since) {
			sum.Since = ev.CreatedAt
		}
	}
	sum.Chats = len(chats)
	return sum, nil
}
