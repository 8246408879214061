package interview

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	draft   *Draft
	expires time.Time
}

// MemoryDrafts is an in-process DraftStore.
type MemoryDrafts struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	items  map[string]memoryEntry
	claims map[string]time.Time
}

// NewMemoryDrafts creates an in-memory store. A zero ttl uses
// DefaultDraftTTL.
func NewMemoryDrafts(ttl time.Duration) *MemoryDrafts {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &MemoryDrafts{ttl: ttl, now: time.Now, items: make(map[string]memoryEntry), claims: make(map[string]time.Time)}
}

func (m *MemoryDrafts) Save(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.items[d.ID] = memoryEntry{draft: d.Clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryDrafts) Get(_ context.Context, id string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.live(id)
	if err != nil {
		return nil, err
	}
	return e.draft.Clone(), nil
}

func (m *MemoryDrafts) Update(_ context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.live(id)
	if err != nil {
		return nil, err
	}
	d := e.draft.Clone()
	if err := fn(d); err != nil {
		return nil, err
	}
	m.items[id] = memoryEntry{draft: d.Clone(), expires: m.now().Add(m.ttl)}
	return d, nil
}

func (m *MemoryDrafts) Claim(_ context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if until, ok := m.claims[id]; ok && now.Before(until) {
		return nil, ErrSubmitInProgress
	}
	until := now.Add(SubmitClaimTTL)
	m.claims[id] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.claims[id].Equal(until) {
				delete(m.claims, id)
			}
		})
	}, nil
}

func (m *MemoryDrafts) live(id string) (memoryEntry, error) {
	e, ok := m.items[id]
	if !ok || !m.now().Before(e.expires) {
		delete(m.items, id)
		return memoryEntry{}, ErrDraftNotFound
	}
	return e, nil
}

func (m *MemoryDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len returns the number of live drafts.
func (m *MemoryDrafts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.items)
}

func (m *MemoryDrafts) sweep() {
	now := m.now()
	for id, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, id)
		}
	}
	for id, until := range m.claims {
		if !now.Before(until) {
			delete(m.claims, id)
		}
	}
}
