package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/GTDGit/gtd_shop/internal/checkout"
)

// memoryDrafts round-trips snapshots through JSON like the Redis draft cache.
type memoryDrafts struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{entries: make(map[string][]byte)}
}

func (m *memoryDrafts) Load(_ context.Context, id string) (*checkout.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[id]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	var s checkout.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryDrafts) Save(_ context.Context, id string, s *checkout.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = data
	return nil
}

// flakyDrafts fails the next save once failNext is set.
type flakyDrafts struct {
	*memoryDrafts
	failNext bool
}

func (f *flakyDrafts) Save(ctx context.Context, id string, s *checkout.Snapshot) error {
	if f.failNext {
		f.failNext = false
		return errors.New("redis down")
	}
	return f.memoryDrafts.Save(ctx, id, s)
}
