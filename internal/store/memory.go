package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]json.RawMessage
	hub   *Hub
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[string]json.RawMessage),
		hub:   NewHub(),
	}
}

// Hub exposes the subscription hub.
func (m *Memory) Hub() *Hub { return m.hub }

func (m *Memory) Read(_ context.Context, path string) (Snapshot, error) {
	p, err := CleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.nodes[p]; ok {
		return Snapshot{Path: p, Exists: true, Value: append(json.RawMessage(nil), v...)}, nil
	}

	children := map[string]json.RawMessage{}
	prefix := p + "/"
	for k, v := range m.nodes {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, "/") {
			children[rest] = v
		}
	}
	if len(children) == 0 {
		return Snapshot{Path: p}, nil
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: p, Exists: true, Value: raw}, nil
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.dropBelow(p)
	m.nodes[p] = raw
	m.mu.Unlock()

	m.hub.Notify(p)
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	merged, err := mergeFields(m.nodes[p], fields)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.nodes[p] = merged
	m.mu.Unlock()

	m.hub.Notify(p)
	return nil
}

func (m *Memory) Remove(_ context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.nodes, p)
	m.dropBelow(p)
	m.mu.Unlock()

	m.hub.Notify(p)
	return nil
}

func (m *Memory) Push(_ context.Context, path string) (string, error) {
	if _, err := CleanPath(path); err != nil {
		return "", err
	}
	return NewID()
}

func (m *Memory) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return m.hub.subscribe(ctx, p, m.Read, fn), nil
}

// Paths returns every stored leaf path in order. Used by diagnostics and tests.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.nodes))
	for k := range m.nodes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// dropBelow removes every node under p. Caller holds the write lock.
func (m *Memory) dropBelow(p string) {
	prefix := p + "/"
	for k := range m.nodes {
		if strings.HasPrefix(k, prefix) {
			delete(m.nodes, k)
		}
	}
}

// NewID returns a time-ordered child identifier.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
