package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// readFunc loads the snapshot delivered to subscribers.
type readFunc func(ctx context.Context, path string) (Snapshot, error)

// watcher is one registered subscription.
type watcher struct {
	id     string
	path   string
	signal chan struct{}
}

// Hub tracks local subscriptions and wakes the ones affected by a change.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]*watcher
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string]*watcher)}
}

func (h *Hub) register(path string) *watcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := &watcher{
		id:     uuid.NewString(),
		path:   path,
		signal: make(chan struct{}, 1),
	}
	h.watchers[w.id] = w
	log.Debug().Str("path", path).Int("total_watchers", len(h.watchers)).Msg("Store subscription registered")
	return w
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watchers[id]; ok {
		delete(h.watchers, id)
		log.Debug().Int("total_watchers", len(h.watchers)).Msg("Store subscription removed")
	}
}

// Notify wakes every watcher related to the changed path.
// Non-blocking: a watcher with a pending signal already has a re-read queued.
func (h *Hub) Notify(changed string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, w := range h.watchers {
		if !related(w.path, changed) {
			continue
		}
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}

// WatcherCount returns the number of live subscriptions.
func (h *Hub) WatcherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// subscribe starts a delivery goroutine for path.
func (h *Hub) subscribe(ctx context.Context, path string, read readFunc, fn func(Snapshot)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	w := h.register(path)
	sub := &Subscription{
		path:   path,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// The first delivery is the current state.
	w.signal <- struct{}{}

	go func() {
		defer close(sub.done)
		defer h.unregister(w.id)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.signal:
				snap, err := read(ctx, path)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error().Err(err).Str("path", path).Msg("Failed to read snapshot for subscriber")
					continue
				}
				if ctx.Err() != nil {
					return
				}
				fn(snap)
			}
		}
	}()
	return sub
}

// Subscription is the handle of an active subscription.
type Subscription struct {
	path   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Path returns the watched path.
func (s *Subscription) Path() string { return s.path }

// Cancel stops deliveries and waits for an in-flight callback to return.
// It must not be called from inside the subscription's own callback.
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Stop stops deliveries without waiting.
func (s *Subscription) Stop() {
	s.cancel()
}

// Done is closed once the subscription goroutine exits.
func (s *Subscription) Done() <-chan struct{} { return s.done }
