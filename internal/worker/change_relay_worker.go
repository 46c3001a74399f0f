package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// ChangeListener delivers paths changed by other instances.
type ChangeListener interface {
	Listen(ctx context.Context, fn func(path string)) error
}

// ChangeNotifier wakes local subscribers of a changed path.
type ChangeNotifier interface {
	Notify(path string)
}

// ChangeRelayWorker feeds remote store changes into the local hub so
// subscribers see writes made through other instances.
type ChangeRelayWorker struct {
	listener ChangeListener
	hub      ChangeNotifier
	retry    time.Duration
}

// NewChangeRelayWorker constructs a ChangeRelayWorker. A broken
// subscription is reopened after retry.
func NewChangeRelayWorker(listener ChangeListener, hub ChangeNotifier, retry time.Duration) *ChangeRelayWorker {
	return &ChangeRelayWorker{listener: listener, hub: hub, retry: retry}
}

// Start relays changes until ctx is cancelled.
func (w *ChangeRelayWorker) Start(ctx context.Context) {
	log.Info().Dur("retry", w.retry).Msg("Starting change relay worker")

	for {
		err := w.listener.Listen(ctx, w.hub.Notify)
		if ctx.Err() != nil {
			log.Info().Msg("Change relay worker stopped")
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Change subscription lost, reconnecting")
		}

		select {
		case <-time.After(w.retry):
		case <-ctx.Done():
			log.Info().Msg("Change relay worker stopped")
			return
		}
	}
}
