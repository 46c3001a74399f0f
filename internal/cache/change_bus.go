package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChangesChannel carries changed store paths between instances.
const ChangesChannel = "store:changes"

// ChangeMessage is one changed path, tagged with the publishing instance.
type ChangeMessage struct {
	Origin string `json:"origin"`
	Path   string `json:"path"`
}

// ChangeBus fans store changes out to every instance over Redis pub/sub.
type ChangeBus struct {
	redis  *RedisClient
	origin string
}

// NewChangeBus creates a ChangeBus with a fresh instance id.
func NewChangeBus(redis *RedisClient) *ChangeBus {
	return &ChangeBus{redis: redis, origin: uuid.NewString()}
}

// Origin is this instance's id.
func (b *ChangeBus) Origin() string { return b.origin }

// Publish announces that path changed.
func (b *ChangeBus) Publish(ctx context.Context, path string) error {
	payload, err := encodeChange(ChangeMessage{Origin: b.origin, Path: path})
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, ChangesChannel, payload)
}

// Listen calls fn for every path changed by another instance until ctx is
// done or the subscription breaks.
func (b *ChangeBus) Listen(ctx context.Context, fn func(path string)) error {
	sub := b.redis.Subscribe(ctx, ChangesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChangesChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription %s closed", ChangesChannel)
			}
			change, err := decodeChange(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("payload", msg.Payload).Msg("Dropping malformed change message")
				continue
			}
			if change.Origin == b.origin {
				continue
			}
			fn(change.Path)
		}
	}
}

func encodeChange(m ChangeMessage) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal change message: %w", err)
	}
	return string(data), nil
}

func decodeChange(payload string) (ChangeMessage, error) {
	var m ChangeMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return m, err
	}
	if m.Path == "" {
		return m, fmt.Errorf("change message without path")
	}
	return m, nil
}
