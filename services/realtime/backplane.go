package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher fans an event out to sessions held by other instances. The
// local instance always delivers through its own Hub first; the publisher
// only covers remote peers.
type EventPublisher interface {
	PublishToUser(ctx context.Context, userID, event string, payload any) error
}

// envelope is the wire format on the backplane channel.
type envelope struct {
	Origin  string          `json:"origin"`
	UserID  string          `json:"userId"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBackplane bridges session registries across instances with a Redis
// pub/sub channel, so a dispatch on one instance reaches sessions registered
// on another.
type RedisBackplane struct {
	client     *redis.Client
	channel    string
	instanceID string
	hub        *Hub
	logger     *zap.Logger
}

// NewRedisBackplane creates a backplane bound to the given hub.
func NewRedisBackplane(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBackplane {
	return &RedisBackplane{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		hub:        hub,
		logger:     logger,
	}
}

// PublishToUser publishes an event for delivery on every other instance.
func (b *RedisBackplane) PublishToUser(ctx context.Context, userID, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{
		Origin:  b.instanceID,
		UserID:  userID,
		Event:   event,
		Payload: raw,
	})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Listen subscribes to the backplane channel and delivers remote events to
// local sessions until the context is cancelled. Run it on its own goroutine.
func (b *RedisBackplane) Listen(ctx context.Context) {
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		b.consume(ctx, sub.Channel())
		_ = sub.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
			b.logger.Warn("presence backplane subscription lost, reconnecting")
		}
	}
}

func (b *RedisBackplane) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("invalid backplane envelope", zap.Error(err))
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			b.hub.PushToUser(env.UserID, env.Event, env.Payload)
		}
	}
}
