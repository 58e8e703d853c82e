package redis

import (
	"context"
	"encoding/json"
	"hr-comparator/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const workflowChannel = "hr:workflow:events"

type RedisEventBus struct {
	client  *redis.Client
	channel string
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client:  client,
		channel: workflowChannel,
	}
}

// PublishWorkflowEvent broadcasts a lifecycle transition to every subscriber
func (b *RedisEventBus) PublishWorkflowEvent(ctx context.Context, event domain.WorkflowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// SubscribeToEvents opens a continuous stream of workflow events. The channel
// is closed once ctx is done.
func (b *RedisEventBus) SubscribeToEvents(ctx context.Context) (<-chan domain.WorkflowEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// Wait for the subscription to be confirmed before handing out the stream
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	msgChan := make(chan domain.WorkflowEvent)

	go func() {
		defer close(msgChan)
		defer pubsub.Close()

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				// go-redis reconnects on the next receive; back off until then
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			var event domain.WorkflowEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			select {
			case msgChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}
