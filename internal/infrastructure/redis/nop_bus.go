package redis

import (
	"context"
	"hr-comparator/internal/domain"
)

// NopEventBus is used when no Redis address is configured. Publishing is a
// no-op and subscriptions yield nothing until cancelled.
type NopEventBus struct{}

func (NopEventBus) PublishWorkflowEvent(context.Context, domain.WorkflowEvent) error {
	return nil
}

func (NopEventBus) SubscribeToEvents(ctx context.Context) (<-chan domain.WorkflowEvent, error) {
	ch := make(chan domain.WorkflowEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
