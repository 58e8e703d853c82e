// Package coordinator follows batch workflow lifecycle events published on
// the event bus.
package coordinator

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/metrics"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Monitor tracks which workflows are in flight across every API instance
// publishing to the bus.
type Monitor struct {
	bus ports.EventBus
	log *zap.Logger

	mu       sync.Mutex
	inFlight map[string]time.Time // workflow id -> started at
}

func NewMonitor(bus ports.EventBus, log *zap.Logger) *Monitor {
	return &Monitor{
		bus:      bus,
		log:      log.Named("monitor"),
		inFlight: make(map[string]time.Time),
	}
}

// Run consumes events until ctx is done or the subscription closes.
func (m *Monitor) Run(ctx context.Context) error {
	events, err := m.bus.SubscribeToEvents(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to workflow events: %w", err)
	}
	m.log.Info("listening for workflow events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			m.handle(e)
		}
	}
}

func (m *Monitor) handle(e domain.WorkflowEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := []zap.Field{
		zap.String("workflow_id", e.WorkflowID),
		zap.String("jd_id", e.JDID),
		zap.Int("total_resumes", e.Total),
	}

	switch e.Type {
	case domain.EventWorkflowStarted:
		m.inFlight[e.WorkflowID] = e.At
		m.log.Info("workflow started", fields...)

	case domain.EventWorkflowCompleted, domain.EventWorkflowFailed:
		// 1. Duration is only known when the start was observed
		if started, ok := m.inFlight[e.WorkflowID]; ok {
			fields = append(fields, zap.Duration("duration", e.At.Sub(started)))
			delete(m.inFlight, e.WorkflowID)
		}
		// 2. Log the outcome
		fields = append(fields, zap.Int("processed_resumes", e.Processed))
		if e.Type == domain.EventWorkflowFailed {
			m.log.Warn("workflow failed", append(fields, zap.String("error", e.Error))...)
		} else {
			m.log.Info("workflow completed", fields...)
		}

	default:
		m.log.Debug("ignoring unknown workflow event", zap.String("type", string(e.Type)))
		return
	}

	metrics.WorkflowsInFlight.Set(float64(len(m.inFlight)))
}

// InFlight returns the ids of workflows started but not yet finished.
func (m *Monitor) InFlight() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.inFlight))
	for id := range m.inFlight {
		ids = append(ids, id)
	}
	return ids
}
