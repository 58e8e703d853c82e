package domain

import (
	"strconv"
	"sync"
	"time"
)

// WorkflowIDGenerator hands out "WF-<unix-millis>" ids. Two calls within the
// same millisecond still get distinct, increasing ids.
type WorkflowIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewWorkflowIDGenerator(now func() time.Time) *WorkflowIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &WorkflowIDGenerator{now: now}
}

func (g *WorkflowIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "WF-" + strconv.FormatInt(ms, 10)
}
