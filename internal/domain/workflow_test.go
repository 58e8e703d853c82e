package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkflow(t *testing.T, resumes ...string) *WorkflowExecution {
	t.Helper()
	jd := &JobDescription{ID: "AZ-1", Designation: "Backend Engineer"}
	return NewBatchWorkflow("rec-1", "WF-1", jd, "user-1", resumes, time.Unix(100, 0))
}

func TestNewBatchWorkflow_SeedsPipeline(t *testing.T) {
	w := newTestWorkflow(t, "r1", "r2")

	assert.Equal(t, WorkflowInProgress, w.Status)
	assert.Equal(t, 2, w.TotalResumes)
	assert.Equal(t, "Backend Engineer", w.JDTitle)
	require.Len(t, w.Agents, 3)
	assert.Equal(t, StageJDReader, w.Agents[0].AgentID)
	assert.Equal(t, AgentCompleted, w.Agents[1].Status)
	assert.Equal(t, AgentInProgress, w.Agents[2].Status)

	p := w.Progress.Data()
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 66, p.Percentage)
}

func TestWorkflowExecution_Complete(t *testing.T) {
	w := newTestWorkflow(t, "r1", "r2")
	done := time.Unix(200, 0)

	w.Complete(done, 5, WorkflowMetrics{TotalCandidates: 2, ProcessingTimeMs: 1500}, WorkflowResults{SavedCount: 2})

	assert.True(t, w.IsFinished())
	assert.Equal(t, 2, w.ProcessedResumes, "processed is clamped to total")
	assert.Equal(t, 100, w.Progress.Data().Percentage)
	require.NotNil(t, w.CompletedAt)

	cmp, ok := w.Stage(StageHRComparator)
	require.True(t, ok)
	assert.Equal(t, AgentCompleted, cmp.Status)
	require.NotNil(t, cmp.DurationMs)
	assert.EqualValues(t, 1500, *cmp.DurationMs)
}

func TestWorkflowExecution_Fail(t *testing.T) {
	w := newTestWorkflow(t, "r1")

	w.Fail(time.Unix(160, 0), FailureTimeout, "AI agent timeout")

	assert.Equal(t, WorkflowFailed, w.Status)
	require.NotNil(t, w.Error)
	assert.Equal(t, "AI agent timeout", *w.Error)
	assert.Equal(t, FailureTimeout, w.ErrorDetails.Data().Kind)

	cmp, _ := w.Stage(StageHRComparator)
	assert.Equal(t, AgentFailed, cmp.Status)
	require.NotNil(t, cmp.Error)
	assert.EqualValues(t, 60000, *cmp.DurationMs)
	assert.Equal(t, 2, w.Progress.Data().Completed)
}

func TestWorkflowExecution_CloneIsIndependent(t *testing.T) {
	w := newTestWorkflow(t, "r1")

	c := w.Clone()
	c.Complete(time.Unix(200, 0), 1, WorkflowMetrics{}, WorkflowResults{SavedCount: 1})

	assert.Equal(t, WorkflowCompleted, c.Status)
	assert.Equal(t, WorkflowInProgress, w.Status)
	assert.Nil(t, w.CompletedAt)
	assert.Equal(t, AgentInProgress, w.Agents[2].Status)
	assert.Equal(t, 2, w.Progress.Data().Completed)
}

func TestFitForScore(t *testing.T) {
	assert.Equal(t, FitBest, FitForScore(80))
	assert.Equal(t, FitPartial, FitForScore(79.9))
	assert.Equal(t, FitPartial, FitForScore(50))
	assert.Equal(t, FitNot, FitForScore(10))
}

func TestAgentError_Is(t *testing.T) {
	err := fmt.Errorf("compare: %w", &AgentError{Kind: AgentErrConnection, Cause: errors.New("dial tcp: refused")})

	assert.ErrorIs(t, err, ErrAgentUnavailable)
	assert.NotErrorIs(t, err, ErrAgentTimeout)
	assert.Contains(t, err.Error(), "connection failed")

	var agentErr *AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, AgentErrConnection, agentErr.Kind)
}

func TestWorkflowIDGenerator_Monotonic(t *testing.T) {
	fixed := time.UnixMilli(1731427200000)
	gen := NewWorkflowIDGenerator(func() time.Time { return fixed })

	assert.Equal(t, "WF-1731427200000", gen.Next())
	assert.Equal(t, "WF-1731427200001", gen.Next())
	assert.Equal(t, "WF-1731427200002", gen.Next())
}
