package domain

import "time"

type AgentStatus string

const (
	AgentIdle       AgentStatus = "idle"
	AgentPending    AgentStatus = "pending"
	AgentInProgress AgentStatus = "in_progress"
	AgentCompleted  AgentStatus = "completed"
	AgentFailed     AgentStatus = "failed"
)

// Pipeline stage ids, in execution order.
const (
	StageJDReader     = "jd-reader"
	StageResumeReader = "resume-reader"
	StageHRComparator = "hr-comparator"
)

var stageNames = map[string]string{
	StageJDReader:     "JD Reader Agent",
	StageResumeReader: "Resume Reader Agent",
	StageHRComparator: "HR Comparator Agent",
}

// AgentExecution is one stage of the fixed three-stage matching pipeline,
// embedded in its WorkflowExecution.
type AgentExecution struct {
	AgentID     string      `json:"agent_id"`
	Name        string      `json:"name"`
	Status      AgentStatus `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	DurationMs  *int64      `json:"duration_ms,omitempty"`
	Error       *string     `json:"error,omitempty"`
}

// NewAgentPipeline returns the stage list of a freshly submitted run: both
// reader stages are done locally before submission, the comparator waits on
// the agent call.
func NewAgentPipeline(now time.Time) []AgentExecution {
	zero := int64(0)
	return []AgentExecution{
		{AgentID: StageJDReader, Name: stageNames[StageJDReader], Status: AgentCompleted, StartedAt: &now, CompletedAt: &now, DurationMs: &zero},
		{AgentID: StageResumeReader, Name: stageNames[StageResumeReader], Status: AgentCompleted, StartedAt: &now, CompletedAt: &now, DurationMs: &zero},
		{AgentID: StageHRComparator, Name: stageNames[StageHRComparator], Status: AgentInProgress, StartedAt: &now},
	}
}

// IdleAgentPipeline is reported when no workflow has run yet.
func IdleAgentPipeline() []AgentExecution {
	return []AgentExecution{
		{AgentID: StageJDReader, Name: stageNames[StageJDReader], Status: AgentIdle},
		{AgentID: StageResumeReader, Name: stageNames[StageResumeReader], Status: AgentIdle},
		{AgentID: StageHRComparator, Name: stageNames[StageHRComparator], Status: AgentIdle},
	}
}

func (a *AgentExecution) finish(now time.Time, status AgentStatus, durationMs int64, errMsg string) {
	a.Status = status
	a.CompletedAt = &now
	a.DurationMs = &durationMs
	if errMsg != "" {
		a.Error = &errMsg
	}
}
