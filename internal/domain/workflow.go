package domain

import (
	"time"

	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowCompleted || s == WorkflowFailed
}

func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowPending, WorkflowInProgress, WorkflowCompleted, WorkflowFailed:
		return true
	}
	return false
}

// Failure kinds recorded in WorkflowExecution.ErrorDetails.
const (
	FailureTimeout    = "timeout"
	FailureConnection = "connection"
	FailureProtocol   = "protocol"
	FailureNoResumes  = "no_resumes"
	FailureInternal   = "internal"
)

// HighMatchScore is the score from which a result counts as a top match.
const HighMatchScore = 80.0

type WorkflowProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type WorkflowMetrics struct {
	TotalCandidates  int     `json:"total_candidates"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	MatchRate        float64 `json:"match_rate"`
	TopMatches       int     `json:"top_matches"`
}

// WorkflowResults summarises what a completed run persisted. Resumes listed in
// FailedResumeIDs were scored by the agent but could not be saved.
type WorkflowResults struct {
	SavedCount       int      `json:"saved_count"`
	FailedResumeIDs  []string `json:"failed_resume_ids"`
	SkippedResumeIDs []string `json:"skipped_resume_ids"`
}

type WorkflowErrorDetails struct {
	Kind  string `json:"kind"`
	Cause string `json:"cause"`
}

// WorkflowExecution is one batch matching run against a single job description.
type WorkflowExecution struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkflowID string `gorm:"type:varchar(40);uniqueIndex;not null" json:"workflow_id"`
	JDID       string `gorm:"type:varchar(100);index;not null" json:"jd_id"`
	JDTitle    string `gorm:"type:varchar(255)" json:"jd_title"`

	// State
	Status      WorkflowStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	StartedBy   string         `gorm:"type:varchar(36);index" json:"started_by"`
	StartedAt   time.Time      `gorm:"index" json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`

	ResumeIDs        datatypes.JSONSlice[string]          `json:"resume_ids"`
	TotalResumes     int                                  `json:"total_resumes"`
	ProcessedResumes int                                  `json:"processed_resumes"`
	Agents           datatypes.JSONSlice[AgentExecution]  `json:"agents"`
	Progress         datatypes.JSONType[WorkflowProgress] `json:"progress"`
	Metrics          datatypes.JSONType[WorkflowMetrics]  `json:"metrics"`

	// Results is only meaningful once completed, ErrorDetails once failed.
	Results      datatypes.JSONType[WorkflowResults]      `json:"results"`
	Error        *string                                  `json:"error,omitempty"`
	ErrorDetails datatypes.JSONType[WorkflowErrorDetails] `json:"error_details"`

	// Audit
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- FACTORY ---

// NewBatchWorkflow builds a run in progress with the reader stages already
// completed and the comparator stage waiting on the agent call.
func NewBatchWorkflow(recordID, workflowID string, jd *JobDescription, startedBy string, resumeIDs []string, now time.Time) *WorkflowExecution {
	agents := NewAgentPipeline(now)
	return &WorkflowExecution{
		ID:           recordID,
		WorkflowID:   workflowID,
		JDID:         jd.ID,
		JDTitle:      jd.Designation,
		Status:       WorkflowInProgress,
		StartedBy:    startedBy,
		StartedAt:    now,
		ResumeIDs:    datatypes.NewJSONSlice(resumeIDs),
		TotalResumes: len(resumeIDs),
		Agents:       datatypes.NewJSONSlice(agents),
		Progress:     datatypes.NewJSONType(progressOf(agents)),
		Metrics:      datatypes.NewJSONType(WorkflowMetrics{}),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- METHODS ---

func (w *WorkflowExecution) IsFinished() bool {
	return w.Status.IsTerminal()
}

// Clone copies the run so a transition can be tried without touching the
// original. The stage slice is copied; the other fields are replaced, never
// mutated, by the transitions.
func (w *WorkflowExecution) Clone() *WorkflowExecution {
	c := *w
	c.Agents = datatypes.NewJSONSlice(append([]AgentExecution(nil), w.Agents...))
	return &c
}

// Complete moves the run to its successful terminal state. processed is
// clamped to TotalResumes.
func (w *WorkflowExecution) Complete(now time.Time, processed int, metrics WorkflowMetrics, results WorkflowResults) {
	if processed > w.TotalResumes {
		processed = w.TotalResumes
	}

	agents := []AgentExecution(w.Agents)
	for i := range agents {
		if agents[i].AgentID == StageHRComparator {
			agents[i].finish(now, AgentCompleted, metrics.ProcessingTimeMs, "")
			continue
		}
		if agents[i].Status != AgentCompleted {
			agents[i].finish(now, AgentCompleted, 0, "")
		}
	}

	w.Status = WorkflowCompleted
	w.CompletedAt = &now
	w.ProcessedResumes = processed
	w.Agents = datatypes.NewJSONSlice(agents)
	w.Progress = datatypes.NewJSONType(progressOf(agents))
	w.Metrics = datatypes.NewJSONType(metrics)
	w.Results = datatypes.NewJSONType(results)
	w.UpdatedAt = now
}

// Fail moves the run to its failed terminal state and marks the comparator
// stage failed with the same cause.
func (w *WorkflowExecution) Fail(now time.Time, kind string, cause string) {
	agents := []AgentExecution(w.Agents)
	for i := range agents {
		if agents[i].AgentID == StageHRComparator {
			elapsed := int64(0)
			if agents[i].StartedAt != nil {
				elapsed = now.Sub(*agents[i].StartedAt).Milliseconds()
			}
			agents[i].finish(now, AgentFailed, elapsed, cause)
		}
	}

	w.Status = WorkflowFailed
	w.CompletedAt = &now
	w.Agents = datatypes.NewJSONSlice(agents)
	w.Progress = datatypes.NewJSONType(progressOf(agents))
	w.Error = &cause
	w.ErrorDetails = datatypes.NewJSONType(WorkflowErrorDetails{Kind: kind, Cause: cause})
	w.UpdatedAt = now
}

// Stage returns the embedded stage record with the given id.
func (w *WorkflowExecution) Stage(id string) (AgentExecution, bool) {
	for _, a := range w.Agents {
		if a.AgentID == id {
			return a, true
		}
	}
	return AgentExecution{}, false
}

func progressOf(agents []AgentExecution) WorkflowProgress {
	done := 0
	for _, a := range agents {
		if a.Status == AgentCompleted {
			done++
		}
	}
	p := WorkflowProgress{Completed: done, Total: len(agents)}
	if p.Total > 0 {
		p.Percentage = done * 100 / p.Total
	}
	return p
}
