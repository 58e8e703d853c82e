package domain

import "time"

type WorkflowEventType string

const (
	EventWorkflowStarted   WorkflowEventType = "workflow.started"
	EventWorkflowCompleted WorkflowEventType = "workflow.completed"
	EventWorkflowFailed    WorkflowEventType = "workflow.failed"
)

// WorkflowEvent is broadcast on the event bus at each lifecycle transition of
// a batch run.
type WorkflowEvent struct {
	Type       WorkflowEventType `json:"type"`
	WorkflowID string            `json:"workflow_id"`
	JDID       string            `json:"jd_id"`
	Status     WorkflowStatus    `json:"status"`
	Total      int               `json:"total_resumes"`
	Processed  int               `json:"processed_resumes"`
	Error      string            `json:"error,omitempty"` // empty unless failed
	At         time.Time         `json:"at"`
}

func NewWorkflowEvent(t WorkflowEventType, w *WorkflowExecution, at time.Time) WorkflowEvent {
	e := WorkflowEvent{
		Type:       t,
		WorkflowID: w.WorkflowID,
		JDID:       w.JDID,
		Status:     w.Status,
		Total:      w.TotalResumes,
		Processed:  w.ProcessedResumes,
		At:         at,
	}
	if w.Error != nil {
		e.Error = *w.Error
	}
	return e
}
