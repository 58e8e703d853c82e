package domain

// Wire types exchanged with the external matching agent.

type ResumeInput struct {
	ResumeID   string `json:"resume_id"`
	ResumeText string `json:"resume_text"`
}

type CompareBatchRequest struct {
	WorkflowID string        `json:"workflow_id"`
	JDText     string        `json:"jd_text"`
	Resumes    []ResumeInput `json:"resumes"`
}

type MatchResult struct {
	ResumeID             string          `json:"resume_id"`
	MatchScore           float64         `json:"match_score"`
	FitCategory          FitCategory     `json:"fit_category"`
	JDExtracted          JDExtracted     `json:"jd_extracted"`
	ResumeExtracted      ResumeExtracted `json:"resume_extracted"`
	MatchBreakdown       MatchBreakdown  `json:"match_breakdown"`
	SelectionReason      string          `json:"selection_reason"`
	AgentVersion         *string         `json:"agent_version,omitempty"`
	ProcessingDurationMs *int64          `json:"processing_duration_ms,omitempty"`
	ConfidenceScore      *float64        `json:"confidence_score,omitempty"`
}

type CompareBatchResponse struct {
	Results          []MatchResult `json:"results"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
}
