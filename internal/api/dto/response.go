package dto

import (
	"hr-comparator/internal/domain"
	"time"
)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Company   *string         `json:"company,omitempty"`
	IsActive  bool            `json:"is_active"`
	LastLogin *time.Time      `json:"last_login,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Company:   u.Company,
		IsActive:  u.IsActive,
		LastLogin: u.Security.Data().LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// WorkflowSummary is returned by the batch endpoint.
type WorkflowSummary struct {
	WorkflowID       string                `json:"workflow_id"`
	JDID             string                `json:"jd_id"`
	TotalResumes     int                   `json:"total_resumes"`
	ProcessedResumes int                   `json:"processed_resumes"`
	Status           domain.WorkflowStatus `json:"status"`
}

func NewWorkflowSummary(w *domain.WorkflowExecution) WorkflowSummary {
	return WorkflowSummary{
		WorkflowID:       w.WorkflowID,
		JDID:             w.JDID,
		TotalResumes:     w.TotalResumes,
		ProcessedResumes: w.ProcessedResumes,
		Status:           w.Status,
	}
}

type WorkflowStatusResponse struct {
	Success    bool                      `json:"success"`
	Monitoring bool                      `json:"monitoring"`
	WorkflowID string                    `json:"workflow_id,omitempty"`
	JDID       string                    `json:"jd_id,omitempty"`
	Status     domain.WorkflowStatus     `json:"status,omitempty"`
	Agents     []domain.AgentExecution   `json:"agents"`
	Progress   domain.WorkflowProgress   `json:"progress"`
	Metrics    domain.WorkflowMetrics    `json:"metrics"`
	Error      *string                   `json:"error,omitempty"`
	Workflow   *domain.WorkflowExecution `json:"workflow,omitempty"`
}

type WorkflowListResponse struct {
	Total      int64                      `json:"total"`
	Executions []domain.WorkflowExecution `json:"executions"`
}

type JDListItem struct {
	ID                 string          `json:"id"`
	Designation        string          `json:"designation"`
	DescriptionPreview string          `json:"description_preview"`
	Status             domain.JDStatus `json:"status"`
	Company            *string         `json:"company,omitempty"`
	Location           *string         `json:"location,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type ResultListItem struct {
	ID              string             `json:"id"`
	ResumeID        string             `json:"resume_id"`
	JDID            string             `json:"jd_id"`
	MatchScore      float64            `json:"match_score"`
	FitCategory     domain.FitCategory `json:"fit_category"`
	CandidateName   string             `json:"candidate_name"`
	SelectionReason string             `json:"selection_reason"`
	Timestamp       time.Time          `json:"timestamp"`
}

func NewResultListItem(r domain.ResumeResult) ResultListItem {
	return ResultListItem{
		ID:              r.ID,
		ResumeID:        r.ResumeID,
		JDID:            r.JDID,
		MatchScore:      r.MatchScore,
		FitCategory:     r.FitCategory,
		CandidateName:   r.ResumeExtracted.Data().CandidateName,
		SelectionReason: r.SelectionReason,
		Timestamp:       r.Timestamp,
	}
}

type TopMatchesResponse struct {
	JDID    string                `json:"jd_id"`
	Total   int                   `json:"total"`
	Matches []domain.ResumeResult `json:"matches"`
}

// MatchResponse wraps a single-resume match; Cached is true when the stored
// result was returned without calling the agent.
type MatchResponse struct {
	Cached bool                 `json:"cached"`
	Result *domain.ResumeResult `json:"result"`
}

type FileUploadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	FileID     string `json:"file_id"`
	FileURL    string `json:"file_url"`
	ResourceID string `json:"resume_id"` // resume id, or the jd id for JD uploads
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	Checksum   string `json:"checksum"`
	TextLength int    `json:"text_length"`
}

type UserFileStats struct {
	ResumeCount      int64            `json:"resume_count"`
	JDCount          int64            `json:"jd_count"`
	StoredLimit      string           `json:"limit"`
	PerWorkflowLimit int              `json:"per_workflow_limit"`
	StorageUsedMB    float64          `json:"storage_used_mb"`
	Files            domain.FileStats `json:"files"`
	Message          string           `json:"message"`
}

type MatchingStats struct {
	TotalResumes int64                        `json:"total_resumes"`
	TotalJDs     int64                        `json:"total_job_descriptions"`
	TotalMatches int64                        `json:"total_matches"`
	AverageScore float64                      `json:"average_match_score"`
	ByCategory   map[domain.FitCategory]int64 `json:"matches_by_category"`
	JDsByStatus  map[domain.JDStatus]int64    `json:"job_descriptions_by_status"`
}

type JDStats struct {
	JDID            string                       `json:"jd_id"`
	Designation     string                       `json:"designation"`
	TotalCandidates int64                        `json:"total_candidates"`
	AverageScore    float64                      `json:"average_score"`
	BestScore       float64                      `json:"best_score"`
	ByCategory      map[domain.FitCategory]int64 `json:"candidates_by_category"`
}

type RecentResume struct {
	ID         string              `json:"id"`
	Filename   string              `json:"filename"`
	Source     domain.ResumeSource `json:"source"`
	UploadedAt time.Time           `json:"uploaded_at"`
}

type RecentJD struct {
	ID          string          `json:"id"`
	Designation string          `json:"designation"`
	Status      domain.JDStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Dashboard struct {
	Stats         MatchingStats         `json:"stats"`
	RecentResumes []RecentResume        `json:"recent_resumes"`
	RecentJDs     []RecentJD            `json:"recent_jds"`
	TopMatches    []domain.ResumeResult `json:"top_matches"`
}

type Trends struct {
	Success           bool      `json:"success"`
	CandidatesTrend   string    `json:"candidates_trend"`
	CandidatesTrendUp bool      `json:"candidates_trend_up"`
	HighMatchTrend    string    `json:"high_match_trend"`
	HighMatchTrendUp  bool      `json:"high_match_trend_up"`
	JDsTrend          string    `json:"jds_trend"`
	JDsTrendUp        bool      `json:"jds_trend_up"`
	CalculatedAt      time.Time `json:"calculated_at"`
}

type AuditLogList struct {
	Total int64             `json:"total"`
	Logs  []domain.AuditLog `json:"logs"`
}

// ActivityItem is an audit entry rendered for an activity feed.
type ActivityItem struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"` // success, info or warning
	Action    string         `json:"action"`
	Candidate string         `json:"candidate"`
	Score     *float64       `json:"score,omitempty"`
	UserID    string         `json:"user_id"`
	IPAddress string         `json:"ip_address,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type ActivityList struct {
	Success    bool           `json:"success"`
	UserID     string         `json:"user_id,omitempty"`
	Count      int            `json:"count"`
	Activities []ActivityItem `json:"activities"`
}
