package dto

import "hr-comparator/internal/domain"

type RegisterRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name" binding:"required"`
	Role      domain.UserRole `json:"role"`
	Company   *string         `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateResumeRequest struct {
	Filename string              `json:"filename" binding:"required"`
	Text     string              `json:"text" binding:"required"`
	FileSize *int64              `json:"file_size"`
	Source   domain.ResumeSource `json:"source"`
}

type UpdateResumeRequest struct {
	Filename *string              `json:"filename"`
	Text     *string              `json:"text"`
	Source   *domain.ResumeSource `json:"source"`
}

type CreateJDRequest struct {
	ID          string          `json:"id" binding:"required"`
	Designation string          `json:"designation" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Status      domain.JDStatus `json:"status"`
	Company     *string         `json:"company"`
	Location    *string         `json:"location"`
}

type UpdateJDRequest struct {
	Designation *string          `json:"designation"`
	Description *string          `json:"description"`
	Status      *domain.JDStatus `json:"status"`
	Company     *string          `json:"company"`
	Location    *string          `json:"location"`
}

// MatchRequest scores one resume against one job description.
type MatchRequest struct {
	ResumeID       string `json:"resume_id" binding:"required"`
	JDID           string `json:"jd_id" binding:"required"`
	ForceReprocess bool   `json:"force_reprocess"`
}

// BatchMatchRequest starts a workflow. An empty ResumeIDs means every stored
// resume, newest first.
type BatchMatchRequest struct {
	JDID           string   `json:"jd_id" binding:"required"`
	ResumeIDs      []string `json:"resume_ids"`
	ForceReprocess bool     `json:"force_reprocess"`
}

// PageQuery is bound from ?skip=&limit= on list endpoints.
type PageQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0"`
}

// Normalize fills in the default and clamps to max.
func (q PageQuery) Normalize(def, max int) PageQuery {
	if q.Limit <= 0 {
		q.Limit = def
	}
	if q.Limit > max {
		q.Limit = max
	}
	return q
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=3"`
	Limit int    `form:"limit" binding:"min=0"`
}

type ResumeListQuery struct {
	PageQuery
	Source domain.ResumeSource `form:"source"`
}

type JDListQuery struct {
	PageQuery
	Status domain.JDStatus `form:"status"`
}

type ResultQuery struct {
	PageQuery
	MinScore *float64 `form:"min_score" binding:"omitempty,min=0,max=100"`
}

type ExecutionQuery struct {
	PageQuery
	Status domain.WorkflowStatus `form:"status"`
}

type AuditQuery struct {
	PageQuery
	Action domain.AuditAction `form:"action"`
}

type LimitQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

// UploadForm carries the multipart fields sent alongside a file.
type UploadForm struct {
	Source      domain.ResumeSource `form:"source"`
	JDID        string              `form:"jd_id"`
	Designation string              `form:"designation"`
}
