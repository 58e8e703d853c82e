package domain

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditLogin            AuditAction = "login"
	AuditLogout           AuditAction = "logout"
	AuditViewResume       AuditAction = "view_resume"
	AuditExportData       AuditAction = "export_data"
	AuditDeleteResume     AuditAction = "delete_resume"
	AuditCreateJD         AuditAction = "create_jd"
	AuditRunMatching      AuditAction = "run_matching"
	AuditUploadResume     AuditAction = "upload_resume"
	AuditUpdateJD         AuditAction = "update_jd"
	AuditStartWorkflow    AuditAction = "start_workflow"
	AuditCompleteWorkflow AuditAction = "complete_workflow"
)

// Resource types referenced by audit entries.
const (
	ResourceUser              = "user"
	ResourceResume            = "resume"
	ResourceJobDescription    = "job_description"
	ResourceResumeResult      = "resume_result"
	ResourceWorkflowExecution = "workflow_execution"
)

type AuditLog struct {
	ID           string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string            `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Action       AuditAction       `gorm:"type:varchar(30);index;not null" json:"action"`
	ResourceType string            `gorm:"type:varchar(50)" json:"resource_type"`
	ResourceID   *string           `gorm:"type:varchar(100)" json:"resource_id,omitempty"`
	IPAddress    string            `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent    string            `gorm:"type:varchar(512)" json:"user_agent"`
	Details      datatypes.JSONMap `json:"details,omitempty"`
	Timestamp    time.Time         `gorm:"column:logged_at;index" json:"timestamp"`
	Success      bool              `json:"success"`
	ErrorMessage *string           `gorm:"type:text" json:"error_message,omitempty"`
}
