package domain

import (
	"time"
)

type ResumeSource string

const (
	SourceDirect   ResumeSource = "direct"
	SourceLinkedIn ResumeSource = "LinkedIn"
	SourceIndeed   ResumeSource = "Indeed"
	SourceNaukri   ResumeSource = "Naukri.com"
)

func (s ResumeSource) Valid() bool {
	switch s {
	case SourceDirect, SourceLinkedIn, SourceIndeed, SourceNaukri:
		return true
	}
	return false
}

type Resume struct {
	ID         string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Filename   string       `gorm:"type:varchar(255);not null" json:"filename"`
	Text       string       `gorm:"type:text;not null" json:"text"`
	FileSize   *int64       `json:"file_size,omitempty"`
	Source     ResumeSource `gorm:"type:varchar(20);index;default:'direct'" json:"source"`
	UploadedBy *string      `gorm:"type:varchar(36);index" json:"uploaded_by,omitempty"`
	BlobID     *string      `gorm:"type:varchar(36)" json:"blob_id,omitempty"`
	UploadedAt time.Time    `gorm:"index" json:"uploaded_at"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type JDStatus string

const (
	JDActive JDStatus = "active"
	JDClosed JDStatus = "closed"
	JDDraft  JDStatus = "draft"
)

func (s JDStatus) Valid() bool {
	switch s {
	case JDActive, JDClosed, JDDraft:
		return true
	}
	return false
}

// JobDescription ids are caller-chosen strings such as "AZ-1".
type JobDescription struct {
	ID          string    `gorm:"type:varchar(100);primaryKey" json:"id"`
	Designation string    `gorm:"type:varchar(255);not null" json:"designation"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      JDStatus  `gorm:"type:varchar(20);index;default:'active'" json:"status"`
	Company     *string   `gorm:"type:varchar(255)" json:"company,omitempty"`
	Location    *string   `gorm:"type:varchar(255)" json:"location,omitempty"`
	CreatedBy   *string   `gorm:"type:varchar(36);index" json:"created_by,omitempty"`
	BlobID      *string   `gorm:"type:varchar(36)" json:"blob_id,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Text is what the matching agent reads for this job description.
func (jd *JobDescription) Text() string {
	return jd.Designation + "\n\n" + jd.Description
}
