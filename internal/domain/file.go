package domain

import (
	"time"

	"gorm.io/datatypes"
)

type VirusScanStatus string

const (
	ScanPending  VirusScanStatus = "pending"
	ScanClean    VirusScanStatus = "clean"
	ScanInfected VirusScanStatus = "infected"
	ScanError    VirusScanStatus = "error"
)

const StorageTypeBlob = "blob"

type FileSecurity struct {
	VirusScanStatus VirusScanStatus `json:"virus_scan_status"`
	VirusScanDate   *time.Time      `json:"virus_scan_date,omitempty"`
	Encrypted       bool            `json:"encrypted"`
}

// FileMetadata describes an uploaded document and points at its blob.
type FileMetadata struct {
	ID           string                           `gorm:"type:varchar(36);primaryKey" json:"id"`
	ResumeID     *string                          `gorm:"type:varchar(36);index" json:"resume_id,omitempty"`
	JDID         *string                          `gorm:"type:varchar(100);index" json:"jd_id,omitempty"`
	OriginalName string                           `gorm:"type:varchar(255)" json:"original_name"`
	StoragePath  string                           `gorm:"type:varchar(255)" json:"storage_path"`
	FileSize     int64                            `json:"file_size"`
	MimeType     string                           `gorm:"type:varchar(120)" json:"mime_type"`
	Checksum     string                           `gorm:"type:varchar(64)" json:"checksum"`
	Security     datatypes.JSONType[FileSecurity] `json:"security"`
	StorageType  string                           `gorm:"type:varchar(20)" json:"storage_type"`
	UploadedBy   string                           `gorm:"type:varchar(36);index" json:"uploaded_by"`
	UploadedAt   time.Time                        `gorm:"index" json:"uploaded_at"`
	ExpiresAt    *time.Time                       `json:"expires_at,omitempty"`
}

// FileBlob holds raw uploaded bytes.
type FileBlob struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Filename    string            `gorm:"type:varchar(255)" json:"filename"`
	ContentType string            `gorm:"type:varchar(120)" json:"content_type"`
	Data        []byte            `json:"-"`
	Size        int64             `json:"size"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	UploadedBy  string            `gorm:"type:varchar(36);index" json:"uploaded_by"`
	UploadedAt  time.Time         `json:"uploaded_at"`
}

func BlobPath(id string) string {
	return "blob://" + id
}
