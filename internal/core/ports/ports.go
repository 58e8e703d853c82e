package ports

import (
	"context"
	"hr-comparator/internal/domain"
	"time"
)

// Page bounds a list query.
type Page struct {
	Skip  int
	Limit int
}

type ResumeFilter struct {
	Page
	Source domain.ResumeSource
}

type JDFilter struct {
	Page
	Status domain.JDStatus
}

type ResultFilter struct {
	Page
	MinScore *float64
}

type WorkflowFilter struct {
	Page
	Status domain.WorkflowStatus
}

type AuditFilter struct {
	Page
	UserID string
	Action domain.AuditAction
}

// ResumeRepository represents resume store operations
type ResumeRepository interface {
	Create(ctx context.Context, r *domain.Resume) error
	GetByID(ctx context.Context, id string) (*domain.Resume, error)

	// GetMany returns the resumes that exist among ids, in no particular order.
	GetMany(ctx context.Context, ids []string) ([]domain.Resume, error)

	// RecentIDs returns up to limit resume ids, newest upload first.
	RecentIDs(ctx context.Context, limit int) ([]string, error)

	List(ctx context.Context, f ResumeFilter) ([]domain.Resume, error)
	Search(ctx context.Context, query string, page Page) ([]domain.Resume, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.Resume, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByUploader(ctx context.Context, userID string) (int64, error)
}

// JobDescriptionRepository represents job description store operations
type JobDescriptionRepository interface {
	// Create fails with domain.ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, jd *domain.JobDescription) error
	GetByID(ctx context.Context, id string) (*domain.JobDescription, error)
	List(ctx context.Context, f JDFilter) ([]domain.JobDescription, error)
	Search(ctx context.Context, query string, page Page) ([]domain.JobDescription, error)
	Update(ctx context.Context, id string, fields map[string]any) (*domain.JobDescription, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.JDStatus]int64, error)
	CountByCreator(ctx context.Context, userID string) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// ResultRepository represents match result store operations
type ResultRepository interface {
	// Upsert writes the result for its (resume, jd) pair, replacing any
	// previous one, and returns the stored row.
	Upsert(ctx context.Context, r *domain.ResumeResult) (*domain.ResumeResult, error)

	GetByID(ctx context.Context, id string) (*domain.ResumeResult, error)
	GetByPair(ctx context.Context, resumeID, jdID string) (*domain.ResumeResult, error)
	ListByJD(ctx context.Context, jdID string, f ResultFilter) ([]domain.ResumeResult, error)

	// Top returns the best scored results, for one JD or across all when jdID is empty.
	Top(ctx context.Context, jdID string, limit int) ([]domain.ResumeResult, error)

	Delete(ctx context.Context, id string) error
	DeleteByResume(ctx context.Context, resumeID string) error
	Stats(ctx context.Context, jdID string) (*domain.ResultStats, error)
	CountSince(ctx context.Context, minScore float64, since time.Time) (int64, error)
}

// UserRepository represents user store operations
type UserRepository interface {
	// Create fails with domain.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateSecurity(ctx context.Context, id string, sec domain.SecuritySettings) error
	Count(ctx context.Context) (int64, error)
}

// AuditRepository represents audit trail operations
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]domain.AuditLog, int64, error)
}

// FileRepository represents uploaded file storage
type FileRepository interface {
	// Save stores the blob and its metadata in one transaction.
	Save(ctx context.Context, blob *domain.FileBlob, meta *domain.FileMetadata) error
	GetBlob(ctx context.Context, id string) (*domain.FileBlob, error)
	DeleteBlob(ctx context.Context, id string) error
	MetadataByBlob(ctx context.Context, blobID string) (*domain.FileMetadata, error)
	UserStats(ctx context.Context, userID string) (*domain.FileStats, error)
	StorageStats(ctx context.Context) (*domain.StorageStats, error)
}

// WorkflowRepository represents workflow execution operations
type WorkflowRepository interface {
	Create(ctx context.Context, w *domain.WorkflowExecution) error

	// Get resolves either the WF- workflow id or the record id.
	Get(ctx context.Context, id string) (*domain.WorkflowExecution, error)

	// Latest returns the most recently started run, for one JD or overall
	// when jdID is empty.
	Latest(ctx context.Context, jdID string) (*domain.WorkflowExecution, error)

	List(ctx context.Context, f WorkflowFilter) ([]domain.WorkflowExecution, int64, error)

	// Finish persists the terminal state of w. It fails with
	// domain.ErrWorkflowFinalized if the stored record is already terminal.
	Finish(ctx context.Context, w *domain.WorkflowExecution) error

	Delete(ctx context.Context, id string) error
}

// MatchingAgent scores a batch of resumes against one job description.
type MatchingAgent interface {
	CompareBatch(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error)
}

// EventBus represents the workflow event bus operations
type EventBus interface {
	// Publish a workflow lifecycle transition
	PublishWorkflowEvent(ctx context.Context, event domain.WorkflowEvent) error

	// Subscribe to lifecycle events until ctx is done
	SubscribeToEvents(ctx context.Context) (<-chan domain.WorkflowEvent, error)
}
