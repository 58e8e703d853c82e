package domain

// ResultStats aggregates stored match results.
type ResultStats struct {
	Count        int64                 `json:"count"`
	AverageScore float64               `json:"average_score"`
	BestScore    float64               `json:"best_score"`
	ByCategory   map[FitCategory]int64 `json:"by_category"`
}

type FileStats struct {
	Files      int64 `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
	Resumes    int64 `json:"resumes"`
	JDs        int64 `json:"job_descriptions"`
}

type StorageStats struct {
	Files      int64            `json:"files"`
	TotalBytes int64            `json:"total_bytes"`
	ByMimeType map[string]int64 `json:"by_mime_type"`
}

// Models lists every persisted record type.
func Models() []any {
	return []any{
		&User{},
		&Resume{},
		&JobDescription{},
		&ResumeResult{},
		&AuditLog{},
		&FileBlob{},
		&FileMetadata{},
		&WorkflowExecution{},
	}
}
