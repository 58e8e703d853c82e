package service

import (
	"context"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minSearchQuery = 3

type ResumeService interface {
	Create(ctx context.Context, actor domain.Actor, req dto.CreateResumeRequest) (*domain.Resume, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Resume, error)
	List(ctx context.Context, f ports.ResumeFilter) ([]domain.Resume, error)
	Search(ctx context.Context, query string, page ports.Page) ([]domain.Resume, error)
	Update(ctx context.Context, id string, req dto.UpdateResumeRequest) (*domain.Resume, error)

	// Delete removes the resume together with its results and stored file.
	Delete(ctx context.Context, actor domain.Actor, id string) error

	Count(ctx context.Context) (int64, error)
}

type resumeService struct {
	resumes   ports.ResumeRepository
	results   ports.ResultRepository
	files     ports.FileRepository
	audit     AuditService
	maxStored int
	log       *zap.Logger
	now       func() time.Time
}

// NewResumeService builds the resume service. maxStored caps the number of
// stored resumes; zero means unlimited.
func NewResumeService(
	resumes ports.ResumeRepository,
	results ports.ResultRepository,
	files ports.FileRepository,
	audit AuditService,
	maxStored int,
	log *zap.Logger,
) ResumeService {
	return &resumeService{
		resumes:   resumes,
		results:   results,
		files:     files,
		audit:     audit,
		maxStored: maxStored,
		log:       log.Named("resumes"),
		now:       time.Now,
	}
}

func (s *resumeService) Create(ctx context.Context, actor domain.Actor, req dto.CreateResumeRequest) (*domain.Resume, error) {
	source, err := resumeSource(req.Source)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError("resume text must not be empty")
	}
	if err := ensureStoredCapacity(ctx, s.resumes, s.maxStored); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	r := &domain.Resume{
		ID:         uuid.NewString(),
		Filename:   req.Filename,
		Text:       req.Text,
		FileSize:   req.FileSize,
		Source:     source,
		UploadedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if actor.UserID != "" {
		r.UploadedBy = &actor.UserID
	}
	if err := s.resumes.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditUploadResume,
		ResourceType: domain.ResourceResume,
		ResourceID:   r.ID,
		Details:      map[string]any{"filename": r.Filename},
	})
	return r, nil
}

func (s *resumeService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Resume, error) {
	r, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditViewResume,
		ResourceType: domain.ResourceResume,
		ResourceID:   r.ID,
		Details:      map[string]any{"filename": r.Filename},
	})
	return r, nil
}

func (s *resumeService) List(ctx context.Context, f ports.ResumeFilter) ([]domain.Resume, error) {
	if f.Source != "" && !f.Source.Valid() {
		return nil, domain.NewValidationError("unknown resume source %q", f.Source)
	}
	return s.resumes.List(ctx, f)
}

func (s *resumeService) Search(ctx context.Context, query string, page ports.Page) ([]domain.Resume, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return nil, domain.NewValidationError("search query must be at least %d characters", minSearchQuery)
	}
	return s.resumes.Search(ctx, query, page)
}

func (s *resumeService) Update(ctx context.Context, id string, req dto.UpdateResumeRequest) (*domain.Resume, error) {
	fields := map[string]any{}
	if req.Filename != nil {
		fields["filename"] = *req.Filename
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return nil, domain.NewValidationError("resume text must not be empty")
		}
		fields["text"] = *req.Text
	}
	if req.Source != nil {
		if !req.Source.Valid() {
			return nil, domain.NewValidationError("unknown resume source %q", *req.Source)
		}
		fields["source"] = *req.Source
	}
	if len(fields) == 0 {
		return nil, domain.NewValidationError("no fields to update")
	}
	fields["updated_at"] = s.now().UTC()

	return s.resumes.Update(ctx, id, fields)
}

func (s *resumeService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	r, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.results.DeleteByResume(ctx, r.ID); err != nil {
		return fmt.Errorf("delete results of resume %s: %w", r.ID, err)
	}
	if r.BlobID != nil {
		if err := s.files.DeleteBlob(ctx, *r.BlobID); err != nil {
			// Orphaned blobs are tolerated.
			s.log.Warn("failed to delete resume file", zap.String("resume_id", r.ID), zap.Error(err))
		}
	}
	if err := s.resumes.Delete(ctx, r.ID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditDeleteResume,
		ResourceType: domain.ResourceResume,
		ResourceID:   r.ID,
		Details:      map[string]any{"filename": r.Filename},
	})
	return nil
}

func (s *resumeService) Count(ctx context.Context) (int64, error) {
	return s.resumes.Count(ctx)
}

func resumeSource(s domain.ResumeSource) (domain.ResumeSource, error) {
	if s == "" {
		return domain.SourceDirect, nil
	}
	if !s.Valid() {
		return "", domain.NewValidationError("unknown resume source %q", s)
	}
	return s, nil
}

// ensureStoredCapacity enforces the stored-resume cap. It is unrelated to the
// per-workflow limit applied to batch runs.
func ensureStoredCapacity(ctx context.Context, resumes ports.ResumeRepository, max int) error {
	if max <= 0 {
		return nil
	}
	count, err := resumes.Count(ctx)
	if err != nil {
		return err
	}
	if count >= int64(max) {
		return fmt.Errorf("%w: maximum %d stored resumes reached", domain.ErrLimitExceeded, max)
	}
	return nil
}
