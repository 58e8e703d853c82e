package service

import (
	"context"
	"errors"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"strings"
	"time"

	"go.uber.org/zap"
)

const descriptionPreviewLen = 200

type JobDescriptionService interface {
	Create(ctx context.Context, actor domain.Actor, req dto.CreateJDRequest) (*domain.JobDescription, error)
	Get(ctx context.Context, id string) (*domain.JobDescription, error)
	List(ctx context.Context, f ports.JDFilter) ([]dto.JDListItem, error)
	Search(ctx context.Context, query string, page ports.Page) ([]dto.JDListItem, error)
	Update(ctx context.Context, actor domain.Actor, id string, req dto.UpdateJDRequest) (*domain.JobDescription, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	CountByStatus(ctx context.Context) (map[domain.JDStatus]int64, error)
}

type jdService struct {
	jds   ports.JobDescriptionRepository
	audit AuditService
	log   *zap.Logger
	now   func() time.Time
}

func NewJobDescriptionService(jds ports.JobDescriptionRepository, audit AuditService, log *zap.Logger) JobDescriptionService {
	return &jdService{
		jds:   jds,
		audit: audit,
		log:   log.Named("jds"),
		now:   time.Now,
	}
}

func (s *jdService) Create(ctx context.Context, actor domain.Actor, req dto.CreateJDRequest) (*domain.JobDescription, error) {
	status, err := jdStatus(req.Status)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, domain.NewValidationError("job description id must not be empty")
	}

	now := s.now().UTC()
	jd := &domain.JobDescription{
		ID:          id,
		Designation: req.Designation,
		Description: req.Description,
		Status:      status,
		Company:     req.Company,
		Location:    req.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actor.UserID != "" {
		jd.CreatedBy = &actor.UserID
	}
	if err := createJD(ctx, s.jds, jd); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditCreateJD,
		ResourceType: domain.ResourceJobDescription,
		ResourceID:   jd.ID,
		Details:      map[string]any{"jd_title": jd.Designation},
	})
	return jd, nil
}

func (s *jdService) Get(ctx context.Context, id string) (*domain.JobDescription, error) {
	return s.jds.GetByID(ctx, id)
}

func (s *jdService) List(ctx context.Context, f ports.JDFilter) ([]dto.JDListItem, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("unknown job description status %q", f.Status)
	}
	jds, err := s.jds.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return jdListItems(jds), nil
}

func (s *jdService) Search(ctx context.Context, query string, page ports.Page) ([]dto.JDListItem, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return nil, domain.NewValidationError("search query must be at least %d characters", minSearchQuery)
	}
	jds, err := s.jds.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return jdListItems(jds), nil
}

func (s *jdService) Update(ctx context.Context, actor domain.Actor, id string, req dto.UpdateJDRequest) (*domain.JobDescription, error) {
	fields := map[string]any{}
	if req.Designation != nil {
		fields["designation"] = *req.Designation
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, domain.NewValidationError("unknown job description status %q", *req.Status)
		}
		fields["status"] = *req.Status
	}
	if req.Company != nil {
		fields["company"] = *req.Company
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if len(fields) == 0 {
		return nil, domain.NewValidationError("no fields to update")
	}

	changed := make([]string, 0, len(fields))
	for k := range fields {
		changed = append(changed, k)
	}
	fields["updated_at"] = s.now().UTC()

	jd, err := s.jds.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditUpdateJD,
		ResourceType: domain.ResourceJobDescription,
		ResourceID:   jd.ID,
		Details:      map[string]any{"jd_title": jd.Designation, "fields": changed},
	})
	return jd, nil
}

func (s *jdService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.jds.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("job description deleted", zap.String("jd_id", id), zap.String("user_id", actor.UserID))
	return nil
}

func (s *jdService) CountByStatus(ctx context.Context) (map[domain.JDStatus]int64, error) {
	return s.jds.CountByStatus(ctx)
}

// createJD inserts jd and turns a taken id into a readable ErrAlreadyExists.
func createJD(ctx context.Context, jds ports.JobDescriptionRepository, jd *domain.JobDescription) error {
	err := jds.Create(ctx, jd)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("%w: job description with id %q already exists, use a different id or update the existing one",
			domain.ErrAlreadyExists, jd.ID)
	}
	if err != nil {
		return fmt.Errorf("create job description: %w", err)
	}
	return nil
}

func jdStatus(s domain.JDStatus) (domain.JDStatus, error) {
	if s == "" {
		return domain.JDActive, nil
	}
	if !s.Valid() {
		return "", domain.NewValidationError("unknown job description status %q", s)
	}
	return s, nil
}

func jdListItems(jds []domain.JobDescription) []dto.JDListItem {
	items := make([]dto.JDListItem, 0, len(jds))
	for _, jd := range jds {
		items = append(items, dto.JDListItem{
			ID:                 jd.ID,
			Designation:        jd.Designation,
			DescriptionPreview: preview(jd.Description, descriptionPreviewLen),
			Status:             jd.Status,
			Company:            jd.Company,
			Location:           jd.Location,
			CreatedAt:          jd.CreatedAt,
		})
	}
	return items
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
