package repository

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"time"

	"gorm.io/gorm"
)

type jdRepository struct {
	db *gorm.DB
}

func NewJobDescriptionRepository(db *gorm.DB) ports.JobDescriptionRepository {
	return &jdRepository{db: db}
}

func (r *jdRepository) Create(ctx context.Context, jd *domain.JobDescription) error {
	err := r.db.WithContext(ctx).Create(jd).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("job description %s: %w", jd.ID, domain.ErrAlreadyExists)
	}
	return err
}

func (r *jdRepository) GetByID(ctx context.Context, id string) (*domain.JobDescription, error) {
	var jd domain.JobDescription
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&jd).Error; err != nil {
		return nil, notFound(err, "job description "+id)
	}
	return &jd, nil
}

func (r *jdRepository) List(ctx context.Context, f ports.JDFilter) ([]domain.JobDescription, error) {
	tx := r.db.WithContext(ctx)
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}

	var items []domain.JobDescription
	err := applyPage(tx, f.Page).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *jdRepository) Search(ctx context.Context, query string, page ports.Page) ([]domain.JobDescription, error) {
	pattern := likePattern(query)

	var items []domain.JobDescription
	err := applyPage(r.db.WithContext(ctx), page).
		Where("LOWER(designation) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *jdRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.JobDescription, error) {
	result := r.db.WithContext(ctx).Model(&domain.JobDescription{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("job description %s: %w", id, domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *jdRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.JobDescription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job description %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *jdRepository) CountByStatus(ctx context.Context) (map[domain.JDStatus]int64, error) {
	var rows []struct {
		Status domain.JDStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.JobDescription{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[domain.JDStatus]int64{domain.JDActive: 0, domain.JDClosed: 0, domain.JDDraft: 0}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *jdRepository) CountByCreator(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.JobDescription{}).Where("created_by = ?", userID).Count(&count).Error
	return count, err
}

func (r *jdRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.JobDescription{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
