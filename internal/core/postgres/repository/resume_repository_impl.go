package repository

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"time"

	"gorm.io/gorm"
)

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ports.ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, res *domain.Resume) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *resumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	var res domain.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error; err != nil {
		return nil, notFound(err, "resume "+id)
	}
	return &res, nil
}

func (r *resumeRepository) GetMany(ctx context.Context, ids []string) ([]domain.Resume, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Resume
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *resumeRepository) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Resume{}).
		Order("uploaded_at DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *resumeRepository) List(ctx context.Context, f ports.ResumeFilter) ([]domain.Resume, error) {
	tx := r.db.WithContext(ctx)
	if f.Source != "" {
		tx = tx.Where("source = ?", f.Source)
	}

	var items []domain.Resume
	err := applyPage(tx, f.Page).Order("uploaded_at DESC").Find(&items).Error
	return items, err
}

func (r *resumeRepository) Search(ctx context.Context, query string, page ports.Page) ([]domain.Resume, error) {
	pattern := likePattern(query)

	var items []domain.Resume
	err := applyPage(r.db.WithContext(ctx), page).
		Where("LOWER(text) LIKE ? OR LOWER(filename) LIKE ?", pattern, pattern).
		Order("uploaded_at DESC").
		Find(&items).Error
	return items, err
}

func (r *resumeRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.Resume, error) {
	result := r.db.WithContext(ctx).Model(&domain.Resume{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("resume %s: %w", id, domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *resumeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Resume{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *resumeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Resume{}).Count(&count).Error
	return count, err
}

func (r *resumeRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Resume{}).Where("uploaded_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *resumeRepository) CountByUploader(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Resume{}).Where("uploaded_by = ?", userID).Count(&count).Error
	return count, err
}
