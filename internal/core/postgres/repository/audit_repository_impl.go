package repository

import (
	"context"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"

	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) ports.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, f ports.AuditFilter) ([]domain.AuditLog, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		tx = tx.Where("action = ?", f.Action)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.AuditLog
	err := applyPage(tx, f.Page).Order("logged_at DESC").Find(&items).Error
	return items, total, err
}
