package repository

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"

	"gorm.io/gorm"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

var terminalStatuses = []domain.WorkflowStatus{domain.WorkflowCompleted, domain.WorkflowFailed}

func (r *workflowRepository) Create(ctx context.Context, w *domain.WorkflowExecution) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *workflowRepository) Get(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	var w domain.WorkflowExecution
	err := r.db.WithContext(ctx).Where("workflow_id = ? OR id = ?", id, id).First(&w).Error
	if err != nil {
		return nil, notFound(err, "workflow "+id)
	}
	return &w, nil
}

func (r *workflowRepository) Latest(ctx context.Context, jdID string) (*domain.WorkflowExecution, error) {
	tx := r.db.WithContext(ctx).Order("started_at DESC").Order("workflow_id DESC")
	if jdID != "" {
		tx = tx.Where("jd_id = ?", jdID)
	}

	var w domain.WorkflowExecution
	if err := tx.First(&w).Error; err != nil {
		return nil, notFound(err, "workflow")
	}
	return &w, nil
}

func (r *workflowRepository) List(ctx context.Context, f ports.WorkflowFilter) ([]domain.WorkflowExecution, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.WorkflowExecution{})
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.WorkflowExecution
	err := applyPage(tx, f.Page).Order("started_at DESC").Find(&items).Error
	return items, total, err
}

// Finish writes the terminal state. The status guard in the WHERE clause makes
// the transition one-shot: once a run is completed or failed, later writes
// match no rows and are rejected.
func (r *workflowRepository) Finish(ctx context.Context, w *domain.WorkflowExecution) error {
	if !w.Status.IsTerminal() {
		return fmt.Errorf("finish workflow %s with status %q: %w", w.WorkflowID, w.Status, domain.ErrInvalidInput)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status NOT IN ?", w.ID, terminalStatuses).
		Updates(map[string]interface{}{
			"status":            w.Status,
			"completed_at":      w.CompletedAt,
			"processed_resumes": w.ProcessedResumes,
			"agents":            w.Agents,
			"progress":          w.Progress,
			"metrics":           w.Metrics,
			"results":           w.Results,
			"error":             w.Error,
			"error_details":     w.ErrorDetails,
			"updated_at":        w.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Either the record is gone or another writer already finalized it.
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.WorkflowExecution{}).Where("id = ?", w.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("workflow %s: %w", w.WorkflowID, domain.ErrNotFound)
		}
		return fmt.Errorf("workflow %s: %w", w.WorkflowID, domain.ErrWorkflowFinalized)
	}
	return nil
}

func (r *workflowRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("workflow_id = ? OR id = ?", id, id).Delete(&domain.WorkflowExecution{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("workflow %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
