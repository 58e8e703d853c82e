package repository

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ports.ResultRepository {
	return &resultRepository{db: db}
}

// Columns rewritten when a pair is reprocessed. id is deliberately absent so
// the row keeps its identity.
var resultUpsertColumns = []string{
	"workflow_id", "match_score", "fit_category",
	"jd_extracted", "resume_extracted", "match_breakdown", "selection_reason",
	"scored_at", "agent_version", "processing_duration_ms", "confidence_score",
}

func (r *resultRepository) Upsert(ctx context.Context, res *domain.ResumeResult) (*domain.ResumeResult, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resume_id"}, {Name: "jd_id"}},
			DoUpdates: clause.AssignmentColumns(resultUpsertColumns),
		}).
		Create(res).Error
	if err != nil {
		return nil, fmt.Errorf("upsert result %s/%s: %w", res.ResumeID, res.JDID, err)
	}

	return r.GetByPair(ctx, res.ResumeID, res.JDID)
}

func (r *resultRepository) GetByID(ctx context.Context, id string) (*domain.ResumeResult, error) {
	var res domain.ResumeResult
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error; err != nil {
		return nil, notFound(err, "result "+id)
	}
	return &res, nil
}

func (r *resultRepository) GetByPair(ctx context.Context, resumeID, jdID string) (*domain.ResumeResult, error) {
	var res domain.ResumeResult
	err := r.db.WithContext(ctx).Where("resume_id = ? AND jd_id = ?", resumeID, jdID).First(&res).Error
	if err != nil {
		return nil, notFound(err, "result")
	}
	return &res, nil
}

func (r *resultRepository) ListByJD(ctx context.Context, jdID string, f ports.ResultFilter) ([]domain.ResumeResult, error) {
	tx := r.db.WithContext(ctx).Where("jd_id = ?", jdID)
	if f.MinScore != nil {
		tx = tx.Where("match_score >= ?", *f.MinScore)
	}

	var items []domain.ResumeResult
	err := applyPage(tx, f.Page).Order("match_score DESC").Find(&items).Error
	return items, err
}

func (r *resultRepository) Top(ctx context.Context, jdID string, limit int) ([]domain.ResumeResult, error) {
	tx := r.db.WithContext(ctx)
	if jdID != "" {
		tx = tx.Where("jd_id = ?", jdID)
	}

	var items []domain.ResumeResult
	err := tx.Order("match_score DESC").Order("scored_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *resultRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ResumeResult{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("result %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *resultRepository) DeleteByResume(ctx context.Context, resumeID string) error {
	return r.db.WithContext(ctx).Where("resume_id = ?", resumeID).Delete(&domain.ResumeResult{}).Error
}

func (r *resultRepository) Stats(ctx context.Context, jdID string) (*domain.ResultStats, error) {
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&domain.ResumeResult{})
		if jdID != "" {
			tx = tx.Where("jd_id = ?", jdID)
		}
		return tx
	}

	var agg struct {
		Count int64
		Avg   float64
		Best  float64
	}
	err := scoped().
		Select("COUNT(*) AS count, COALESCE(AVG(match_score), 0) AS avg, COALESCE(MAX(match_score), 0) AS best").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		FitCategory domain.FitCategory
		Count       int64
	}
	err = scoped().Select("fit_category, COUNT(*) AS count").Group("fit_category").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &domain.ResultStats{
		Count:        agg.Count,
		AverageScore: agg.Avg,
		BestScore:    agg.Best,
		ByCategory:   make(map[domain.FitCategory]int64, len(rows)),
	}
	for _, row := range rows {
		stats.ByCategory[row.FitCategory] = row.Count
	}
	return stats, nil
}

func (r *resultRepository) CountSince(ctx context.Context, minScore float64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ResumeResult{}).
		Where("match_score >= ? AND scored_at >= ?", minScore, since).
		Count(&count).Error
	return count, err
}
