package repository

import (
	"context"
	"fmt"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"

	"gorm.io/gorm"
)

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) ports.FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Save(ctx context.Context, blob *domain.FileBlob, meta *domain.FileMetadata) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(blob).Error; err != nil {
			return err
		}
		return tx.Create(meta).Error
	})
}

func (r *fileRepository) GetBlob(ctx context.Context, id string) (*domain.FileBlob, error) {
	var blob domain.FileBlob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&blob).Error; err != nil {
		return nil, notFound(err, "file "+id)
	}
	return &blob, nil
}

func (r *fileRepository) DeleteBlob(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("storage_path = ?", domain.BlobPath(id)).Delete(&domain.FileMetadata{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.FileBlob{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

func (r *fileRepository) MetadataByBlob(ctx context.Context, blobID string) (*domain.FileMetadata, error) {
	var meta domain.FileMetadata
	err := r.db.WithContext(ctx).Where("storage_path = ?", domain.BlobPath(blobID)).First(&meta).Error
	if err != nil {
		return nil, notFound(err, "file metadata "+blobID)
	}
	return &meta, nil
}

func (r *fileRepository) UserStats(ctx context.Context, userID string) (*domain.FileStats, error) {
	var row struct {
		Files      int64 `gorm:"column:files"`
		TotalBytes int64 `gorm:"column:total_bytes"`
		Resumes    int64 `gorm:"column:resumes"`
		JDs        int64 `gorm:"column:jds"`
	}
	err := r.db.WithContext(ctx).
		Model(&domain.FileMetadata{}).
		Where("uploaded_by = ?", userID).
		Select("COUNT(*) AS files, COALESCE(SUM(file_size), 0) AS total_bytes, " +
			"COUNT(resume_id) AS resumes, COUNT(jd_id) AS jds").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.FileStats{Files: row.Files, TotalBytes: row.TotalBytes, Resumes: row.Resumes, JDs: row.JDs}, nil
}

func (r *fileRepository) StorageStats(ctx context.Context) (*domain.StorageStats, error) {
	var totals struct {
		Files      int64
		TotalBytes int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.FileMetadata{}).
		Select("COUNT(*) AS files, COALESCE(SUM(file_size), 0) AS total_bytes").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		MimeType string
		Count    int64
	}
	err = r.db.WithContext(ctx).
		Model(&domain.FileMetadata{}).
		Select("mime_type, COUNT(*) AS count").
		Group("mime_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &domain.StorageStats{
		Files:      totals.Files,
		TotalBytes: totals.TotalBytes,
		ByMimeType: make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		stats.ByMimeType[row.MimeType] = row.Count
	}
	return stats, nil
}
