package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/config"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/extract"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Upload is a received file before validation.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Download is a file ready to be streamed back.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

type FileService interface {
	UploadResume(ctx context.Context, actor domain.Actor, up Upload, source domain.ResumeSource) (*dto.FileUploadResponse, error)
	UploadJD(ctx context.Context, actor domain.Actor, up Upload, jdID, designation string) (*dto.FileUploadResponse, error)

	// UpdateJDFile replaces the JD text with the new file's. Earlier files
	// are kept as previous versions.
	UpdateJDFile(ctx context.Context, actor domain.Actor, jdID string, up Upload, designation string) (*dto.FileUploadResponse, error)

	// DownloadResume falls back to a plain text export when the original
	// file is unavailable.
	DownloadResume(ctx context.Context, actor domain.Actor, resumeID string) (*Download, error)
	DownloadJD(ctx context.Context, jdID string) (*Download, error)

	UserStats(ctx context.Context, userID string) (*dto.UserFileStats, error)
	StorageStats(ctx context.Context) (*domain.StorageStats, error)
}

type fileService struct {
	resumes  ports.ResumeRepository
	jds      ports.JobDescriptionRepository
	files    ports.FileRepository
	audit    AuditService
	cfg      config.FilesConfig
	matching config.MatchingConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewFileService(
	resumes ports.ResumeRepository,
	jds ports.JobDescriptionRepository,
	files ports.FileRepository,
	audit AuditService,
	cfg config.FilesConfig,
	matching config.MatchingConfig,
	log *zap.Logger,
) FileService {
	return &fileService{
		resumes:  resumes,
		jds:      jds,
		files:    files,
		audit:    audit,
		cfg:      cfg,
		matching: matching,
		log:      log.Named("files"),
		now:      time.Now,
	}
}

// document is an upload that passed validation.
type document struct {
	Upload
	mime     string
	text     string
	checksum string
}

func (s *fileService) read(up Upload) (*document, error) {
	if int64(len(up.Data)) > s.cfg.MaxFileSizeBytes() {
		return nil, domain.NewValidationError("file too large, maximum size: %dMB", s.cfg.MaxFileSizeMB)
	}
	mime, err := extract.ResolveMime(up.ContentType, up.Data)
	if err != nil {
		return nil, domain.NewValidationError("%v", err)
	}
	text := extract.Text(up.Data, mime)
	if text == "" {
		return nil, domain.NewValidationError("could not extract text from file, please ensure it contains readable text")
	}

	sum := sha256.Sum256(up.Data)
	return &document{
		Upload:   up,
		mime:     mime,
		text:     text,
		checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// store persists the blob and its metadata. ref sets the owning record on
// the metadata before it is written.
func (s *fileService) store(ctx context.Context, actor domain.Actor, doc *document, ref func(*domain.FileMetadata)) (*domain.FileBlob, *domain.FileMetadata, error) {
	now := s.now().UTC()
	blob := &domain.FileBlob{
		ID:          uuid.NewString(),
		Filename:    doc.Filename,
		ContentType: doc.mime,
		Data:        doc.Data,
		Size:        int64(len(doc.Data)),
		Metadata: datatypes.JSONMap{
			"uploaded_by":   actor.UserID,
			"original_name": doc.Filename,
			"checksum":      doc.checksum,
		},
		UploadedBy: actor.UserID,
		UploadedAt: now,
	}
	meta := &domain.FileMetadata{
		ID:           uuid.NewString(),
		OriginalName: doc.Filename,
		StoragePath:  domain.BlobPath(blob.ID),
		FileSize:     blob.Size,
		MimeType:     doc.mime,
		Checksum:     doc.checksum,
		Security:     datatypes.NewJSONType(domain.FileSecurity{VirusScanStatus: domain.ScanClean}),
		StorageType:  domain.StorageTypeBlob,
		UploadedBy:   actor.UserID,
		UploadedAt:   now,
	}
	ref(meta)

	if err := s.files.Save(ctx, blob, meta); err != nil {
		return nil, nil, fmt.Errorf("store file %s: %w", doc.Filename, err)
	}
	return blob, meta, nil
}

// discard removes a blob whose owning record could not be written.
func (s *fileService) discard(ctx context.Context, blobID string) {
	if err := s.files.DeleteBlob(ctx, blobID); err != nil {
		s.log.Warn("failed to remove orphaned file", zap.String("blob_id", blobID), zap.Error(err))
	}
}

func (s *fileService) UploadResume(ctx context.Context, actor domain.Actor, up Upload, source domain.ResumeSource) (*dto.FileUploadResponse, error) {
	src, err := resumeSource(source)
	if err != nil {
		return nil, err
	}
	doc, err := s.read(up)
	if err != nil {
		return nil, err
	}
	if err := ensureStoredCapacity(ctx, s.resumes, s.matching.MaxStoredResumes); err != nil {
		return nil, err
	}

	resumeID := uuid.NewString()
	blob, meta, err := s.store(ctx, actor, doc, func(m *domain.FileMetadata) { m.ResumeID = &resumeID })
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	size := blob.Size
	r := &domain.Resume{
		ID:         resumeID,
		Filename:   doc.Filename,
		Text:       doc.text,
		FileSize:   &size,
		Source:     src,
		BlobID:     &blob.ID,
		UploadedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if actor.UserID != "" {
		r.UploadedBy = &actor.UserID
	}
	if err := s.resumes.Create(ctx, r); err != nil {
		s.discard(ctx, blob.ID)
		return nil, fmt.Errorf("create resume: %w", err)
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditUploadResume,
		ResourceType: domain.ResourceResume,
		ResourceID:   r.ID,
		Details:      map[string]any{"filename": r.Filename, "file_size": size, "mime_type": doc.mime},
	})
	s.log.Info("resume uploaded", zap.String("resume_id", r.ID), zap.Int("text_length", len(doc.text)))

	return s.uploadResponse(meta, doc, r.ID, "/files/download-resume/"+r.ID,
		fmt.Sprintf("Resume uploaded successfully (%d characters extracted)", len(doc.text))), nil
}

func (s *fileService) UploadJD(ctx context.Context, actor domain.Actor, up Upload, jdID, designation string) (*dto.FileUploadResponse, error) {
	jdID = strings.TrimSpace(jdID)
	if jdID == "" || strings.TrimSpace(designation) == "" {
		return nil, domain.NewValidationError("jd_id and designation are required")
	}
	doc, err := s.read(up)
	if err != nil {
		return nil, err
	}

	_, err = s.jds.GetByID(ctx, jdID)
	if err == nil {
		return nil, fmt.Errorf("%w: job description with id %q already exists, use a different id or update the existing one",
			domain.ErrAlreadyExists, jdID)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	blob, meta, err := s.store(ctx, actor, doc, func(m *domain.FileMetadata) { m.JDID = &jdID })
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	jd := &domain.JobDescription{
		ID:          jdID,
		Designation: designation,
		Description: doc.text,
		Status:      domain.JDActive,
		BlobID:      &blob.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actor.UserID != "" {
		jd.CreatedBy = &actor.UserID
	}
	if err := createJD(ctx, s.jds, jd); err != nil {
		s.discard(ctx, blob.ID)
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditCreateJD,
		ResourceType: domain.ResourceJobDescription,
		ResourceID:   jd.ID,
		Details:      map[string]any{"jd_title": jd.Designation, "filename": doc.Filename},
	})

	return s.uploadResponse(meta, doc, jd.ID, "/files/download-jd/"+jd.ID,
		fmt.Sprintf("Job Description uploaded successfully (%d characters extracted)", len(doc.text))), nil
}

func (s *fileService) UpdateJDFile(ctx context.Context, actor domain.Actor, jdID string, up Upload, designation string) (*dto.FileUploadResponse, error) {
	if _, err := s.jds.GetByID(ctx, jdID); err != nil {
		return nil, err
	}
	doc, err := s.read(up)
	if err != nil {
		return nil, err
	}

	blob, meta, err := s.store(ctx, actor, doc, func(m *domain.FileMetadata) { m.JDID = &jdID })
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"description": doc.text,
		"blob_id":     blob.ID,
		"updated_at":  s.now().UTC(),
	}
	if designation = strings.TrimSpace(designation); designation != "" {
		fields["designation"] = designation
	}
	jd, err := s.jds.Update(ctx, jdID, fields)
	if err != nil {
		s.discard(ctx, blob.ID)
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditUpdateJD,
		ResourceType: domain.ResourceJobDescription,
		ResourceID:   jd.ID,
		Details:      map[string]any{"jd_title": jd.Designation, "filename": doc.Filename},
	})

	return s.uploadResponse(meta, doc, jd.ID, "/files/download-jd/"+jd.ID,
		fmt.Sprintf("Job Description updated successfully (%d characters extracted)", len(doc.text))), nil
}

func (s *fileService) uploadResponse(meta *domain.FileMetadata, doc *document, resourceID, url, msg string) *dto.FileUploadResponse {
	return &dto.FileUploadResponse{
		Success:    true,
		Message:    msg,
		FileID:     meta.ID,
		FileURL:    url,
		ResourceID: resourceID,
		Filename:   doc.Filename,
		FileSize:   meta.FileSize,
		MimeType:   doc.mime,
		Checksum:   doc.checksum,
		TextLength: len(doc.text),
	}
}

func (s *fileService) DownloadResume(ctx context.Context, actor domain.Actor, resumeID string) (*Download, error) {
	r, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	if r.BlobID != nil {
		blob, err := s.files.GetBlob(ctx, *r.BlobID)
		if err == nil {
			s.audit.Record(ctx, actor, AuditEntry{
				Action:       domain.AuditExportData,
				ResourceType: domain.ResourceResume,
				ResourceID:   r.ID,
				Details:      map[string]any{"filename": blob.Filename},
			})
			return &Download{Filename: blob.Filename, ContentType: blob.ContentType, Data: blob.Data}, nil
		}
		s.log.Warn("resume file unavailable, exporting text", zap.String("resume_id", r.ID), zap.Error(err))
	}

	if strings.TrimSpace(r.Text) == "" {
		return nil, fmt.Errorf("file for resume %s: %w", r.ID, domain.ErrNotFound)
	}
	return &Download{
		Filename:    textExportName(r.Filename),
		ContentType: extract.MimeText,
		Data:        []byte("Resume: " + r.Filename + "\n\n" + r.Text),
	}, nil
}

func (s *fileService) DownloadJD(ctx context.Context, jdID string) (*Download, error) {
	jd, err := s.jds.GetByID(ctx, jdID)
	if err != nil {
		return nil, err
	}
	if jd.BlobID == nil {
		return nil, fmt.Errorf("file for job description %s: %w", jd.ID, domain.ErrNotFound)
	}
	blob, err := s.files.GetBlob(ctx, *jd.BlobID)
	if err != nil {
		return nil, err
	}
	return &Download{Filename: blob.Filename, ContentType: blob.ContentType, Data: blob.Data}, nil
}

func (s *fileService) UserStats(ctx context.Context, userID string) (*dto.UserFileStats, error) {
	resumes, err := s.resumes.Count(ctx)
	if err != nil {
		return nil, err
	}
	jds, err := s.jds.CountByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := "Unlimited"
	if s.matching.MaxStoredResumes > 0 {
		limit = strconv.Itoa(s.matching.MaxStoredResumes)
	}
	return &dto.UserFileStats{
		ResumeCount:      resumes,
		JDCount:          jds,
		StoredLimit:      limit,
		PerWorkflowLimit: s.matching.MaxResumesPerWorkflow,
		StorageUsedMB:    math.Round(float64(files.TotalBytes)/(1024*1024)*100) / 100,
		Files:            *files,
		Message: fmt.Sprintf("You have %d resumes uploaded. Limit: %d resumes per workflow.",
			resumes, s.matching.MaxResumesPerWorkflow),
	}, nil
}

func (s *fileService) StorageStats(ctx context.Context) (*domain.StorageStats, error) {
	return s.files.StorageStats(ctx)
}

// textExportName swaps a document extension for .txt.
func textExportName(name string) string {
	if name == "" {
		return "resume.txt"
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".doc", ".docx":
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
	}
	return name
}
