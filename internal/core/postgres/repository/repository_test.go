package repository

import (
	"context"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJD(t *testing.T, repo ports.JobDescriptionRepository, id string) *domain.JobDescription {
	t.Helper()
	jd := &domain.JobDescription{ID: id, Designation: "Go Developer", Description: "Build APIs in Go", Status: domain.JDActive}
	require.NoError(t, repo.Create(context.Background(), jd))
	return jd
}

func TestResultRepository_UpsertKeepsOneRowPerPair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()

	var first *domain.ResumeResult
	for i, score := range []float64{40, 65, 91} {
		res := domain.NewResumeResult(uuid.NewString(), "AZ-1",
			domain.MatchResult{ResumeID: "r1", MatchScore: score}, nil, time.Now())

		stored, err := repo.Upsert(ctx, res)
		require.NoError(t, err)
		if i == 0 {
			first = stored
		}
		assert.Equal(t, first.ID, stored.ID, "row identity survives reprocessing")
		assert.Equal(t, score, stored.MatchScore)
	}

	var count int64
	require.NoError(t, db.Model(&domain.ResumeResult{}).Where("resume_id = ? AND jd_id = ?", "r1", "AZ-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repo.GetByPair(ctx, "r1", "AZ-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FitBest, got.FitCategory)
}

func TestResultRepository_StatsAndTop(t *testing.T) {
	repo := NewResultRepository(testutil.NewDB(t))
	ctx := context.Background()

	for i, score := range []float64{90, 55, 20} {
		_, err := repo.Upsert(ctx, domain.NewResumeResult(uuid.NewString(), "AZ-1",
			domain.MatchResult{ResumeID: []string{"a", "b", "c"}[i], MatchScore: score}, nil, time.Now()))
		require.NoError(t, err)
	}

	stats, err := repo.Stats(ctx, "AZ-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Count)
	assert.InDelta(t, 55.0, stats.AverageScore, 0.001)
	assert.Equal(t, 90.0, stats.BestScore)
	assert.EqualValues(t, 1, stats.ByCategory[domain.FitPartial])

	top, err := repo.Top(ctx, "AZ-1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].ResumeID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkflowRepository_FinishIsOneShot(t *testing.T) {
	repo := NewWorkflowRepository(testutil.NewDB(t))
	ctx := context.Background()

	jd := &domain.JobDescription{ID: "AZ-1", Designation: "Go Developer"}
	w := domain.NewBatchWorkflow(uuid.NewString(), "WF-1", jd, "u1", []string{"r1"}, time.Now())
	require.NoError(t, repo.Create(ctx, w))

	w.Complete(time.Now(), 1, domain.WorkflowMetrics{TotalCandidates: 1}, domain.WorkflowResults{SavedCount: 1})
	require.NoError(t, repo.Finish(ctx, w))

	w.Fail(time.Now(), domain.FailureInternal, "late failure")
	err := repo.Finish(ctx, w)
	require.ErrorIs(t, err, domain.ErrWorkflowFinalized)

	stored, err := repo.Get(ctx, "WF-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, stored.Status)
	assert.Nil(t, stored.Error)
	assert.Equal(t, 3, stored.Progress.Data().Completed)
	assert.Equal(t, 1, stored.Results.Data().SavedCount)

	byRecord, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "WF-1", byRecord.WorkflowID)
}

func TestWorkflowRepository_ListAndLatest(t *testing.T) {
	repo := NewWorkflowRepository(testutil.NewDB(t))
	ctx := context.Background()
	jd := &domain.JobDescription{ID: "AZ-1"}
	base := time.Now()

	for i, id := range []string{"WF-1", "WF-2", "WF-3"} {
		w := domain.NewBatchWorkflow(uuid.NewString(), id, jd, "u1", []string{"r1"}, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Create(ctx, w))
	}

	latest, err := repo.Latest(ctx, "AZ-1")
	require.NoError(t, err)
	assert.Equal(t, "WF-3", latest.WorkflowID)

	_, err = repo.Latest(ctx, "AZ-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, total, err := repo.List(ctx, ports.WorkflowFilter{Page: ports.Page{Limit: 2}, Status: domain.WorkflowInProgress})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)

	require.NoError(t, repo.Delete(ctx, "WF-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "WF-1"), domain.ErrNotFound)
}

func TestJobDescriptionRepository_DuplicateAndCounts(t *testing.T) {
	repo := NewJobDescriptionRepository(testutil.NewDB(t))
	ctx := context.Background()

	seedJD(t, repo, "AZ-1")
	err := repo.Create(ctx, &domain.JobDescription{ID: "AZ-1", Designation: "Dup", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	updated, err := repo.Update(ctx, "AZ-1", map[string]any{"status": domain.JDClosed})
	require.NoError(t, err)
	assert.Equal(t, domain.JDClosed, updated.Status)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.JDClosed])
	assert.EqualValues(t, 0, counts[domain.JDActive])

	found, err := repo.Search(ctx, "API", ports.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestResumeRepository_RecentIDsAndSearch(t *testing.T) {
	repo := NewResumeRepository(testutil.NewDB(t))
	ctx := context.Background()
	base := time.Now()

	for i, name := range []string{"old.pdf", "mid.pdf", "new.pdf"} {
		require.NoError(t, repo.Create(ctx, &domain.Resume{
			ID:         name,
			Filename:   name,
			Text:       "Senior Kubernetes engineer",
			Source:     domain.SourceDirect,
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	ids, err := repo.RecentIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.pdf", "mid.pdf"}, ids)

	found, err := repo.Search(ctx, "kubernetes", ports.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, found, 3)

	many, err := repo.GetMany(ctx, []string{"old.pdf", "ghost"})
	require.NoError(t, err)
	assert.Len(t, many, 1)
}

func TestFileRepository_SaveAndStats(t *testing.T) {
	repo := NewFileRepository(testutil.NewDB(t))
	ctx := context.Background()

	resumeID := "r1"
	blob := &domain.FileBlob{ID: "b1", Filename: "cv.txt", ContentType: "text/plain", Data: []byte("hello"), Size: 5, UploadedBy: "u1"}
	meta := &domain.FileMetadata{ID: "m1", ResumeID: &resumeID, OriginalName: "cv.txt", StoragePath: domain.BlobPath("b1"),
		FileSize: 5, MimeType: "text/plain", UploadedBy: "u1", StorageType: domain.StorageTypeBlob}
	require.NoError(t, repo.Save(ctx, blob, meta))

	got, err := repo.GetBlob(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.Data)

	userStats, err := repo.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, userStats.Files)
	assert.EqualValues(t, 5, userStats.TotalBytes)
	assert.EqualValues(t, 1, userStats.Resumes)

	storage, err := repo.StorageStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, storage.ByMimeType["text/plain"])

	require.NoError(t, repo.DeleteBlob(ctx, "b1"))
	_, err = repo.MetadataByBlob(ctx, "b1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository(testutil.NewDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "HR@Example.com", PasswordHash: "x", Role: domain.RoleRecruiter, IsActive: true}))
	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "hr@example.com", PasswordHash: "x", IsActive: true})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	u, err := repo.GetByEmail(ctx, "hr@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	now := time.Now()
	require.NoError(t, repo.UpdateSecurity(ctx, "u1", domain.SecuritySettings{LastLogin: &now, FailedLoginAttempts: 2}))
	u, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Security.Data().FailedLoginAttempts)
}
