package service

import (
	"context"
	"hr-comparator/internal/agent"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResumeService_CreateRespectsStoredCap(t *testing.T) {
	f := newFixture(t)
	svc := NewResumeService(f.resumes, f.results, f.files, f.audit, 2, zap.NewNop())

	for _, name := range []string{"a.txt", "b.txt"} {
		r, err := svc.Create(context.Background(), testActor, dto.CreateResumeRequest{Filename: name, Text: "Go engineer"})
		require.NoError(t, err)
		assert.Equal(t, domain.SourceDirect, r.Source)
		require.NotNil(t, r.UploadedBy)
	}

	_, err := svc.Create(context.Background(), testActor, dto.CreateResumeRequest{Filename: "c.txt", Text: "Go engineer"})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = NewResumeService(f.resumes, f.results, f.files, f.audit, 0, zap.NewNop()).
		Create(context.Background(), testActor, dto.CreateResumeRequest{Filename: "c.txt", Text: "Go engineer", Source: "Monster"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResumeService_SearchUpdateDelete(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	_, err := f.workflowService(agent.NewMock("")).SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)
	svc := NewResumeService(f.resumes, f.results, f.files, f.audit, 0, zap.NewNop())

	_, err = svc.Search(context.Background(), "go", ports.Page{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	found, err := svc.Search(context.Background(), "KUBERNETES", ports.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ids[0], found[0].ID)

	_, err = svc.Update(context.Background(), ids[1], dto.UpdateResumeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	name := "robert.pdf"
	updated, err := svc.Update(context.Background(), ids[1], dto.UpdateResumeRequest{Filename: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Filename)

	require.NoError(t, svc.Delete(context.Background(), testActor, ids[0]))
	assert.Equal(t, 2, f.resultCount(t, jd.ID))
	_, err = svc.Get(context.Background(), testActor, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)

	logs, _, err := f.audits.List(context.Background(), ports.AuditFilter{Action: domain.AuditDeleteResume})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestJDService_CreateListUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewJobDescriptionService(f.jds, f.audit, zap.NewNop())

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	jd, err := svc.Create(context.Background(), testActor, dto.CreateJDRequest{ID: "AZ-1", Designation: "Backend Engineer", Description: string(long)})
	require.NoError(t, err)
	assert.Equal(t, domain.JDActive, jd.Status)

	_, err = svc.Create(context.Background(), testActor, dto.CreateJDRequest{ID: "AZ-1", Designation: "Dup", Description: "dup"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Contains(t, err.Error(), `"AZ-1" already exists`)

	items, err := svc.List(context.Background(), ports.JDFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, []rune(items[0].DescriptionPreview), descriptionPreviewLen)

	closed := domain.JDClosed
	updated, err := svc.Update(context.Background(), testActor, "AZ-1", dto.UpdateJDRequest{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, domain.JDClosed, updated.Status)

	counts, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.JDClosed])
	assert.EqualValues(t, 0, counts[domain.JDActive])

	require.NoError(t, svc.Delete(context.Background(), testActor, "AZ-1"))
	_, err = svc.Get(context.Background(), "AZ-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
