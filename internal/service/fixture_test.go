package service

import (
	"context"
	"hr-comparator/internal/config"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/core/postgres/repository"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/testutil"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testActor = domain.Actor{UserID: "user-1", IP: "10.0.0.7", UserAgent: "service-test"}

type fixture struct {
	db        *gorm.DB
	resumes   ports.ResumeRepository
	jds       ports.JobDescriptionRepository
	results   ports.ResultRepository
	workflows ports.WorkflowRepository
	audits    ports.AuditRepository
	users     ports.UserRepository
	files     ports.FileRepository
	audit     AuditService
	events    *recordingBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	audits := repository.NewAuditRepository(db)
	return &fixture{
		db:        db,
		resumes:   repository.NewResumeRepository(db),
		jds:       repository.NewJobDescriptionRepository(db),
		results:   repository.NewResultRepository(db),
		workflows: repository.NewWorkflowRepository(db),
		audits:    audits,
		users:     repository.NewUserRepository(db),
		files:     repository.NewFileRepository(db),
		audit:     NewAuditService(audits, zap.NewNop()),
		events:    &recordingBus{},
	}
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		MaxResumesPerWorkflow: 10,
		ResumeFetchCap:        1000,
		ResolveConcurrency:    4,
	}
}

func (f *fixture) workflowService(agent ports.MatchingAgent) WorkflowService {
	return NewWorkflowService(WorkflowDeps{
		Workflows: f.workflows,
		JDs:       f.jds,
		Resumes:   f.resumes,
		Results:   f.results,
		Agent:     agent,
		Events:    f.events,
		Audit:     f.audit,
		Config:    testMatchingConfig(),
		Log:       zap.NewNop(),
	})
}

func (f *fixture) seedJD(t *testing.T, id, designation, description string) *domain.JobDescription {
	t.Helper()
	now := time.Now().UTC()
	jd := &domain.JobDescription{
		ID:          id,
		Designation: designation,
		Description: description,
		Status:      domain.JDActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.jds.Create(context.Background(), jd))
	return jd
}

func (f *fixture) seedResume(t *testing.T, filename, text string) string {
	t.Helper()
	now := time.Now().UTC()
	r := &domain.Resume{
		ID:         uuid.NewString(),
		Filename:   filename,
		Text:       text,
		Source:     domain.SourceDirect,
		UploadedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.resumes.Create(context.Background(), r))
	return r.ID
}

func (f *fixture) resultCount(t *testing.T, jdID string) int {
	t.Helper()
	items, err := f.results.ListByJD(context.Background(), jdID, ports.ResultFilter{})
	require.NoError(t, err)
	return len(items)
}

func (f *fixture) workflowCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.workflows.List(context.Background(), ports.WorkflowFilter{})
	require.NoError(t, err)
	return total
}

// stubAgent answers with fn and counts calls.
type stubAgent struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error)
}

func (a *stubAgent) CompareBatch(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
	a.calls.Add(1)
	return a.fn(ctx, req)
}

func scoreAll(score float64) func(context.Context, domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
	return func(_ context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
		resp := &domain.CompareBatchResponse{ProcessingTimeMs: 42}
		for _, r := range req.Resumes {
			resp.Results = append(resp.Results, domain.MatchResult{
				ResumeID:    r.ResumeID,
				MatchScore:  score,
				FitCategory: domain.FitForScore(score),
			})
		}
		return resp, nil
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []domain.WorkflowEvent
}

func (b *recordingBus) PublishWorkflowEvent(_ context.Context, e domain.WorkflowEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) SubscribeToEvents(ctx context.Context) (<-chan domain.WorkflowEvent, error) {
	ch := make(chan domain.WorkflowEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (b *recordingBus) types() []domain.WorkflowEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.WorkflowEventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}
