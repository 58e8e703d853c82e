package service

import (
	"context"
	"errors"
	"hr-comparator/internal/agent"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedBatch(t *testing.T, f *fixture) (*domain.JobDescription, []string) {
	t.Helper()
	jd := f.seedJD(t, "AZ-1", "Backend Engineer", "Go, Postgres, Kubernetes and gRPC")
	ids := []string{
		f.seedResume(t, "alice.pdf", "Senior Go engineer, Postgres and Kubernetes in production"),
		f.seedResume(t, "bob.pdf", "Java developer with Spring"),
		f.seedResume(t, "carol.txt", "Go and gRPC microservices"),
	}
	return jd, ids
}

func TestSubmitBatch_CompletesWithMockAgent(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	svc := f.workflowService(agent.NewMock(""))

	summary, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)

	assert.Equal(t, domain.WorkflowCompleted, summary.Status)
	assert.Equal(t, jd.ID, summary.JDID)
	assert.Equal(t, 3, summary.TotalResumes)
	assert.Equal(t, 3, summary.ProcessedResumes)
	assert.Regexp(t, `^WF-\d+$`, summary.WorkflowID)
	assert.Equal(t, 3, f.resultCount(t, jd.ID))

	wf, err := svc.GetExecution(context.Background(), summary.WorkflowID)
	require.NoError(t, err)
	assert.LessOrEqual(t, wf.ProcessedResumes, wf.TotalResumes)
	assert.Equal(t, domain.WorkflowProgress{Completed: 3, Total: 3, Percentage: 100}, wf.Progress.Data())
	for _, a := range wf.Agents {
		assert.Equal(t, domain.AgentCompleted, a.Status, a.AgentID)
	}
	assert.Equal(t, 3, wf.Metrics.Data().TotalCandidates)
	assert.Equal(t, 3, wf.Results.Data().SavedCount)
	assert.NotNil(t, wf.CompletedAt)
	assert.Equal(t, testActor.UserID, wf.StartedBy)

	logs, total, err := f.audits.List(context.Background(), ports.AuditFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, domain.AuditCompleteWorkflow, logs[0].Action)
	assert.Equal(t, testActor.IP, logs[0].IPAddress)

	assert.Equal(t, []domain.WorkflowEventType{domain.EventWorkflowStarted, domain.EventWorkflowCompleted}, f.events.types())
}

func TestSubmitBatch_OverLimitCreatesNothing(t *testing.T) {
	f := newFixture(t)
	jd := f.seedJD(t, "AZ-1", "Backend Engineer", "Go")
	ids := make([]string, 11)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	a := &stubAgent{fn: scoreAll(90)}

	_, err := f.workflowService(a).SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	assert.Contains(t, err.Error(), "maximum 10 resumes")
	assert.Zero(t, f.workflowCount(t))
	assert.Zero(t, a.calls.Load())
}

func TestSubmitBatch_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.workflowService(&stubAgent{fn: scoreAll(90)})

	_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.seedJD(t, "AZ-1", "Backend Engineer", "Go")
	_, err = svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: "AZ-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "no resumes available")

	assert.Zero(t, f.workflowCount(t))
}

func TestSubmitBatch_UsesStoredResumesWhenNoneRequested(t *testing.T) {
	f := newFixture(t)
	jd, _ := seedBatch(t, f)

	summary, err := f.workflowService(agent.NewMock("")).SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalResumes)
	assert.Equal(t, 3, summary.ProcessedResumes)
}

func TestSubmitBatch_DeduplicatesRequestedIDs(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)

	summary, err := f.workflowService(agent.NewMock("")).SubmitBatch(context.Background(), testActor,
		dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: []string{ids[0], ids[0], " ", ids[1]}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalResumes)

	wf, err := f.workflows.Get(context.Background(), summary.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1]}, []string(wf.ResumeIDs))
}

func TestSubmitBatch_UnreachableAgentFailsWorkflow(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	svc := f.workflowService(agent.NewClient(url, time.Second, zap.NewNop()))

	_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkflowFailed)
	assert.ErrorIs(t, err, domain.ErrAgentUnavailable)

	wf, err := f.workflows.Latest(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFailed, wf.Status)
	require.NotNil(t, wf.Error)
	assert.Contains(t, *wf.Error, "connection failed")
	assert.Equal(t, domain.FailureConnection, wf.ErrorDetails.Data().Kind)
	assert.Zero(t, f.resultCount(t, jd.ID))

	_, total, err := f.audits.List(context.Background(), ports.AuditFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, []domain.WorkflowEventType{domain.EventWorkflowStarted, domain.EventWorkflowFailed}, f.events.types())
}

func TestSubmitBatch_AgentTimeoutFailsComparator(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	svc := f.workflowService(agent.NewClient(srv.URL, 50*time.Millisecond, zap.NewNop()))

	_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAgentTimeout)

	wf, err := f.workflows.Latest(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFailed, wf.Status)
	require.NotNil(t, wf.Error)
	assert.NotEmpty(t, *wf.Error)

	comparator, ok := wf.Stage(domain.StageHRComparator)
	require.True(t, ok)
	assert.Equal(t, domain.AgentFailed, comparator.Status)
	require.NotNil(t, comparator.Error)
	assert.Contains(t, *comparator.Error, "timeout")
	assert.Zero(t, f.resultCount(t, jd.ID))
}

func TestSubmitBatch_ReprocessingKeepsOneResultPerPair(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	svc := f.workflowService(agent.NewMock(""))

	first, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)
	before, err := f.results.GetByPair(context.Background(), ids[0], jd.ID)
	require.NoError(t, err)

	for range 2 {
		_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids, ForceReprocess: true})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, f.resultCount(t, jd.ID))
	after, err := f.results.GetByPair(context.Background(), ids[0], jd.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	require.NotNil(t, after.WorkflowID)
	assert.NotEqual(t, first.WorkflowID, *after.WorkflowID)
	assert.EqualValues(t, 3, f.workflowCount(t))
}

func TestSubmitBatch_SkipsMissingResumes(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	a := &stubAgent{fn: scoreAll(85)}

	summary, err := f.workflowService(a).SubmitBatch(context.Background(), testActor,
		dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: []string{ids[0], "missing"}})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, summary.Status)
	assert.Equal(t, 2, summary.TotalResumes)
	assert.Equal(t, 1, summary.ProcessedResumes)

	wf, err := f.workflows.Get(context.Background(), summary.WorkflowID)
	require.NoError(t, err)
	m := wf.Metrics.Data()
	assert.Equal(t, 1, m.TopMatches)
	assert.Equal(t, 100.0, m.MatchRate)
	assert.EqualValues(t, 42, m.ProcessingTimeMs)
}

func TestSubmitBatch_NothingResolvableFails(t *testing.T) {
	f := newFixture(t)
	jd := f.seedJD(t, "AZ-1", "Backend Engineer", "Go")
	a := &stubAgent{fn: scoreAll(85)}

	_, err := f.workflowService(a).SubmitBatch(context.Background(), testActor,
		dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: []string{"missing"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkflowFailed)
	assert.Zero(t, a.calls.Load())

	wf, err := f.workflows.Latest(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFailed, wf.Status)
	assert.Equal(t, domain.FailureNoResumes, wf.ErrorDetails.Data().Kind)
}

func TestSubmitBatch_IgnoresResultsOutsideBatch(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	a := &stubAgent{fn: func(_ context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
		return &domain.CompareBatchResponse{Results: []domain.MatchResult{
			{ResumeID: ids[0], MatchScore: 90},
			{ResumeID: ids[0], MatchScore: 10},
			{ResumeID: "stranger", MatchScore: 70},
		}}, nil
	}}

	summary, err := f.workflowService(a).SubmitBatch(context.Background(), testActor,
		dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids[:1]})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedResumes)

	wf, err := f.workflows.Get(context.Background(), summary.WorkflowID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ids[0], "stranger"}, wf.Results.Data().SkippedResumeIDs)
	assert.Equal(t, 3, wf.Metrics.Data().TotalCandidates)

	stored, err := f.results.GetByPair(context.Background(), ids[0], jd.ID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, stored.MatchScore)
	assert.Equal(t, domain.FitBest, stored.FitCategory)
}

func TestSubmitBatch_FinishesAfterCallerCancels(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := &stubAgent{fn: func(actx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
		cancel()
		if err := actx.Err(); err != nil {
			return nil, err
		}
		return scoreAll(60)(actx, req)
	}}

	summary, err := f.workflowService(a).SubmitBatch(ctx, testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, summary.Status)
	assert.Equal(t, 3, f.resultCount(t, jd.ID))
}

func TestWorkflowStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.workflowService(agent.NewMock(""))

	idle, err := svc.Status(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, idle.Monitoring)
	require.Len(t, idle.Agents, 3)
	assert.Equal(t, domain.AgentIdle, idle.Agents[0].Status)

	jd, ids := seedBatch(t, f)
	summary, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)

	st, err := svc.Status(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.True(t, st.Monitoring)
	assert.Equal(t, summary.WorkflowID, st.WorkflowID)
	assert.Equal(t, 100, st.Progress.Percentage)

	list, err := svc.ListExecutions(context.Background(), ports.WorkflowFilter{Status: domain.WorkflowCompleted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	_, err = svc.ListExecutions(context.Background(), ports.WorkflowFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.DeleteExecution(context.Background(), summary.WorkflowID))
	_, err = svc.GetExecution(context.Background(), summary.WorkflowID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatchRate(t *testing.T) {
	assert.Equal(t, 0.0, matchRate(0, 0))
	assert.Equal(t, 33.3, matchRate(1, 3))
	assert.Equal(t, 66.7, matchRate(2, 3))
	assert.Equal(t, 100.0, matchRate(4, 4))
}

var errStore = errors.New("transient store error")

// rejectingFinish fails Finish for runs reaching the given status.
type rejectingFinish struct {
	ports.WorkflowRepository
	reject domain.WorkflowStatus
	calls  int
}

func (r *rejectingFinish) Finish(ctx context.Context, w *domain.WorkflowExecution) error {
	r.calls++
	if w.Status == r.reject {
		return errStore
	}
	return r.WorkflowRepository.Finish(ctx, w)
}

// failingUpsert fails to save the result of one resume.
type failingUpsert struct {
	ports.ResultRepository
	resumeID string
}

func (r *failingUpsert) Upsert(ctx context.Context, res *domain.ResumeResult) (*domain.ResumeResult, error) {
	if res.ResumeID == r.resumeID {
		return nil, errStore
	}
	return r.ResultRepository.Upsert(ctx, res)
}

func TestSubmitBatch_CompletionWriteFailureFailsWorkflow(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	store := &rejectingFinish{WorkflowRepository: f.workflows, reject: domain.WorkflowCompleted}
	f.workflows = store
	svc := f.workflowService(agent.NewMock(""))

	_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkflowFailed)
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 2, store.calls)

	wf, err := f.workflows.Latest(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFailed, wf.Status)
	assert.Equal(t, domain.FailureInternal, wf.ErrorDetails.Data().Kind)
	require.NotNil(t, wf.Error)
	assert.Contains(t, *wf.Error, "record completion")
	assert.Zero(t, wf.ProcessedResumes)

	comparator, ok := wf.Stage(domain.StageHRComparator)
	require.True(t, ok)
	assert.Equal(t, domain.AgentFailed, comparator.Status)

	_, total, err := f.audits.List(context.Background(), ports.AuditFilter{Action: domain.AuditCompleteWorkflow})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, []domain.WorkflowEventType{domain.EventWorkflowStarted, domain.EventWorkflowFailed}, f.events.types())
}

func TestSubmitBatch_UnrecordedFailureIsReported(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	f.workflows = &rejectingFinish{WorkflowRepository: f.workflows, reject: domain.WorkflowFailed}
	svc := f.workflowService(&stubAgent{fn: func(context.Context, domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
		return nil, &domain.AgentError{Kind: domain.AgentErrProtocol, Cause: errors.New("status 502")}
	}})

	_, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkflowFailed)
	assert.ErrorIs(t, err, domain.ErrAgentProtocol)
	assert.ErrorIs(t, err, errStore)
	assert.Contains(t, err.Error(), "failure not recorded")
}

func TestSubmitBatch_PartialSaveFailureStillCompletes(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	f.results = &failingUpsert{ResultRepository: f.results, resumeID: ids[1]}
	svc := f.workflowService(agent.NewMock(""))

	summary, err := svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, summary.Status)
	assert.Equal(t, 3, summary.TotalResumes)
	assert.Equal(t, 2, summary.ProcessedResumes)

	wf, err := svc.GetExecution(context.Background(), summary.WorkflowID)
	require.NoError(t, err)
	res := wf.Results.Data()
	assert.Equal(t, 2, res.SavedCount)
	assert.Equal(t, []string{ids[1]}, res.FailedResumeIDs)
	assert.Equal(t, 3, wf.Metrics.Data().TotalCandidates)

	for _, id := range []string{ids[0], ids[2]} {
		_, err := f.results.GetByPair(context.Background(), id, jd.ID)
		assert.NoError(t, err, id)
	}
	_, err = f.results.GetByPair(context.Background(), ids[1], jd.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitBatch_PanicFailsWorkflow(t *testing.T) {
	f := newFixture(t)
	jd, ids := seedBatch(t, f)
	svc := f.workflowService(&stubAgent{fn: func(context.Context, domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
		panic("agent exploded")
	}})

	assert.PanicsWithValue(t, "agent exploded", func() {
		_, _ = svc.SubmitBatch(context.Background(), testActor, dto.BatchMatchRequest{JDID: jd.ID, ResumeIDs: ids})
	})

	wf, err := f.workflows.Latest(context.Background(), jd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFailed, wf.Status)
	assert.Equal(t, domain.FailureInternal, wf.ErrorDetails.Data().Kind)
	require.NotNil(t, wf.Error)
	assert.Contains(t, *wf.Error, "agent exploded")
	assert.Zero(t, f.resultCount(t, jd.ID))
}
