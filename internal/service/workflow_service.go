package service

import (
	"context"
	"errors"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/config"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/metrics"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type WorkflowService interface {
	// SubmitBatch runs one batch match synchronously and returns once the
	// workflow record is terminal.
	SubmitBatch(ctx context.Context, actor domain.Actor, req dto.BatchMatchRequest) (*dto.WorkflowSummary, error)

	// Status reports the latest run, for one JD or overall when jdID is empty.
	Status(ctx context.Context, jdID string) (*dto.WorkflowStatusResponse, error)

	ListExecutions(ctx context.Context, f ports.WorkflowFilter) (*dto.WorkflowListResponse, error)
	GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error)
	DeleteExecution(ctx context.Context, id string) error
}

type WorkflowDeps struct {
	Workflows ports.WorkflowRepository
	JDs       ports.JobDescriptionRepository
	Resumes   ports.ResumeRepository
	Results   ports.ResultRepository
	Agent     ports.MatchingAgent
	Events    ports.EventBus
	Audit     AuditService
	Config    config.MatchingConfig
	Log       *zap.Logger
}

// The Implementation
type workflowService struct {
	workflows ports.WorkflowRepository
	jds       ports.JobDescriptionRepository
	resumes   ports.ResumeRepository
	results   ports.ResultRepository
	agent     ports.MatchingAgent
	events    ports.EventBus
	audit     AuditService
	cfg       config.MatchingConfig
	log       *zap.Logger

	ids *domain.WorkflowIDGenerator
	now func() time.Time
}

// Constructor
func NewWorkflowService(deps WorkflowDeps) WorkflowService {
	cfg := deps.Config
	if cfg.ResolveConcurrency < 1 {
		cfg.ResolveConcurrency = 1
	}
	return &workflowService{
		workflows: deps.Workflows,
		jds:       deps.JDs,
		resumes:   deps.Resumes,
		results:   deps.Results,
		agent:     deps.Agent,
		events:    deps.Events,
		audit:     deps.Audit,
		cfg:       cfg,
		log:       deps.Log.Named("workflow"),
		ids:       domain.NewWorkflowIDGenerator(time.Now),
		now:       time.Now,
	}
}

func (s *workflowService) SubmitBatch(ctx context.Context, actor domain.Actor, req dto.BatchMatchRequest) (*dto.WorkflowSummary, error) {
	// 1. Validate everything before a record exists
	jd, err := s.jds.GetByID(ctx, req.JDID)
	if err != nil {
		return nil, err
	}

	resumeIDs, err := s.selectResumeIDs(ctx, req.ResumeIDs)
	if err != nil {
		return nil, fmt.Errorf("select resumes: %w", err)
	}
	if len(resumeIDs) == 0 {
		return nil, domain.NewValidationError("no resumes available for matching")
	}
	if limit := s.cfg.MaxResumesPerWorkflow; len(resumeIDs) > limit {
		return nil, fmt.Errorf("%w: maximum %d resumes allowed per workflow, got %d",
			domain.ErrLimitExceeded, limit, len(resumeIDs))
	}

	// 2. Create the execution record
	wf := domain.NewBatchWorkflow(uuid.NewString(), s.ids.Next(), jd, actor.UserID, resumeIDs, s.now().UTC())
	if err := s.workflows.Create(ctx, wf); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	log := s.log.With(zap.String("workflow_id", wf.WorkflowID), zap.String("jd_id", jd.ID))
	log.Info("workflow started", zap.Int("total_resumes", wf.TotalResumes), zap.String("started_by", actor.UserID))
	s.publish(ctx, log, domain.EventWorkflowStarted, wf)

	// The record reaches a terminal state even when the caller disconnects.
	return s.run(context.WithoutCancel(ctx), log, actor, jd, wf)
}

func (s *workflowService) run(ctx context.Context, log *zap.Logger, actor domain.Actor, jd *domain.JobDescription, wf *domain.WorkflowExecution) (*dto.WorkflowSummary, error) {
	defer func() {
		if r := recover(); r != nil {
			_ = s.fail(ctx, log, wf, domain.FailureInternal, fmt.Errorf("internal error: %v", r))
			panic(r)
		}
	}()

	// 3. Resolve resume texts
	inputs, err := s.resolveTexts(ctx, log, wf.ResumeIDs)
	if err != nil {
		return nil, s.fail(ctx, log, wf, domain.FailureInternal, err)
	}
	if len(inputs) == 0 {
		return nil, s.fail(ctx, log, wf, domain.FailureNoResumes, errors.New("none of the selected resumes has readable text"))
	}

	// 4. Call the matching agent
	resp, err := s.agent.CompareBatch(ctx, domain.CompareBatchRequest{
		WorkflowID: wf.WorkflowID,
		JDText:     jd.Text(),
		Resumes:    inputs,
	})
	if err != nil {
		kind := domain.FailureInternal
		var agentErr *domain.AgentError
		if errors.As(err, &agentErr) {
			kind = string(agentErr.Kind)
		}
		return nil, s.fail(ctx, log, wf, kind, err)
	}

	// 5. Persist results
	saved, top := s.saveResults(ctx, log, wf, inputs, resp.Results)

	// 6. Terminal update
	m := domain.WorkflowMetrics{
		TotalCandidates:  len(resp.Results),
		ProcessingTimeMs: resp.ProcessingTimeMs,
		MatchRate:        matchRate(top, saved.SavedCount),
		TopMatches:       top,
	}
	done := wf.Clone()
	done.Complete(s.now().UTC(), saved.SavedCount, m, saved)
	if err := s.workflows.Finish(ctx, done); err != nil {
		if errors.Is(err, domain.ErrWorkflowFinalized) {
			return nil, fmt.Errorf("finish workflow %s: %w", wf.WorkflowID, err)
		}
		// The completion was not stored; the record must not stay in progress.
		log.Error("failed to record workflow completion", zap.Error(err))
		return nil, s.fail(ctx, log, wf, domain.FailureInternal, fmt.Errorf("record completion: %w", err))
	}
	wf = done
	metrics.WorkflowsTotal.WithLabelValues(string(domain.WorkflowCompleted)).Inc()
	s.publish(ctx, log, domain.EventWorkflowCompleted, wf)

	log.Info("workflow completed",
		zap.Int("processed_resumes", wf.ProcessedResumes),
		zap.Int("failed_saves", len(saved.FailedResumeIDs)),
		zap.Int64("processing_time_ms", resp.ProcessingTimeMs),
	)

	// 7. Audit
	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditCompleteWorkflow,
		ResourceType: domain.ResourceWorkflowExecution,
		ResourceID:   wf.WorkflowID,
		Details: map[string]any{
			"jd_id":             jd.ID,
			"jd_title":          jd.Designation,
			"total_resumes":     wf.TotalResumes,
			"processed_resumes": wf.ProcessedResumes,
			"top_matches":       top,
		},
	})

	summary := dto.NewWorkflowSummary(wf)
	return &summary, nil
}

// selectResumeIDs returns the requested ids with blanks and duplicates
// dropped, or the newest stored resumes when none were requested.
func (s *workflowService) selectResumeIDs(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return s.resumes.RecentIDs(ctx, s.cfg.ResumeFetchCap)
	}

	seen := make(map[string]struct{}, len(requested))
	ids := make([]string, 0, len(requested))
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolveTexts loads the resumes concurrently. Missing resumes and resumes
// without text are skipped; any other store error aborts.
func (s *workflowService) resolveTexts(ctx context.Context, log *zap.Logger, ids []string) ([]domain.ResumeInput, error) {
	resolved := make([]*domain.ResumeInput, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ResolveConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			r, err := s.resumes.GetByID(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				log.Warn("resume not found, skipping", zap.String("resume_id", id))
				return nil
			}
			if err != nil {
				return fmt.Errorf("load resume %s: %w", id, err)
			}
			if strings.TrimSpace(r.Text) == "" {
				log.Warn("resume has no text, skipping", zap.String("resume_id", id))
				return nil
			}
			resolved[i] = &domain.ResumeInput{ResumeID: r.ID, ResumeText: r.Text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inputs := make([]domain.ResumeInput, 0, len(ids))
	for _, in := range resolved {
		if in != nil {
			inputs = append(inputs, *in)
		}
	}
	return inputs, nil
}

// saveResults upserts one result per sent resume. Results for resumes that
// were not sent, or repeated ones, are skipped. A failed save is counted and
// never fails the run.
func (s *workflowService) saveResults(ctx context.Context, log *zap.Logger, wf *domain.WorkflowExecution, sent []domain.ResumeInput, matches []domain.MatchResult) (domain.WorkflowResults, int) {
	pending := make(map[string]bool, len(sent))
	for _, in := range sent {
		pending[in.ResumeID] = true
	}

	out := domain.WorkflowResults{FailedResumeIDs: []string{}, SkippedResumeIDs: []string{}}
	top := 0
	workflowID := wf.WorkflowID
	for _, m := range matches {
		if !pending[m.ResumeID] {
			log.Warn("ignoring result for resume outside the batch", zap.String("resume_id", m.ResumeID))
			out.SkippedResumeIDs = append(out.SkippedResumeIDs, m.ResumeID)
			continue
		}
		pending[m.ResumeID] = false

		res := domain.NewResumeResult(uuid.NewString(), wf.JDID, m, &workflowID, s.now().UTC())
		if _, err := s.results.Upsert(ctx, res); err != nil {
			log.Error("failed to save result", zap.String("resume_id", m.ResumeID), zap.Error(err))
			metrics.ResultSaveFailures.Inc()
			out.FailedResumeIDs = append(out.FailedResumeIDs, m.ResumeID)
			continue
		}

		out.SavedCount++
		if m.MatchScore >= domain.HighMatchScore {
			top++
		}
	}
	return out, top
}

// fail records the terminal failure and returns the error for the caller.
func (s *workflowService) fail(ctx context.Context, log *zap.Logger, wf *domain.WorkflowExecution, kind string, cause error) error {
	wf.Fail(s.now().UTC(), kind, cause.Error())
	storeErr := s.workflows.Finish(ctx, wf)
	if storeErr != nil {
		log.Error("failed to record workflow failure", zap.Error(storeErr))
	}
	metrics.WorkflowsTotal.WithLabelValues(string(domain.WorkflowFailed)).Inc()
	s.publish(ctx, log, domain.EventWorkflowFailed, wf)

	log.Error("workflow failed", zap.String("kind", kind), zap.Error(cause))
	if storeErr != nil {
		return fmt.Errorf("%w: %w (failure not recorded: %w)", domain.ErrWorkflowFailed, cause, storeErr)
	}
	return fmt.Errorf("%w: %w", domain.ErrWorkflowFailed, cause)
}

func (s *workflowService) publish(ctx context.Context, log *zap.Logger, t domain.WorkflowEventType, wf *domain.WorkflowExecution) {
	if err := s.events.PublishWorkflowEvent(ctx, domain.NewWorkflowEvent(t, wf, s.now().UTC())); err != nil {
		log.Warn("failed to publish workflow event", zap.String("event", string(t)), zap.Error(err))
	}
}

// matchRate is the share of saved results that are top matches, in percent
// with one decimal.
func matchRate(top, saved int) float64 {
	if saved == 0 {
		return 0
	}
	return math.Round(float64(top)/float64(saved)*1000) / 10
}

func (s *workflowService) Status(ctx context.Context, jdID string) (*dto.WorkflowStatusResponse, error) {
	wf, err := s.workflows.Latest(ctx, jdID)
	if errors.Is(err, domain.ErrNotFound) {
		agents := domain.IdleAgentPipeline()
		return &dto.WorkflowStatusResponse{
			Success:  true,
			Agents:   agents,
			Progress: domain.WorkflowProgress{Total: len(agents)},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &dto.WorkflowStatusResponse{
		Success:    true,
		Monitoring: true,
		WorkflowID: wf.WorkflowID,
		JDID:       wf.JDID,
		Status:     wf.Status,
		Agents:     wf.Agents,
		Progress:   wf.Progress.Data(),
		Metrics:    wf.Metrics.Data(),
		Error:      wf.Error,
		Workflow:   wf,
	}, nil
}

func (s *workflowService) ListExecutions(ctx context.Context, f ports.WorkflowFilter) (*dto.WorkflowListResponse, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("unknown workflow status %q", f.Status)
	}
	items, total, err := s.workflows.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WorkflowExecution{}
	}
	return &dto.WorkflowListResponse{Total: total, Executions: items}, nil
}

func (s *workflowService) GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	return s.workflows.Get(ctx, id)
}

func (s *workflowService) DeleteExecution(ctx context.Context, id string) error {
	return s.workflows.Delete(ctx, id)
}
