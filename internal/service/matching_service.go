package service

import (
	"context"
	"errors"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxResultPage = 100
	maxTopMatches = 50
)

type MatchingService interface {
	// Match scores one resume against one JD. A stored result is returned as
	// is unless force is set.
	Match(ctx context.Context, actor domain.Actor, req dto.MatchRequest) (*dto.MatchResponse, error)

	ListResults(ctx context.Context, jdID string, f ports.ResultFilter) ([]dto.ResultListItem, error)
	TopMatches(ctx context.Context, jdID string, limit int) (*dto.TopMatchesResponse, error)
	GetResult(ctx context.Context, id string) (*domain.ResumeResult, error)
	DeleteResult(ctx context.Context, id string) error
}

type matchingService struct {
	resumes ports.ResumeRepository
	jds     ports.JobDescriptionRepository
	results ports.ResultRepository
	agent   ports.MatchingAgent
	audit   AuditService
	log     *zap.Logger
	now     func() time.Time
}

func NewMatchingService(
	resumes ports.ResumeRepository,
	jds ports.JobDescriptionRepository,
	results ports.ResultRepository,
	agent ports.MatchingAgent,
	audit AuditService,
	log *zap.Logger,
) MatchingService {
	return &matchingService{
		resumes: resumes,
		jds:     jds,
		results: results,
		agent:   agent,
		audit:   audit,
		log:     log.Named("matching"),
		now:     time.Now,
	}
}

func (s *matchingService) Match(ctx context.Context, actor domain.Actor, req dto.MatchRequest) (*dto.MatchResponse, error) {
	resume, err := s.resumes.GetByID(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}
	jd, err := s.jds.GetByID(ctx, req.JDID)
	if err != nil {
		return nil, err
	}

	if !req.ForceReprocess {
		existing, err := s.results.GetByPair(ctx, resume.ID, jd.ID)
		if err == nil {
			return &dto.MatchResponse{Cached: true, Result: existing}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	resp, err := s.agent.CompareBatch(ctx, domain.CompareBatchRequest{
		WorkflowID: "MATCH-" + uuid.NewString(),
		JDText:     jd.Text(),
		Resumes:    []domain.ResumeInput{{ResumeID: resume.ID, ResumeText: resume.Text}},
	})
	if err != nil {
		s.log.Error("matching agent call failed", zap.String("resume_id", resume.ID), zap.String("jd_id", jd.ID), zap.Error(err))
		return nil, err
	}

	var match *domain.MatchResult
	for i := range resp.Results {
		if resp.Results[i].ResumeID == resume.ID {
			match = &resp.Results[i]
			break
		}
	}
	if match == nil {
		return nil, &domain.AgentError{
			Kind:  domain.AgentErrProtocol,
			Cause: fmt.Errorf("no result returned for resume %s", resume.ID),
		}
	}

	stored, err := s.results.Upsert(ctx, domain.NewResumeResult(uuid.NewString(), jd.ID, *match, nil, s.now().UTC()))
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditRunMatching,
		ResourceType: domain.ResourceResumeResult,
		ResourceID:   stored.ID,
		Details: map[string]any{
			"resume_id":      resume.ID,
			"jd_id":          jd.ID,
			"match_score":    stored.MatchScore,
			"candidate_name": stored.ResumeExtracted.Data().CandidateName,
		},
	})
	return &dto.MatchResponse{Result: stored}, nil
}

func (s *matchingService) ListResults(ctx context.Context, jdID string, f ports.ResultFilter) ([]dto.ResultListItem, error) {
	if f.Limit <= 0 || f.Limit > maxResultPage {
		f.Limit = maxResultPage
	}
	results, err := s.results.ListByJD(ctx, jdID, f)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResultListItem, 0, len(results))
	for _, r := range results {
		items = append(items, dto.NewResultListItem(r))
	}
	return items, nil
}

func (s *matchingService) TopMatches(ctx context.Context, jdID string, limit int) (*dto.TopMatchesResponse, error) {
	if _, err := s.jds.GetByID(ctx, jdID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, maxTopMatches)
	matches, err := s.results.Top(ctx, jdID, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []domain.ResumeResult{}
	}
	return &dto.TopMatchesResponse{JDID: jdID, Total: len(matches), Matches: matches}, nil
}

func (s *matchingService) GetResult(ctx context.Context, id string) (*domain.ResumeResult, error) {
	return s.results.GetByID(ctx, id)
}

func (s *matchingService) DeleteResult(ctx context.Context, id string) error {
	return s.results.Delete(ctx, id)
}
