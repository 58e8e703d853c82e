package service

import (
	"context"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"math"
	"time"
)

const (
	dashboardRecent = 5
	dashboardTop    = 10
	week            = 7 * 24 * time.Hour
)

type AnalyticsService interface {
	Stats(ctx context.Context) (*dto.MatchingStats, error)
	JDStats(ctx context.Context, jdID string) (*dto.JDStats, error)
	Dashboard(ctx context.Context) (*dto.Dashboard, error)

	// Trends compares the last seven days with the seven before.
	Trends(ctx context.Context) (*dto.Trends, error)
}

type analyticsService struct {
	resumes ports.ResumeRepository
	jds     ports.JobDescriptionRepository
	results ports.ResultRepository
	now     func() time.Time
}

func NewAnalyticsService(resumes ports.ResumeRepository, jds ports.JobDescriptionRepository, results ports.ResultRepository) AnalyticsService {
	return &analyticsService{
		resumes: resumes,
		jds:     jds,
		results: results,
		now:     time.Now,
	}
}

func (s *analyticsService) Stats(ctx context.Context) (*dto.MatchingStats, error) {
	resumes, err := s.resumes.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.jds.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.results.Stats(ctx, "")
	if err != nil {
		return nil, err
	}

	var jds int64
	for _, n := range byStatus {
		jds += n
	}
	return &dto.MatchingStats{
		TotalResumes: resumes,
		TotalJDs:     jds,
		TotalMatches: results.Count,
		AverageScore: round2(results.AverageScore),
		ByCategory:   results.ByCategory,
		JDsByStatus:  byStatus,
	}, nil
}

func (s *analyticsService) JDStats(ctx context.Context, jdID string) (*dto.JDStats, error) {
	jd, err := s.jds.GetByID(ctx, jdID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.Stats(ctx, jd.ID)
	if err != nil {
		return nil, err
	}
	return &dto.JDStats{
		JDID:            jd.ID,
		Designation:     jd.Designation,
		TotalCandidates: results.Count,
		AverageScore:    round2(results.AverageScore),
		BestScore:       results.BestScore,
		ByCategory:      results.ByCategory,
	}, nil
}

func (s *analyticsService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	recent := ports.Page{Limit: dashboardRecent}
	resumes, err := s.resumes.List(ctx, ports.ResumeFilter{Page: recent})
	if err != nil {
		return nil, err
	}
	jds, err := s.jds.List(ctx, ports.JDFilter{Page: recent})
	if err != nil {
		return nil, err
	}
	top, err := s.results.Top(ctx, "", dashboardTop)
	if err != nil {
		return nil, err
	}

	d := &dto.Dashboard{
		Stats:         *stats,
		RecentResumes: make([]dto.RecentResume, 0, len(resumes)),
		RecentJDs:     make([]dto.RecentJD, 0, len(jds)),
		TopMatches:    top,
	}
	for _, r := range resumes {
		d.RecentResumes = append(d.RecentResumes, dto.RecentResume{ID: r.ID, Filename: r.Filename, Source: r.Source, UploadedAt: r.UploadedAt})
	}
	for _, jd := range jds {
		d.RecentJDs = append(d.RecentJDs, dto.RecentJD{ID: jd.ID, Designation: jd.Designation, Status: jd.Status, CreatedAt: jd.CreatedAt})
	}
	if d.TopMatches == nil {
		d.TopMatches = []domain.ResumeResult{}
	}
	return d, nil
}

func (s *analyticsService) Trends(ctx context.Context) (*dto.Trends, error) {
	now := s.now().UTC()
	weekAgo, twoWeeksAgo := now.Add(-week), now.Add(-2*week)

	thisWeekResumes, err := s.resumes.CountSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}
	sinceTwoWeeks, err := s.resumes.CountSince(ctx, twoWeeksAgo)
	if err != nil {
		return nil, err
	}

	thisWeekHigh, err := s.results.CountSince(ctx, domain.HighMatchScore, weekAgo)
	if err != nil {
		return nil, err
	}
	highSinceTwoWeeks, err := s.results.CountSince(ctx, domain.HighMatchScore, twoWeeksAgo)
	if err != nil {
		return nil, err
	}

	thisWeekJDs, err := s.jds.CountSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}

	candidates := weekOverWeek(thisWeekResumes, sinceTwoWeeks-thisWeekResumes)
	high := weekOverWeek(thisWeekHigh, highSinceTwoWeeks-thisWeekHigh)
	return &dto.Trends{
		Success:           true,
		CandidatesTrend:   formatTrend(candidates),
		CandidatesTrendUp: candidates >= 0,
		HighMatchTrend:    formatTrend(high),
		HighMatchTrendUp:  high >= 0,
		JDsTrend:          fmt.Sprintf("%d this week", thisWeekJDs),
		JDsTrendUp:        thisWeekJDs > 0,
		CalculatedAt:      now,
	}, nil
}

// weekOverWeek is the percentage change from last to this. Growth from zero
// counts as 100%.
func weekOverWeek(this, last int64) float64 {
	if last > 0 {
		return float64(this-last) / float64(last) * 100
	}
	if this > 0 {
		return 100
	}
	return 0
}

func formatTrend(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%d%%", int(pct))
	}
	return fmt.Sprintf("%d%%", int(pct))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
