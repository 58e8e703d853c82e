package agent

import (
	"context"
	"fmt"
	"hr-comparator/internal/domain"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Mock scores resumes locally by keyword overlap with the job description.
// Identical inputs always produce identical scores.
type Mock struct {
	version string
}

func NewMock(version string) *Mock {
	if version == "" {
		version = "v1.0.0"
	}
	return &Mock{version: "mock-" + version}
}

func (m *Mock) CompareBatch(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
	start := time.Now()
	jdTerms := terms(req.JDText)

	results := make([]domain.MatchResult, 0, len(req.Resumes))
	for _, r := range req.Resumes {
		if err := ctx.Err(); err != nil {
			return nil, &domain.AgentError{Kind: domain.AgentErrTimeout, Cause: err}
		}
		results = append(results, m.score(jdTerms, r))
	}

	return &domain.CompareBatchResponse{
		Results:          results,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (m *Mock) score(jdTerms []string, r domain.ResumeInput) domain.MatchResult {
	have := make(map[string]bool)
	for _, t := range terms(r.ResumeText) {
		have[t] = true
	}

	var matched, missing []string
	for _, t := range jdTerms {
		if have[t] {
			matched = append(matched, t)
		} else {
			missing = append(missing, t)
		}
	}

	score := 0.0
	if len(jdTerms) > 0 {
		score = math.Round(float64(len(matched))*1000/float64(len(jdTerms))) / 10
	}
	fit := domain.FitForScore(score)
	version := m.version
	confidence := 50.0

	return domain.MatchResult{
		ResumeID:    r.ResumeID,
		MatchScore:  score,
		FitCategory: fit,
		JDExtracted: domain.JDExtracted{
			RequiredSkills:   head(jdTerms, 15),
			PreferredSkills:  []string{},
			Responsibilities: []string{},
		},
		ResumeExtracted: domain.ResumeExtracted{
			SkillsMatched:   head(matched, 15),
			SkillsMissing:   head(missing, 15),
			Certifications:  []string{},
			WorkHistory:     []domain.WorkHistory{},
			KeyAchievements: []string{},
		},
		MatchBreakdown: domain.MatchBreakdown{
			SkillsMatch:          score,
			OverallCompatibility: score,
		},
		SelectionReason: fmt.Sprintf("%s: %d of %d job description keywords found in the resume.",
			strings.ToUpper(string(fit)), len(matched), len(jdTerms)),
		AgentVersion:    &version,
		ConfidenceScore: &confidence,
	}
}

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true, "are": true,
	"our": true, "will": true, "this": true, "that": true, "from": true, "have": true,
	"has": true, "who": true, "all": true, "any": true, "can": true, "not": true,
	"to": true, "of": true, "in": true, "an": true, "on": true, "at": true,
	"as": true, "by": true, "or": true, "is": true, "be": true, "we": true,
}

// terms returns the distinct lowercase keywords of s in sorted order.
func terms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func head(s []string, n int) []string {
	if s == nil {
		return []string{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
