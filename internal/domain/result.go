package domain

import (
	"time"

	"gorm.io/datatypes"
)

type FitCategory string

const (
	FitBest    FitCategory = "Best Fit"
	FitPartial FitCategory = "Partial Fit"
	FitNot     FitCategory = "Not Fit"

	// Legacy categories still present in older records.
	FitExcellentMatch FitCategory = "Excellent Match"
	FitGoodMatch      FitCategory = "Good Match"
	FitAverageMatch   FitCategory = "Average Match"
	FitPoorMatch      FitCategory = "Poor Match"
)

func (f FitCategory) Valid() bool {
	switch f {
	case FitBest, FitPartial, FitNot, FitExcellentMatch, FitGoodMatch, FitAverageMatch, FitPoorMatch:
		return true
	}
	return false
}

// FitCategories lists every category in reporting order.
var FitCategories = []FitCategory{
	FitBest, FitPartial, FitNot,
	FitExcellentMatch, FitGoodMatch, FitAverageMatch, FitPoorMatch,
}

// FitForScore maps a 0-100 score onto the current three-way categorisation.
func FitForScore(score float64) FitCategory {
	switch {
	case score >= HighMatchScore:
		return FitBest
	case score >= 50:
		return FitPartial
	default:
		return FitNot
	}
}

type ExperienceRequired struct {
	MinYears int    `json:"min_years"`
	MaxYears *int   `json:"max_years,omitempty"`
	Type     string `json:"type"`
}

type JDExtracted struct {
	Position           string             `json:"position"`
	ExperienceRequired ExperienceRequired `json:"experience_required"`
	RequiredSkills     []string           `json:"required_skills"`
	PreferredSkills    []string           `json:"preferred_skills"`
	Education          string             `json:"education"`
	Location           string             `json:"location"`
	JobType            *string            `json:"job_type,omitempty"`
	Responsibilities   []string           `json:"responsibilities"`
}

type Education struct {
	Degree      string  `json:"degree"`
	Institution string  `json:"institution"`
	Year        int     `json:"year"`
	Grade       *string `json:"grade,omitempty"`
}

type WorkHistory struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Technologies []string `json:"technologies"`
}

type ResumeExtracted struct {
	CandidateName      string        `json:"candidate_name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone"`
	Location           string        `json:"location"`
	CurrentPosition    string        `json:"current_position"`
	TotalExperience    float64       `json:"total_experience"`
	RelevantExperience float64       `json:"relevant_experience"`
	SkillsMatched      []string      `json:"skills_matched"`
	SkillsMissing      []string      `json:"skills_missing"`
	Education          Education     `json:"education"`
	Certifications     []string      `json:"certifications"`
	WorkHistory        []WorkHistory `json:"work_history"`
	KeyAchievements    []string      `json:"key_achievements"`
}

type MatchBreakdown struct {
	SkillsMatch          float64 `json:"skills_match"`
	ExperienceMatch      float64 `json:"experience_match"`
	EducationMatch       float64 `json:"education_match"`
	LocationMatch        float64 `json:"location_match"`
	CulturalFit          float64 `json:"cultural_fit"`
	OverallCompatibility float64 `json:"overall_compatibility"`
}

// ResumeResult is the stored outcome of comparing one resume to one job
// description. At most one exists per (ResumeID, JDID).
type ResumeResult struct {
	ID         string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	ResumeID   string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_result_pair" json:"resume_id"`
	JDID       string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_result_pair;index" json:"jd_id"`
	WorkflowID *string `gorm:"type:varchar(40);index" json:"workflow_id,omitempty"`

	MatchScore      float64                             `gorm:"index" json:"match_score"`
	FitCategory     FitCategory                         `gorm:"type:varchar(30);index" json:"fit_category"`
	JDExtracted     datatypes.JSONType[JDExtracted]     `json:"jd_extracted"`
	ResumeExtracted datatypes.JSONType[ResumeExtracted] `json:"resume_extracted"`
	MatchBreakdown  datatypes.JSONType[MatchBreakdown]  `json:"match_breakdown"`
	SelectionReason string                              `gorm:"type:text" json:"selection_reason"`

	Timestamp            time.Time `gorm:"column:scored_at;index" json:"timestamp"`
	AgentVersion         *string   `gorm:"type:varchar(50)" json:"agent_version,omitempty"`
	ProcessingDurationMs *int64    `json:"processing_duration_ms,omitempty"`
	ConfidenceScore      *float64  `json:"confidence_score,omitempty"`
}

// NewResumeResult converts one agent match into a storable result for jdID.
func NewResumeResult(id, jdID string, m MatchResult, workflowID *string, now time.Time) *ResumeResult {
	fit := m.FitCategory
	if !fit.Valid() {
		fit = FitForScore(m.MatchScore)
	}
	return &ResumeResult{
		ID:                   id,
		ResumeID:             m.ResumeID,
		JDID:                 jdID,
		WorkflowID:           workflowID,
		MatchScore:           m.MatchScore,
		FitCategory:          fit,
		JDExtracted:          datatypes.NewJSONType(m.JDExtracted),
		ResumeExtracted:      datatypes.NewJSONType(m.ResumeExtracted),
		MatchBreakdown:       datatypes.NewJSONType(m.MatchBreakdown),
		SelectionReason:      m.SelectionReason,
		Timestamp:            now,
		AgentVersion:         m.AgentVersion,
		ProcessingDurationMs: m.ProcessingDurationMs,
		ConfidenceScore:      m.ConfidenceScore,
	}
}
