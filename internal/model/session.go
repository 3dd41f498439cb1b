package model

import "time"

// Stage identifies the current phase of the conversation pipeline.
type Stage string

const (
	StageDataCollection Stage = "data_collection"
	StageAnalysis       Stage = "analysis"
	StageCalculation    Stage = "calculation"
	StageReport         Stage = "report"
)

// Next returns the stage that follows s. The pipeline only moves forward;
// Report is terminal and returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageDataCollection:
		return StageAnalysis
	case StageAnalysis:
		return StageCalculation
	case StageCalculation:
		return StageReport
	default:
		return StageReport
	}
}

// Session holds the full state of one advisory conversation.
type Session struct {
	ID           string             `json:"session_id"`
	Stage        Stage              `json:"stage"`
	Profile      UserProfile        `json:"profile"`
	Technical    *TechnicalData     `json:"technical,omitempty"`
	Analysis     *AnalysisResult    `json:"analysis,omitempty"`
	Calculations *CalculationResult `json:"calculations,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewSession creates a session at the start of the pipeline.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Stage:     StageDataCollection,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns an independent copy of the session. Sub-objects behind
// pointers are copied one level deep; stage handlers replace field pointers
// rather than mutating through them, so that is sufficient isolation.
func (s *Session) Clone() *Session {
	c := *s
	if s.Technical != nil {
		t := *s.Technical
		c.Technical = &t
	}
	if s.Analysis != nil {
		a := *s.Analysis
		a.RecommendedTechnologies = append([]string(nil), s.Analysis.RecommendedTechnologies...)
		c.Analysis = &a
	}
	if s.Calculations != nil {
		cc := *s.Calculations
		c.Calculations = &cc
	}
	return &c
}
