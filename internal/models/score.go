package models

import (
	"fmt"
	"time"
)

// ScoreRecordVersion identifies the serialized SkillScore layout. Bump when
// the record shape changes incompatibly.
const ScoreRecordVersion = 1

// DifficultyStats is the per-tier pass breakdown on a score record.
type DifficultyStats struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}

// SkillScore is the aggregate evaluation outcome for one skill. Component
// rates are pointers: nil means the component had no scoreable inputs and was
// excluded from the weighted overall rather than counted as zero.
type SkillScore struct {
	Version int    `json:"version"`
	SkillID string `json:"skill_id"`

	TaskPassRate   *float64 `json:"task_pass_rate,omitempty"`
	QualityWinRate *float64 `json:"quality_win_rate,omitempty"`
	// SelectivityRate is informational only; it never joins the weighting.
	SelectivityRate *float64 `json:"selectivity_rate,omitempty"`

	// Overall is on a 0-100 scale, computed over the non-nil canonical
	// components with renormalized weights. Nil when neither component
	// produced a rate.
	Overall *float64 `json:"overall,omitempty"`
	Grade   string   `json:"grade,omitempty"`
	// Complete is true only when both canonical components are present.
	Complete bool `json:"complete"`

	TasksTotal      int                            `json:"tasks_total"`
	TasksPassed     int                            `json:"tasks_passed"`
	TasksUnverified int                            `json:"tasks_unverified"`
	TasksFailed     int                            `json:"tasks_failed"`
	ByDifficulty    map[Difficulty]DifficultyStats `json:"by_difficulty,omitempty"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`

	AvgSkillTokens    float64 `json:"avg_skill_tokens,omitempty"`
	AvgBaselineTokens float64 `json:"avg_baseline_tokens,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
	DurationMS  int64     `json:"duration_ms,omitempty"`
}

// GradeFor maps a 0-100 overall score onto the letter bands.
func GradeFor(overall float64) string {
	switch {
	case overall >= 90:
		return "A"
	case overall >= 80:
		return "B"
	case overall >= 70:
		return "C"
	case overall >= 60:
		return "D"
	default:
		return "F"
	}
}

// FormatGrade renders the grade for display, annotating incomplete scores so
// a partial evaluation is never mistaken for a full one.
func (s *SkillScore) FormatGrade() string {
	if s.Grade == "" {
		return "-"
	}
	if !s.Complete {
		return fmt.Sprintf("%s (partial)", s.Grade)
	}
	return s.Grade
}
