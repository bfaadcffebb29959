package models

import "time"

// Verdict is a de-mapped judge decision, expressed in logical arms rather
// than presentation positions.
type Verdict string

const (
	VerdictSkill    Verdict = "skill"
	VerdictBaseline Verdict = "baseline"
	VerdictTie      Verdict = "tie"
)

// Comparison is the persisted record of one A/B quality comparison. Both
// responses, the randomized presentation order, and the de-mapped verdict are
// kept so position bias can be audited after the fact.
type Comparison struct {
	PromptID string `json:"prompt_id"`
	SkillID  string `json:"skill_id"`
	Prompt   string `json:"prompt"`

	SkillResponse    string `json:"skill_response"`
	BaselineResponse string `json:"baseline_response"`

	// SkillFirst records whether the skill response was presented as
	// candidate A. The judge only ever sees positional labels.
	SkillFirst bool    `json:"skill_first"`
	Verdict    Verdict `json:"verdict"`
	Rationale  string  `json:"rationale,omitempty"`

	JudgeModel     string `json:"judge_model,omitempty"`
	ResponderModel string `json:"responder_model,omitempty"`

	SkillTokens    int `json:"skill_tokens,omitempty"`
	BaselineTokens int `json:"baseline_tokens,omitempty"`

	// Error is set when the comparison could not complete; errored
	// comparisons are excluded from the win-rate denominator.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Scoreable reports whether the comparison counts toward the win rate.
func (c *Comparison) Scoreable() bool { return c.Error == "" && c.Verdict != "" }
