package models

import "time"

// VerificationLevel summarizes how much of a task's criteria set an oracle
// could actually check.
type VerificationLevel string

const (
	// VerificationFull means every criterion was checked by a real oracle.
	VerificationFull VerificationLevel = "full"
	// VerificationPartial means at least one criterion was checked and at
	// least one was unverifiable.
	VerificationPartial VerificationLevel = "partial"
	// VerificationUnverified means no criterion could be checked. Unverified
	// tasks are excluded from the pass-rate denominator.
	VerificationUnverified VerificationLevel = "unverified"
)

// TaskState tracks a task attempt through its lifecycle. Failed is absorbing
// for the attempt; a re-run is a new attempt started by the operator.
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskExecuting  TaskState = "executing"
	TaskClassified TaskState = "classified"
	TaskVerified   TaskState = "verified"
	TaskDone       TaskState = "done"
	TaskFailed     TaskState = "failed"
)

// Artifact describes what the classifier selected from a task response.
type Artifact struct {
	Kind OutputKind `json:"kind"`
	// Path is the produced file for file artifacts, relative to the work area.
	Path string `json:"path,omitempty"`
	// Code and Language carry the selected fenced region for code artifacts.
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
}

// TaskResult is the persisted record of one task attempt. It carries enough
// context (difficulty, criteria outcomes, model id, token usage) to recompute
// scores without consulting any other record.
type TaskResult struct {
	TaskID     string     `json:"task_id"`
	SkillID    string     `json:"skill_id"`
	Difficulty Difficulty `json:"difficulty"`
	State      TaskState  `json:"state"`

	Response string    `json:"response,omitempty"`
	Artifact *Artifact `json:"artifact,omitempty"`
	Criteria []CriterionResult `json:"criteria,omitempty"`

	// Passed is the AND over verified criteria only. Meaningless when
	// Verification is unverified.
	Passed       bool              `json:"passed"`
	Verification VerificationLevel `json:"verification"`

	// Error preserves the failure reason when State is failed.
	Error string `json:"error,omitempty"`

	ModelID      string    `json:"model_id,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// Failed reports whether the attempt ended in the absorbing failure state.
func (tr *TaskResult) Failed() bool { return tr.State == TaskFailed }

// Countable reports whether the result participates in the pass-rate
// denominator. Failed and unverified attempts do not.
func (tr *TaskResult) Countable() bool {
	return tr.State == TaskDone && tr.Verification != VerificationUnverified
}

// SummarizeCriteria derives the task-level pass flag and verification level
// from individual criterion results. Unverifiable criteria never affect the
// pass flag. With zero verified criteria the level is unverified and the
// pass flag is false by convention (and meaningless).
func SummarizeCriteria(results []CriterionResult) (passed bool, level VerificationLevel) {
	verified, unverifiable := 0, 0
	passed = true
	for _, cr := range results {
		if cr.Verified() {
			verified++
			if !cr.Passed {
				passed = false
			}
		} else {
			unverifiable++
		}
	}
	switch {
	case verified == 0:
		return false, VerificationUnverified
	case unverifiable == 0:
		return passed, VerificationFull
	default:
		return passed, VerificationPartial
	}
}

// SelectivityResult records one negative-probe outcome. Selectivity is
// informational and never joins the canonical score weighting.
type SelectivityResult struct {
	TestID  string `json:"test_id"`
	SkillID string `json:"skill_id"`
	Passed  bool   `json:"passed"`
	Note    string `json:"note,omitempty"`
	ModelID string `json:"model_id,omitempty"`
}
