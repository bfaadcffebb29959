// Package models defines the data model shared by the evaluation engine:
// skill documents, generated benchmark suites, task and comparison records,
// and the aggregate skill score. Everything here is JSON-serializable so the
// flat-file store can persist records that are sufficient, on their own, to
// recompute a score offline.
package models

import (
	"fmt"
	"time"
)

// Difficulty tiers a benchmark task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// OutputKind classifies what a task is expected to produce.
type OutputKind string

const (
	OutputFile OutputKind = "file"
	OutputCode OutputKind = "code"
	OutputText OutputKind = "text"
)

// SkillDocument is a fetched skill definition: SKILL.md frontmatter plus the
// full markdown body. The body is what gets injected verbatim as system
// context when the skill arm of an evaluation runs.
type SkillDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Content is the complete markdown body, frontmatter excluded.
	Content string `json:"content"`
	// Claims are capability bullets recovered from the body, used to steer
	// benchmark generation toward what the skill actually promises.
	Claims []string `json:"claims,omitempty"`
}

// Task is one generated benchmark task.
type Task struct {
	ID         string      `json:"id"`
	Difficulty Difficulty  `json:"difficulty"`
	Prompt     string      `json:"prompt"`
	OutputKind OutputKind  `json:"expected_output_kind"`
	// FileExt is the expected artifact extension (".xlsx", ".docx", ...) for
	// file tasks. Empty for code and text tasks.
	FileExt string `json:"file_ext,omitempty"`
	// Claim names the skill claim this task exercises.
	Claim    string      `json:"tests_claim,omitempty"`
	Criteria []Criterion `json:"criteria"`
}

// Validate checks the structural requirements every runnable task must meet.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task has no id")
	}
	if t.Prompt == "" {
		return fmt.Errorf("task %q has an empty prompt", t.ID)
	}
	switch t.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("task %q has unknown difficulty %q", t.ID, t.Difficulty)
	}
	switch t.OutputKind {
	case OutputFile, OutputCode, OutputText:
	default:
		return fmt.Errorf("task %q has unknown output kind %q", t.ID, t.OutputKind)
	}
	if len(t.Criteria) == 0 {
		return fmt.Errorf("task %q has no success criteria", t.ID)
	}
	return nil
}

// QualityPrompt is a realistic open-ended request used for A/B quality
// comparison between the skill and baseline arms.
type QualityPrompt struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// SelectivityTest is a negative probe: a prompt outside the skill's specialty
// where the skill arm should answer plainly instead of forcing its specialty
// artifact into the response.
type SelectivityTest struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	// AvoidMarker is a telltale substring that indicates the skill overreached
	// (for example a spreadsheet skill emitting "=SUM(" in a recipe answer).
	AvoidMarker string `json:"avoid_marker,omitempty"`
}

// Suite is a generated benchmark suite for one skill, produced once per
// (skill, generator model) pair and cached.
type Suite struct {
	SkillID        string    `json:"skill_id"`
	GeneratorModel string    `json:"generator_model"`
	GeneratedAt    time.Time `json:"generated_at"`
	Claims         []string  `json:"skill_claims,omitempty"`

	Tasks            []Task            `json:"tasks"`
	QualityPrompts   []QualityPrompt   `json:"quality_prompts"`
	SelectivityTests []SelectivityTest `json:"selectivity_tests,omitempty"`
}

// Validate checks suite-level structure: at least one task and one quality
// prompt, and every task individually valid.
func (s *Suite) Validate() error {
	if s.SkillID == "" {
		return fmt.Errorf("suite has no skill id")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("suite for %q has no tasks", s.SkillID)
	}
	if len(s.QualityPrompts) == 0 {
		return fmt.Errorf("suite for %q has no quality prompts", s.SkillID)
	}
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}
	for _, qp := range s.QualityPrompts {
		if qp.ID == "" || qp.Prompt == "" {
			return fmt.Errorf("suite for %q has a quality prompt with missing id or prompt", s.SkillID)
		}
	}
	return nil
}

// TasksByDifficulty groups the suite's tasks per tier.
func (s *Suite) TasksByDifficulty() map[Difficulty][]Task {
	out := make(map[Difficulty][]Task, len(Difficulties))
	for _, t := range s.Tasks {
		out[t.Difficulty] = append(out[t.Difficulty], t)
	}
	return out
}
