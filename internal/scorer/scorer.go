// Package scorer folds persisted task and comparison records into one
// SkillScore. It is pure aggregation: no capability access, no store access,
// so a score can always be recomputed offline from whatever records exist.
package scorer

import (
	"time"

	"github.com/kalybrate/kalybrate/internal/models"
)

// Weights control how the two canonical components combine. When only one
// component has scoreable inputs, its weight is renormalized to carry the
// whole overall score.
type Weights struct {
	Task    float64
	Quality float64
}

// DefaultWeights is the canonical 60/40 split.
func DefaultWeights() Weights { return Weights{Task: 0.6, Quality: 0.4} }

// Compute aggregates records into a score. Nil component rates mean "no
// scoreable inputs", never zero: an unverified task set yields a nil pass
// rate, not a failing one.
func Compute(skillID string, tasks []models.TaskResult, comparisons []models.Comparison, selectivity []models.SelectivityResult, w Weights) *models.SkillScore {
	score := &models.SkillScore{
		Version:     models.ScoreRecordVersion,
		SkillID:     skillID,
		EvaluatedAt: time.Now().UTC(),
	}

	scoreTasks(score, tasks)
	scoreComparisons(score, comparisons)
	scoreSelectivity(score, selectivity)

	score.Complete = score.TaskPassRate != nil && score.QualityWinRate != nil

	weightSum := 0.0
	weighted := 0.0
	if score.TaskPassRate != nil {
		weightSum += w.Task
		weighted += w.Task * (*score.TaskPassRate)
	}
	if score.QualityWinRate != nil {
		weightSum += w.Quality
		weighted += w.Quality * (*score.QualityWinRate)
	}
	if weightSum > 0 {
		overall := 100 * weighted / weightSum
		score.Overall = &overall
		score.Grade = models.GradeFor(overall)
	}

	return score
}

func scoreTasks(score *models.SkillScore, tasks []models.TaskResult) {
	score.TasksTotal = len(tasks)
	score.ByDifficulty = make(map[models.Difficulty]models.DifficultyStats)

	countable := 0
	for _, tr := range tasks {
		switch {
		case tr.Failed():
			score.TasksFailed++
			continue
		case tr.Verification == models.VerificationUnverified:
			score.TasksUnverified++
			continue
		}

		countable++
		stats := score.ByDifficulty[tr.Difficulty]
		stats.Total++
		if tr.Passed {
			score.TasksPassed++
			stats.Passed++
		}
		score.ByDifficulty[tr.Difficulty] = stats
	}

	if countable > 0 {
		rate := float64(score.TasksPassed) / float64(countable)
		score.TaskPassRate = &rate
	}
	if len(score.ByDifficulty) == 0 {
		score.ByDifficulty = nil
	}
}

func scoreComparisons(score *models.SkillScore, comparisons []models.Comparison) {
	scoreable := 0
	var skillTokens, baselineTokens int
	for _, cmp := range comparisons {
		if !cmp.Scoreable() {
			continue
		}
		scoreable++
		skillTokens += cmp.SkillTokens
		baselineTokens += cmp.BaselineTokens
		switch cmp.Verdict {
		case models.VerdictSkill:
			score.Wins++
		case models.VerdictBaseline:
			score.Losses++
		case models.VerdictTie:
			score.Ties++
		}
	}

	if scoreable > 0 {
		// ties count half a win
		rate := (float64(score.Wins) + 0.5*float64(score.Ties)) / float64(scoreable)
		score.QualityWinRate = &rate
		score.AvgSkillTokens = float64(skillTokens) / float64(scoreable)
		score.AvgBaselineTokens = float64(baselineTokens) / float64(scoreable)
	}
}

func scoreSelectivity(score *models.SkillScore, selectivity []models.SelectivityResult) {
	if len(selectivity) == 0 {
		return
	}
	passed := 0
	for _, sr := range selectivity {
		if sr.Passed {
			passed++
		}
	}
	rate := float64(passed) / float64(len(selectivity))
	score.SelectivityRate = &rate
}
