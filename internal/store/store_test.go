package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalybrate/kalybrate/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestTaskResultRoundTrip(t *testing.T) {
	s := newTestStore(t)

	result := &models.TaskResult{
		TaskID:       "easy-1",
		SkillID:      "excel-builder",
		Difficulty:   models.DifficultyEasy,
		State:        models.TaskDone,
		Passed:       true,
		Verification: models.VerificationFull,
		Criteria: []models.CriterionResult{
			models.VerifiedResult("file_created", true, ""),
		},
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.False(t, s.HasTaskResult("excel-builder", "easy-1"))
	require.NoError(t, s.SaveTaskResult(result))
	require.True(t, s.HasTaskResult("excel-builder", "easy-1"))

	loaded, err := s.LoadTaskResults("excel-builder")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, *result, loaded[0])
}

func TestLoadTaskResultsEmpty(t *testing.T) {
	s := newTestStore(t)
	results, err := s.LoadTaskResults("never-evaluated")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestComparisonRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cmp := &models.Comparison{
		PromptID:   "q-1",
		SkillID:    "excel-builder",
		Prompt:     "Help me budget",
		SkillFirst: true,
		Verdict:    models.VerdictSkill,
	}
	require.NoError(t, s.SaveComparison(cmp))
	require.True(t, s.HasComparison("excel-builder", "q-1"))

	loaded, err := s.LoadComparisons("excel-builder")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, *cmp, loaded[0])
}

func TestSaveReplacesAtomically(t *testing.T) {
	s := newTestStore(t)

	first := &models.TaskResult{TaskID: "t", SkillID: "sk", State: models.TaskFailed, Error: "timeout"}
	require.NoError(t, s.SaveTaskResult(first))

	second := &models.TaskResult{TaskID: "t", SkillID: "sk", State: models.TaskDone, Passed: true}
	require.NoError(t, s.SaveTaskResult(second))

	loaded, err := s.LoadTaskResults("sk")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, models.TaskDone, loaded[0].State)

	// no temp droppings left behind
	entries, err := os.ReadDir(filepath.Join(s.SkillDir("sk"), "tasks"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestScoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	overall := 72.0
	score := &models.SkillScore{
		Version:  models.ScoreRecordVersion,
		SkillID:  "excel-builder",
		Overall:  &overall,
		Grade:    "C",
		Complete: true,
	}
	require.NoError(t, s.SaveScore(score))

	loaded, err := s.LoadScore("excel-builder")
	require.NoError(t, err)
	assert.Equal(t, score, loaded)
}

func TestSanitizedIDs(t *testing.T) {
	s := newTestStore(t)

	r := &models.TaskResult{TaskID: "../escape/attempt", SkillID: "weird/skill id"}
	require.NoError(t, s.SaveTaskResult(r))

	// the record stays inside the skill directory
	loaded, err := s.LoadTaskResults("weird/skill id")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "../escape/attempt", loaded[0].TaskID)
}

func TestSuiteCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cache := s.SuiteCache()

	suite := &models.Suite{
		SkillID:        "excel-builder",
		GeneratorModel: "smart-model",
		GeneratedAt:    time.Now().UTC().Truncate(time.Second),
		Tasks: []models.Task{{
			ID: "t1", Difficulty: models.DifficultyEasy, Prompt: "p",
			OutputKind: models.OutputText,
			Criteria:   []models.Criterion{models.BooleanCriterion("response_exists", true)},
		}},
		QualityPrompts: []models.QualityPrompt{{ID: "q1", Prompt: "qp"}},
	}
	require.NoError(t, cache.Put(suite))

	got, ok, err := cache.Get("excel-builder", "smart-model")
	require.NoError(t, err)
	require.True(t, ok)

	// the cached copy is byte-identical to what was stored
	want, err := json.Marshal(suite)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}

func TestSuiteCacheKeyedByModel(t *testing.T) {
	s := newTestStore(t)
	cache := s.SuiteCache()

	suite := &models.Suite{
		SkillID:        "excel-builder",
		GeneratorModel: "model-v1",
		Tasks: []models.Task{{
			ID: "t1", Difficulty: models.DifficultyEasy, Prompt: "p",
			OutputKind: models.OutputText,
			Criteria:   []models.Criterion{models.BooleanCriterion("response_exists", true)},
		}},
		QualityPrompts: []models.QualityPrompt{{ID: "q1", Prompt: "qp"}},
	}
	require.NoError(t, cache.Put(suite))

	_, ok, err := cache.Get("excel-builder", "model-v2")
	require.NoError(t, err)
	assert.False(t, ok, "a different generator model must miss")

	_, ok, err = cache.Get("other-skill", "model-v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLeaderboard(t *testing.T) {
	s := newTestStore(t)

	save := func(skillID string, overall float64, complete bool) {
		score := &models.SkillScore{
			SkillID:     skillID,
			Overall:     &overall,
			Grade:       models.GradeFor(overall),
			Complete:    complete,
			EvaluatedAt: time.Now().UTC(),
		}
		require.NoError(t, s.UpdateLeaderboard(score))
	}

	save("bronze", 61, true)
	save("gold", 92, true)
	save("silver", 80, false)

	board, err := s.LoadLeaderboard()
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, []string{"gold", "silver", "bronze"}, []string{
		board.Entries[0].SkillID, board.Entries[1].SkillID, board.Entries[2].SkillID,
	})
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 3, board.Entries[2].Rank)

	// re-evaluating replaces the row instead of appending
	save("bronze", 95, true)
	board, err = s.LoadLeaderboard()
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, "bronze", board.Entries[0].SkillID)
}
