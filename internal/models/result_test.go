package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeCriteria(t *testing.T) {
	tests := []struct {
		name       string
		results    []CriterionResult
		wantPassed bool
		wantLevel  VerificationLevel
	}{
		{
			name: "all verified passing",
			results: []CriterionResult{
				VerifiedResult("file_created", true, ""),
				VerifiedResult("min_rows", true, ""),
			},
			wantPassed: true,
			wantLevel:  VerificationFull,
		},
		{
			name: "one verified failure fails the task",
			results: []CriterionResult{
				VerifiedResult("file_created", true, ""),
				VerifiedResult("has_formula", false, ""),
			},
			wantPassed: false,
			wantLevel:  VerificationFull,
		},
		{
			name: "unverifiable never affects pass",
			results: []CriterionResult{
				VerifiedResult("file_created", true, ""),
				UnverifiableResult("code_compiles", "no syntax checker for ruby"),
			},
			wantPassed: true,
			wantLevel:  VerificationPartial,
		},
		{
			name: "zero verified criteria is unverified",
			results: []CriterionResult{
				UnverifiableResult("has_chart", "no reader for .pdf"),
				UnverifiableResult("min_slides", "no reader for .pdf"),
			},
			wantPassed: false,
			wantLevel:  VerificationUnverified,
		},
		{
			name:       "empty criteria set is unverified",
			results:    nil,
			wantPassed: false,
			wantLevel:  VerificationUnverified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, level := SummarizeCriteria(tt.results)
			assert.Equal(t, tt.wantPassed, passed)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestSummarizeCriteriaUnverifiableFlip(t *testing.T) {
	// Flipping an unverifiable result's Passed bit must not change the
	// task-level outcome.
	base := []CriterionResult{
		VerifiedResult("response_exists", true, ""),
		UnverifiableResult("has_docstrings", "heuristic unavailable"),
	}
	passedA, levelA := SummarizeCriteria(base)

	flipped := make([]CriterionResult, len(base))
	copy(flipped, base)
	flipped[1].Passed = !flipped[1].Passed
	passedB, levelB := SummarizeCriteria(flipped)

	assert.Equal(t, passedA, passedB)
	assert.Equal(t, levelA, levelB)
}

func TestTaskResultCountable(t *testing.T) {
	done := TaskResult{State: TaskDone, Verification: VerificationFull}
	assert.True(t, done.Countable())

	partial := TaskResult{State: TaskDone, Verification: VerificationPartial}
	assert.True(t, partial.Countable())

	unverified := TaskResult{State: TaskDone, Verification: VerificationUnverified}
	assert.False(t, unverified.Countable())

	failed := TaskResult{State: TaskFailed, Verification: VerificationUnverified, Error: "timeout"}
	assert.False(t, failed.Countable())
	assert.True(t, failed.Failed())
}

func TestParseCriteria(t *testing.T) {
	raw := map[string]any{
		"file_created": true,
		"min_rows":     float64(10),
		"must_mention": "budget",
	}

	criteria, err := ParseCriteria(raw)
	require.NoError(t, err)
	require.Len(t, criteria, 3)

	// Sorted by name.
	assert.Equal(t, Criterion{Name: "file_created", Kind: CriterionBoolean, Expect: true}, criteria[0])
	assert.Equal(t, Criterion{Name: "min_rows", Kind: CriterionThreshold, Minimum: 10}, criteria[1])
	assert.Equal(t, Criterion{Name: "must_mention", Kind: CriterionPattern, Pattern: "budget"}, criteria[2])
}

func TestParseCriteriaRejectsUnsupportedValues(t *testing.T) {
	_, err := ParseCriteria(map[string]any{"weird": []any{1, 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weird")
}
