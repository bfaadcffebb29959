package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/models"
)

func testDoc() *models.SkillDocument {
	return &models.SkillDocument{
		ID:      "writer",
		Name:    "Writer",
		Content: "# Writer skill\n\nWrites well.",
	}
}

func TestRunTextTask(t *testing.T) {
	client := &capability.ScriptedClient{
		ModelID:   "cheap-model",
		Responses: []string{"First paragraph with plenty of words for the check.\n\nSecond paragraph."},
	}
	r := New(client, WithWorkRoot(t.TempDir()))

	task := models.Task{
		ID:         "text-1",
		Difficulty: models.DifficultyEasy,
		Prompt:     "Write two paragraphs",
		OutputKind: models.OutputText,
		Criteria: []models.Criterion{
			models.BooleanCriterion("response_exists", true),
			models.ThresholdCriterion("min_paragraphs", 2),
		},
	}

	result := r.Run(context.Background(), testDoc(), task)

	assert.Equal(t, models.TaskDone, result.State)
	assert.True(t, result.Passed)
	assert.Equal(t, models.VerificationFull, result.Verification)
	assert.Equal(t, "cheap-model", result.ModelID)
	assert.Greater(t, result.OutputTokens, 0)
	require.Len(t, result.Criteria, 2)

	// the skill document travels as system context
	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].SystemContext, "# Writer skill")
	assert.Equal(t, "Write two paragraphs", calls[0].Prompt)
}

func TestRunCodeTask(t *testing.T) {
	client := &capability.ScriptedClient{
		Responses: []string{"Sure:\n```go\nfunc Hello() string { return \"hi\" }\n```\n"},
	}
	r := New(client, WithWorkRoot(t.TempDir()))

	task := models.Task{
		ID:         "code-1",
		Difficulty: models.DifficultyMedium,
		Prompt:     "Write a greeting function in Go",
		OutputKind: models.OutputCode,
		Criteria: []models.Criterion{
			models.BooleanCriterion("code_extracted", true),
			models.BooleanCriterion("code_compiles", true),
		},
	}

	result := r.Run(context.Background(), testDoc(), task)

	assert.Equal(t, models.TaskDone, result.State)
	assert.True(t, result.Passed)
	require.NotNil(t, result.Artifact)
	assert.Equal(t, models.OutputCode, result.Artifact.Kind)
	assert.Equal(t, "go", result.Artifact.Language)
}

func TestRunFileTaskWithoutArtifact(t *testing.T) {
	// the capability only talks; no file ever materializes
	client := &capability.ScriptedClient{Responses: []string{"I would create a spreadsheet like so..."}}
	r := New(client, WithWorkRoot(t.TempDir()))

	task := models.Task{
		ID:         "file-1",
		Difficulty: models.DifficultyEasy,
		Prompt:     "Create a budget spreadsheet",
		OutputKind: models.OutputFile,
		FileExt:    ".xlsx",
		Criteria: []models.Criterion{
			models.BooleanCriterion("file_created", true),
		},
	}

	result := r.Run(context.Background(), testDoc(), task)

	assert.Equal(t, models.TaskDone, result.State)
	assert.False(t, result.Passed)
	assert.Equal(t, models.VerificationFull, result.Verification)
	assert.Nil(t, result.Artifact)
	require.Len(t, result.Criteria, 1)
	assert.True(t, result.Criteria[0].Verified())
	assert.False(t, result.Criteria[0].Passed)
}

func TestRunCapabilityFailureIsAbsorbed(t *testing.T) {
	client := &capability.ScriptedClient{Err: capability.ErrEmptyResponse}
	r := New(client, WithWorkRoot(t.TempDir()))

	task := models.Task{
		ID: "fail-1", Difficulty: models.DifficultyEasy, Prompt: "p",
		OutputKind: models.OutputText,
		Criteria:   []models.Criterion{models.BooleanCriterion("response_exists", true)},
	}

	result := r.Run(context.Background(), testDoc(), task)

	assert.Equal(t, models.TaskFailed, result.State)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "empty response")
	assert.Equal(t, models.VerificationUnverified, result.Verification)
	assert.False(t, result.Countable())
}

// timeoutClient always runs past its deadline.
type timeoutClient struct{}

func (timeoutClient) Model() string { return "slow" }

func (timeoutClient) Invoke(ctx context.Context, systemContext, prompt string) (*capability.Invocation, error) {
	<-ctx.Done()
	return nil, capability.ErrTimeout
}

func TestRunTimeoutTwiceFails(t *testing.T) {
	caller := capability.NewCaller(timeoutClient{},
		capability.WithTimeout(10*time.Millisecond),
		capability.WithRetryDelay(time.Millisecond),
	)
	r := New(caller, WithWorkRoot(t.TempDir()))

	task := models.Task{
		ID: "slow-1", Difficulty: models.DifficultyHard, Prompt: "p",
		OutputKind: models.OutputText,
		Criteria:   []models.Criterion{models.BooleanCriterion("response_exists", true)},
	}

	result := r.Run(context.Background(), testDoc(), task)

	assert.Equal(t, models.TaskFailed, result.State)
	assert.Contains(t, result.Error, "timed out")
}

func TestFindArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.xlsx"), []byte("x"), 0o644))
	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "new.xlsx"), []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.xlsx"), nil, 0o644))

	// newer mtime wins within the matching extension
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(nested, "new.xlsx"), future, future))

	got := findArtifact(dir, ".xlsx")
	assert.True(t, strings.HasSuffix(got, "new.xlsx"), got)

	assert.Equal(t, "", findArtifact(t.TempDir(), ".xlsx"))
}
