// Package runner executes one benchmark task at a time: invoke the
// capability with the skill document as system context, classify what came
// back, verify it against the task's criteria, and emit a self-contained
// result record. A failed attempt is absorbed into the record; it never
// propagates as an error, so one bad task cannot take down a session.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/classify"
	"github.com/kalybrate/kalybrate/internal/logger"
	"github.com/kalybrate/kalybrate/internal/models"
	"github.com/kalybrate/kalybrate/internal/verify"
)

// Runner runs tasks against the execution-tier capability client.
type Runner struct {
	client   capability.Client
	workRoot string
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkRoot sets the parent directory for per-task work areas. Without it
// work areas land in the system temp directory.
func WithWorkRoot(dir string) Option {
	return func(r *Runner) { r.workRoot = dir }
}

// New builds a Runner. The client should already carry timeout and retry
// policy (see capability.Caller).
func New(client capability.Client, opts ...Option) *Runner {
	r := &Runner{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one task attempt end to end and returns its record. The
// record is always usable: a capability failure yields a failed record with
// the reason preserved, not an error.
func (r *Runner) Run(ctx context.Context, doc *models.SkillDocument, task models.Task) *models.TaskResult {
	log := logger.G(ctx).WithField("skill", doc.ID).WithField("task", task.ID)
	started := time.Now()

	result := &models.TaskResult{
		TaskID:     task.ID,
		SkillID:    doc.ID,
		Difficulty: task.Difficulty,
		State:      models.TaskPending,
		StartedAt:  started.UTC(),
	}
	finish := func() *models.TaskResult {
		result.DurationMS = time.Since(started).Milliseconds()
		return result
	}
	fail := func(reason string) *models.TaskResult {
		result.State = models.TaskFailed
		result.Error = reason
		result.Verification = models.VerificationUnverified
		log.WithField("reason", reason).Warn("task failed")
		return finish()
	}

	workDir, err := r.createWorkArea(task.ID)
	if err != nil {
		return fail(fmt.Sprintf("creating work area: %v", err))
	}

	result.State = models.TaskExecuting
	log.Debug("executing task")

	inv, err := r.client.Invoke(ctx, buildSystemContext(doc, workDir), task.Prompt)
	if err != nil {
		return fail(err.Error())
	}

	usage := capability.FillUsage(inv.Usage, doc.Content+task.Prompt, inv.Text)
	result.Response = inv.Text
	result.ModelID = inv.Model
	result.InputTokens = usage.InputTokens
	result.OutputTokens = usage.OutputTokens

	// classification: a materialized file wins, then code regions, then text
	artifactPath := findArtifact(workDir, task.FileExt)
	kind := classify.Classify(inv.Text, artifactPath != "")

	target := verify.Target{
		Kind:     kind,
		Response: inv.Text,
		FilePath: artifactPath,
	}
	if region, ok := classify.BestRegion(classify.Regions(inv.Text)); ok {
		target.Code = region.Body
		target.Language = region.Language
	}

	result.Artifact = artifactFor(kind, workDir, artifactPath, target)
	result.State = models.TaskClassified

	result.Criteria = verify.Apply(target, task.Criteria)
	result.State = models.TaskVerified

	result.Passed, result.Verification = models.SummarizeCriteria(result.Criteria)
	result.State = models.TaskDone

	log.WithField("passed", result.Passed).
		WithField("verification", result.Verification).
		Info("task done")
	return finish()
}

func artifactFor(kind models.OutputKind, workDir, artifactPath string, target verify.Target) *models.Artifact {
	switch kind {
	case models.OutputFile:
		if artifactPath == "" {
			return nil
		}
		return &models.Artifact{Kind: models.OutputFile, Path: relativeTo(workDir, artifactPath)}
	case models.OutputCode:
		if target.Code == "" {
			return nil
		}
		return &models.Artifact{Kind: models.OutputCode, Code: target.Code, Language: target.Language}
	default:
		return nil
	}
}

// buildSystemContext injects the entire skill document, unmodified, plus the
// work area the task should write into.
func buildSystemContext(doc *models.SkillDocument, workDir string) string {
	return fmt.Sprintf("%s\n\nWhen a task asks for a file, save it under %s and say so in your answer.", doc.Content, workDir)
}
