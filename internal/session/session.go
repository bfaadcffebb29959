// Package session orchestrates one full skill evaluation: fetch the skill
// document, generate or load the benchmark suite, run tasks, comparisons and
// selectivity probes under one shared concurrency limit, then score from the
// persisted records. Generation is a hard prerequisite; nothing runs without
// a validated suite. Task and comparison failures are contained in their
// records, so the session is always scoreable from whatever completed.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/comparator"
	"github.com/kalybrate/kalybrate/internal/generator"
	"github.com/kalybrate/kalybrate/internal/logger"
	"github.com/kalybrate/kalybrate/internal/models"
	"github.com/kalybrate/kalybrate/internal/runner"
	"github.com/kalybrate/kalybrate/internal/scorer"
	"github.com/kalybrate/kalybrate/internal/skilldoc"
	"github.com/kalybrate/kalybrate/internal/store"
)

const defaultConcurrency = 4

// Session wires the engine components together for one or more evaluations.
type Session struct {
	fetcher    skilldoc.Fetcher
	generator  *generator.Generator
	runner     *runner.Runner
	comparator *comparator.Comparator
	store      *store.Store

	// prober answers selectivity probes with the skill context attached
	prober capability.Client

	concurrency int
	weights     scorer.Weights
}

// Option configures a Session.
type Option func(*Session)

// WithConcurrency bounds how many tasks plus comparisons run at once. Tasks
// and comparisons share the one limit.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithWeights overrides the canonical component weights.
func WithWeights(w scorer.Weights) Option {
	return func(s *Session) { s.weights = w }
}

// WithProber sets the client answering selectivity probes. Without one,
// selectivity tests are skipped.
func WithProber(client capability.Client) Option {
	return func(s *Session) { s.prober = client }
}

// New assembles a Session.
func New(fetcher skilldoc.Fetcher, gen *generator.Generator, run *runner.Runner, cmp *comparator.Comparator, st *store.Store, opts ...Option) *Session {
	s := &Session{
		fetcher:     fetcher,
		generator:   gen,
		runner:      run,
		comparator:  cmp,
		store:       st,
		concurrency: defaultConcurrency,
		weights:     scorer.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateOptions adjust one evaluation run.
type EvaluateOptions struct {
	// Regenerate bypasses the suite cache.
	Regenerate bool
	// Fresh re-runs tasks and comparisons that already have records. The
	// default resumes: completed records are kept and skipped.
	Fresh bool
}

// Evaluate runs the full pipeline for one skill and returns the persisted
// score. A cancelled context stops launching new work at the next boundary;
// whatever records exist still get scored.
func (s *Session) Evaluate(ctx context.Context, skillID string, opts EvaluateOptions) (*models.SkillScore, error) {
	sessionID := strings.Split(uuid.NewString(), "-")[0]
	log := logger.G(ctx).WithFields(logrus.Fields{"skill": skillID, "session": sessionID})
	ctx = logger.WithLogger(ctx, log)
	started := time.Now()

	doc, err := s.fetcher.Fetch(ctx, skillID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching skill %s", skillID)
	}

	// hard prerequisite: no suite, no evaluation
	suite, err := s.generator.Generate(ctx, doc, opts.Regenerate)
	if err != nil {
		return nil, errors.Wrapf(err, "generating suite for %s", skillID)
	}

	log.WithFields(logrus.Fields{
		"tasks":       len(suite.Tasks),
		"comparisons": len(suite.QualityPrompts),
		"concurrency": s.concurrency,
	}).Info("evaluation started")

	if err := s.runAll(ctx, doc, suite, opts); err != nil {
		return nil, err
	}

	score, err := s.Rescore(ctx, skillID)
	if err != nil {
		return nil, err
	}
	score.DurationMS = time.Since(started).Milliseconds()
	if err := s.store.SaveScore(score); err != nil {
		return nil, errors.Wrap(err, "persisting score")
	}

	log.WithFields(logrus.Fields{
		"grade":    score.FormatGrade(),
		"complete": score.Complete,
	}).Info("evaluation finished")
	return score, nil
}

// runAll fans tasks, comparisons and selectivity probes out under the shared
// limit. Only persistence failures surface as errors; everything else is
// contained in the records.
func (s *Session) runAll(ctx context.Context, doc *models.SkillDocument, suite *models.Suite, opts EvaluateOptions) error {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, task := range suite.Tasks {
		if !opts.Fresh && s.store.HasTaskResult(doc.ID, task.ID) {
			logger.G(ctx).WithField("task", task.ID).Debug("record exists, skipping")
			continue
		}
		g.Go(func() error {
			// abort boundary: a cancelled session launches no new work
			if ctx.Err() != nil {
				return nil
			}
			result := s.runner.Run(ctx, doc, task)
			return s.store.SaveTaskResult(result)
		})
	}

	for _, prompt := range suite.QualityPrompts {
		if !opts.Fresh && s.store.HasComparison(doc.ID, prompt.ID) {
			logger.G(ctx).WithField("prompt", prompt.ID).Debug("record exists, skipping")
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			cmp := s.comparator.Compare(ctx, doc, prompt)
			return s.store.SaveComparison(cmp)
		})
	}

	if s.prober != nil {
		for _, probe := range suite.SelectivityTests {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				result := s.runProbe(ctx, doc, probe)
				return s.store.SaveSelectivityResult(result)
			})
		}
	}

	return g.Wait()
}

// runProbe checks that the skill does not force its specialty into an
// off-topic answer. The probe passes when the telltale marker stays absent.
func (s *Session) runProbe(ctx context.Context, doc *models.SkillDocument, probe models.SelectivityTest) *models.SelectivityResult {
	result := &models.SelectivityResult{
		TestID:  probe.ID,
		SkillID: doc.ID,
		ModelID: s.prober.Model(),
	}

	inv, err := s.prober.Invoke(ctx, doc.Content, probe.Prompt)
	if err != nil {
		result.Note = "probe failed: " + err.Error()
		return result
	}

	if probe.AvoidMarker == "" {
		result.Passed = strings.TrimSpace(inv.Text) != ""
		result.Note = "no marker declared, checked response presence only"
		return result
	}

	overreached := strings.Contains(strings.ToLower(inv.Text), strings.ToLower(probe.AvoidMarker))
	result.Passed = !overreached
	if overreached {
		result.Note = "response contains avoided marker " + probe.AvoidMarker
	}
	return result
}

// Rescore rebuilds the skill's score purely from persisted records and
// updates the leaderboard. No capability access happens here.
func (s *Session) Rescore(ctx context.Context, skillID string) (*models.SkillScore, error) {
	tasks, err := s.store.LoadTaskResults(skillID)
	if err != nil {
		return nil, errors.Wrap(err, "loading task records")
	}
	comparisons, err := s.store.LoadComparisons(skillID)
	if err != nil {
		return nil, errors.Wrap(err, "loading comparison records")
	}
	selectivity, err := s.store.LoadSelectivityResults(skillID)
	if err != nil {
		return nil, errors.Wrap(err, "loading selectivity records")
	}

	score := scorer.Compute(skillID, tasks, comparisons, selectivity, s.weights)
	if err := s.store.SaveScore(score); err != nil {
		return nil, errors.Wrap(err, "persisting score")
	}
	if err := s.store.UpdateLeaderboard(score); err != nil {
		return nil, errors.Wrap(err, "updating leaderboard")
	}
	return score, nil
}
