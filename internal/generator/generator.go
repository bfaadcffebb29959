// Package generator synthesizes benchmark suites from skill documents. The
// generation capability reads the skill's own claims and emits tasks with
// machine-checkable success criteria; the generator validates that output
// strictly and persists the suite before anything downstream can run.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/logger"
	"github.com/kalybrate/kalybrate/internal/models"
)

// ErrGenerationMalformed means the capability's output failed structural
// validation. Nothing is cached and the evaluation for the skill is fatal;
// a partial suite would make scores incomparable.
var ErrGenerationMalformed = errors.New("generated suite is malformed")

// Counts are the target suite sizes handed to the capability.
type Counts struct {
	Easy             int
	Medium           int
	Hard             int
	QualityPrompts   int
	SelectivityTests int
}

// DefaultCounts mirror the standard suite shape: three tasks per tier and
// four quality prompts.
func DefaultCounts() Counts {
	return Counts{Easy: 3, Medium: 3, Hard: 3, QualityPrompts: 4, SelectivityTests: 3}
}

// SuiteCache persists generated suites keyed by (skill id, generator model).
type SuiteCache interface {
	Get(skillID, generatorModel string) (*models.Suite, bool, error)
	Put(suite *models.Suite) error
}

// Generator drives suite synthesis.
type Generator struct {
	client capability.Client
	cache  SuiteCache
	counts Counts
}

// Option configures a Generator.
type Option func(*Generator)

// WithCounts overrides the target suite sizes.
func WithCounts(c Counts) Option {
	return func(g *Generator) { g.counts = c }
}

// WithCache attaches a suite cache; without one every call regenerates.
func WithCache(cache SuiteCache) Option {
	return func(g *Generator) { g.cache = cache }
}

// New builds a Generator around the smart-tier capability client.
func New(client capability.Client, opts ...Option) *Generator {
	g := &Generator{client: client, counts: DefaultCounts()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the benchmark suite for doc, reading through the cache
// unless force is set. A fresh suite is validated and persisted before it is
// returned; a malformed capability response caches nothing.
func (g *Generator) Generate(ctx context.Context, doc *models.SkillDocument, force bool) (*models.Suite, error) {
	log := logger.G(ctx).WithField("skill", doc.ID)

	if g.cache != nil && !force {
		cached, ok, err := g.cache.Get(doc.ID, g.client.Model())
		if err != nil {
			return nil, errors.Wrap(err, "reading suite cache")
		}
		if ok {
			log.WithField("tasks", len(cached.Tasks)).Debug("suite cache hit")
			return cached, nil
		}
	}

	log.Info("generating benchmark suite")
	inv, err := g.client.Invoke(ctx, generationSystemPrompt, buildGenerationPrompt(doc, g.counts))
	if err != nil {
		return nil, errors.Wrap(err, "suite generation call failed")
	}

	suite, err := g.parseSuite(doc, inv.Text)
	if err != nil {
		return nil, err
	}
	suite.GeneratorModel = inv.Model
	suite.GeneratedAt = time.Now().UTC()

	if g.cache != nil {
		if err := g.cache.Put(suite); err != nil {
			return nil, errors.Wrap(err, "persisting generated suite")
		}
	}

	log.WithField("tasks", len(suite.Tasks)).
		WithField("quality_prompts", len(suite.QualityPrompts)).
		Info("suite generated")
	return suite, nil
}

// parseSuite turns raw capability text into a validated Suite.
func (g *Generator) parseSuite(doc *models.SkillDocument, text string) (*models.Suite, error) {
	value, err := extractJSON(text)
	if err != nil {
		return nil, errors.Wrap(ErrGenerationMalformed, err.Error())
	}

	if failures := validatePayload(value); len(failures) > 0 {
		return nil, errors.Wrapf(ErrGenerationMalformed, "schema: %s", strings.Join(failures, "; "))
	}

	payload, err := decodePayload(value)
	if err != nil {
		return nil, errors.Wrap(ErrGenerationMalformed, err.Error())
	}

	suite := &models.Suite{
		SkillID: doc.ID,
		Claims:  payload.SkillClaims,
	}

	for i, gt := range payload.Tasks {
		criteria, err := models.ParseCriteria(gt.SuccessCriteria)
		if err != nil {
			return nil, errors.Wrapf(ErrGenerationMalformed, "task %d: %v", i+1, err)
		}
		id := gt.ID
		if id == "" {
			id = fmt.Sprintf("%s-task-%d", doc.ID, i+1)
		}
		suite.Tasks = append(suite.Tasks, models.Task{
			ID:         id,
			Difficulty: models.Difficulty(gt.Difficulty),
			Prompt:     gt.Prompt,
			OutputKind: models.OutputKind(gt.ExpectedOutputType),
			FileExt:    normalizeExt(gt.FileExt),
			Claim:      gt.TestsClaim,
			Criteria:   criteria,
		})
	}

	for i, qp := range payload.QualityPrompts {
		suite.QualityPrompts = append(suite.QualityPrompts, models.QualityPrompt{
			ID:     fmt.Sprintf("%s-quality-%d", doc.ID, i+1),
			Prompt: qp,
		})
	}

	for i, st := range payload.SelectivityTests {
		suite.SelectivityTests = append(suite.SelectivityTests, models.SelectivityTest{
			ID:          fmt.Sprintf("%s-selectivity-%d", doc.ID, i+1),
			Prompt:      st.Prompt,
			AvoidMarker: st.AvoidMarker,
		})
	}

	if err := suite.Validate(); err != nil {
		return nil, errors.Wrap(ErrGenerationMalformed, err.Error())
	}
	if err := checkTierCoverage(suite, g.counts); err != nil {
		return nil, errors.Wrap(ErrGenerationMalformed, err.Error())
	}
	return suite, nil
}

// checkTierCoverage requires every requested tier to be represented. The
// capability may miss exact counts, but an entire missing tier would skew
// the difficulty breakdown.
func checkTierCoverage(suite *models.Suite, counts Counts) error {
	requested := map[models.Difficulty]int{
		models.DifficultyEasy:   counts.Easy,
		models.DifficultyMedium: counts.Medium,
		models.DifficultyHard:   counts.Hard,
	}
	byTier := suite.TasksByDifficulty()
	for tier, want := range requested {
		if want > 0 && len(byTier[tier]) == 0 {
			return fmt.Errorf("no %s tasks generated", tier)
		}
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(strings.ToLower(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
