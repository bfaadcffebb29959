// Package comparator runs A/B quality comparisons. Both arms answer the
// same prompt, the presentation order is randomized per comparison, the
// judge only ever sees positional labels, and the verdict is de-mapped back
// to logical arms using the recorded order. The order itself is persisted so
// position bias stays auditable.
package comparator

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/logger"
	"github.com/kalybrate/kalybrate/internal/models"
)

// Comparator drives one comparison at a time.
type Comparator struct {
	responder capability.Client
	judge     capability.Client
	// coin decides whether the skill response is presented first
	coin func() bool
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithCoin overrides the order randomizer. Tests use it to force both
// presentation orders.
func WithCoin(coin func() bool) Option {
	return func(c *Comparator) { c.coin = coin }
}

// New builds a Comparator. responder answers prompts (cheap tier), judge
// decides comparisons (smart tier).
func New(responder, judge capability.Client, opts ...Option) *Comparator {
	c := &Comparator{
		responder: responder,
		judge:     judge,
		// the top-level rand functions are safe for concurrent comparisons
		coin: func() bool { return rand.Intn(2) == 0 },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare runs one quality prompt through both arms and the judge. Errors in
// either arm are absorbed into the record; an errored comparison never
// counts toward the win rate.
func (c *Comparator) Compare(ctx context.Context, doc *models.SkillDocument, prompt models.QualityPrompt) *models.Comparison {
	log := logger.G(ctx).WithField("skill", doc.ID).WithField("prompt", prompt.ID)
	started := time.Now()

	cmp := &models.Comparison{
		PromptID:       prompt.ID,
		SkillID:        doc.ID,
		Prompt:         prompt.Prompt,
		ResponderModel: c.responder.Model(),
		JudgeModel:     c.judge.Model(),
		StartedAt:      started.UTC(),
	}
	finish := func() *models.Comparison {
		cmp.DurationMS = time.Since(started).Milliseconds()
		return cmp
	}
	fail := func(stage string, err error) *models.Comparison {
		cmp.Error = stage + ": " + err.Error()
		log.WithError(err).WithField("stage", stage).Warn("comparison failed")
		return finish()
	}

	skillInv, err := c.responder.Invoke(ctx, doc.Content, prompt.Prompt)
	if err != nil {
		return fail("skill arm", err)
	}
	baseInv, err := c.responder.Invoke(ctx, "", prompt.Prompt)
	if err != nil {
		return fail("baseline arm", err)
	}

	cmp.SkillResponse = skillInv.Text
	cmp.BaselineResponse = baseInv.Text
	cmp.SkillTokens = capability.FillUsage(skillInv.Usage, doc.Content+prompt.Prompt, skillInv.Text).Total()
	cmp.BaselineTokens = capability.FillUsage(baseInv.Usage, prompt.Prompt, baseInv.Text).Total()

	// randomize which arm the judge sees as candidate A
	cmp.SkillFirst = c.coin()
	first, second := skillInv.Text, baseInv.Text
	if !cmp.SkillFirst {
		first, second = second, first
	}

	judgeInv, err := c.judge.Invoke(ctx, judgeSystemPrompt, buildJudgePrompt(prompt.Prompt, first, second))
	if err != nil {
		return fail("judge", err)
	}

	verdict, rationale := parseVerdict(judgeInv.Text)
	cmp.Verdict = DecodeVerdict(verdict, cmp.SkillFirst)
	cmp.Rationale = rationale

	log.WithField("verdict", cmp.Verdict).WithField("skill_first", cmp.SkillFirst).Debug("comparison judged")
	return finish()
}

// DecodeVerdict maps a positional verdict ("a", "b" or "tie") onto logical
// arms given the recorded presentation order. Anything unparseable is a tie;
// guessing a winner from a garbled verdict would bias the rate.
func DecodeVerdict(positional string, skillFirst bool) models.Verdict {
	switch strings.ToLower(strings.TrimSpace(positional)) {
	case "a":
		if skillFirst {
			return models.VerdictSkill
		}
		return models.VerdictBaseline
	case "b":
		if skillFirst {
			return models.VerdictBaseline
		}
		return models.VerdictSkill
	default:
		return models.VerdictTie
	}
}
