package comparator

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/models"
)

func testDoc() *models.SkillDocument {
	return &models.SkillDocument{ID: "excel-builder", Name: "Excel Builder", Content: "# Excel Builder"}
}

// judgePreferring returns a judge that always picks the position holding
// marker.
func judgePreferring(marker string) *capability.ScriptedClient {
	return &capability.ScriptedClient{
		ModelID: "judge-model",
		Respond: func(system, prompt string) (string, error) {
			aStart := strings.Index(prompt, "Response A:")
			bStart := strings.Index(prompt, "Response B:")
			sectionA := prompt[aStart:bStart]
			if strings.Contains(sectionA, marker) {
				return `{"verdict": "A", "reasoning": "A is better"}`, nil
			}
			return `{"verdict": "B", "reasoning": "B is better"}`, nil
		},
	}
}

// responder answers differently with and without the skill context.
func testResponder() *capability.ScriptedClient {
	return &capability.ScriptedClient{
		ModelID: "cheap-model",
		Respond: func(system, prompt string) (string, error) {
			if system != "" {
				return "SKILL-ARM answer with spreadsheet expertise", nil
			}
			return "plain baseline answer", nil
		},
	}
}

func TestCompareVerdictStableUnderBothOrders(t *testing.T) {
	prompt := models.QualityPrompt{ID: "q-1", Prompt: "Help me budget"}

	// the judge always prefers the skill arm's content, wherever it sits
	for _, skillFirst := range []bool{true, false} {
		c := New(testResponder(), judgePreferring("SKILL-ARM"),
			WithCoin(func() bool { return skillFirst }))

		cmp := c.Compare(context.Background(), testDoc(), prompt)

		require.Empty(t, cmp.Error)
		assert.Equal(t, skillFirst, cmp.SkillFirst)
		assert.Equal(t, models.VerdictSkill, cmp.Verdict, "skillFirst=%v", skillFirst)
		assert.True(t, cmp.Scoreable())
	}
}

func TestCompareBaselineWinStableUnderBothOrders(t *testing.T) {
	prompt := models.QualityPrompt{ID: "q-1", Prompt: "Help me budget"}

	for _, skillFirst := range []bool{true, false} {
		c := New(testResponder(), judgePreferring("plain baseline"),
			WithCoin(func() bool { return skillFirst }))

		cmp := c.Compare(context.Background(), testDoc(), prompt)
		require.Empty(t, cmp.Error)
		assert.Equal(t, models.VerdictBaseline, cmp.Verdict, "skillFirst=%v", skillFirst)
	}
}

func TestCompareRecordsBothResponsesAndOrder(t *testing.T) {
	c := New(testResponder(), judgePreferring("SKILL-ARM"),
		WithCoin(func() bool { return false }))

	cmp := c.Compare(context.Background(), testDoc(), models.QualityPrompt{ID: "q-1", Prompt: "Help me budget"})

	assert.Contains(t, cmp.SkillResponse, "SKILL-ARM")
	assert.Contains(t, cmp.BaselineResponse, "baseline")
	assert.False(t, cmp.SkillFirst)
	assert.Equal(t, "judge-model", cmp.JudgeModel)
	assert.Equal(t, "cheap-model", cmp.ResponderModel)
	assert.Greater(t, cmp.SkillTokens, 0)
	assert.Greater(t, cmp.BaselineTokens, 0)
	assert.NotEmpty(t, cmp.Rationale)
}

func TestCompareJudgeGarbleIsTie(t *testing.T) {
	judge := &capability.ScriptedClient{Responses: []string{"I really cannot decide between these two."}}
	c := New(testResponder(), judge, WithCoin(func() bool { return true }))

	cmp := c.Compare(context.Background(), testDoc(), models.QualityPrompt{ID: "q-1", Prompt: "p"})
	require.Empty(t, cmp.Error)
	assert.Equal(t, models.VerdictTie, cmp.Verdict)
}

func TestCompareResponderErrorIsAbsorbed(t *testing.T) {
	responder := &capability.ScriptedClient{Err: errors.New("provider down")}
	c := New(responder, judgePreferring("x"))

	cmp := c.Compare(context.Background(), testDoc(), models.QualityPrompt{ID: "q-1", Prompt: "p"})
	assert.Contains(t, cmp.Error, "skill arm")
	assert.False(t, cmp.Scoreable())
	assert.Empty(t, cmp.Verdict)
}

func TestDecodeVerdict(t *testing.T) {
	tests := []struct {
		positional string
		skillFirst bool
		want       models.Verdict
	}{
		{"a", true, models.VerdictSkill},
		{"a", false, models.VerdictBaseline},
		{"b", true, models.VerdictBaseline},
		{"b", false, models.VerdictSkill},
		{"A", true, models.VerdictSkill},
		{" B ", false, models.VerdictSkill},
		{"tie", true, models.VerdictTie},
		{"tie", false, models.VerdictTie},
		{"", true, models.VerdictTie},
		{"garbage", false, models.VerdictTie},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeVerdict(tt.positional, tt.skillFirst),
			"positional=%q skillFirst=%v", tt.positional, tt.skillFirst)
	}
}

func TestParseVerdict(t *testing.T) {
	v, r := parseVerdict(`Sure. {"verdict": "B", "reasoning": "more complete"} hope that helps`)
	assert.Equal(t, "B", v)
	assert.Equal(t, "more complete", r)

	v, _ = parseVerdict("tie")
	assert.Equal(t, "tie", v)

	v, _ = parseVerdict("no verdict anywhere")
	assert.Equal(t, "", v)
}
