package generator

import (
	"fmt"
	"strings"

	"github.com/kalybrate/kalybrate/internal/models"
)

const generationSystemPrompt = `You design rigorous benchmarks for AI skills. ` +
	`You respond with a single JSON object and nothing else: no prose, no markdown fences.`

// criteriaCatalog lists every criterion name an oracle exists for, with the
// value type the generator must use. Names outside this catalog are accepted
// but end up unverifiable, so the prompt discourages them.
const criteriaCatalog = `Available success criteria (use only these names):
  file_created (bool)        - an output file was produced
  file_valid (bool)          - the file opens with a format-appropriate reader
  has_formula (bool)         - spreadsheet contains at least one formula
  has_chart (bool)           - document contains a chart
  has_table (bool)           - document contains a table
  has_images (bool)          - document contains an image
  min_rows (number)          - spreadsheet row count minimum
  min_columns (number)       - spreadsheet column count minimum
  min_slides (number)        - presentation slide count minimum
  min_paragraphs (number)    - document/text paragraph count minimum
  min_words (number)         - document/text word count minimum
  code_extracted (bool)      - response contains a fenced code block
  code_compiles (bool)       - extracted code passes a syntax check
  has_type_annotations (bool)- extracted code uses type annotations
  has_docstrings (bool)      - extracted code documents its functions
  response_exists (bool)     - response is non-blank
Any string-valued criterion is treated as a required substring of the output.`

// buildGenerationPrompt renders the task-synthesis request for one skill.
func buildGenerationPrompt(doc *models.SkillDocument, counts Counts) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Design a benchmark suite for the skill %q.\n\n", doc.Name)
	if doc.Description != "" {
		fmt.Fprintf(&sb, "Skill description: %s\n\n", doc.Description)
	}

	if len(doc.Claims) > 0 {
		sb.WriteString("The skill document makes these claims:\n")
		for _, claim := range doc.Claims {
			fmt.Fprintf(&sb, "  - %s\n", claim)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Full skill document:\n---\n")
	sb.WriteString(doc.Content)
	sb.WriteString("\n---\n\n")

	fmt.Fprintf(&sb,
		"Produce %d easy, %d medium and %d hard tasks that exercise the claims above, "+
			"plus %d realistic open-ended quality prompts a user might actually ask, "+
			"plus %d selectivity tests: prompts OUTSIDE this skill's specialty where a "+
			"good response must NOT force the skill's specialty output format.\n\n",
		counts.Easy, counts.Medium, counts.Hard, counts.QualityPrompts, counts.SelectivityTests)

	sb.WriteString(criteriaCatalog)
	sb.WriteString("\n\n")

	sb.WriteString(`Respond with exactly this JSON structure:
{
  "skill_claims": ["claim the suite tests", ...],
  "tasks": [
    {
      "id": "short-slug",
      "difficulty": "easy|medium|hard",
      "prompt": "the task given to the model under test",
      "expected_output_type": "file|code|text",
      "file_ext": ".xlsx",
      "tests_claim": "which claim this task exercises",
      "success_criteria": {"file_created": true, "min_rows": 10}
    }
  ],
  "quality_prompts": ["open-ended prompt", ...],
  "selectivity_tests": [
    {"prompt": "off-topic request", "avoid_marker": "telltale substring of overreach"}
  ]
}
Every task needs at least one success criterion. Omit file_ext for code and text tasks.`)

	return sb.String()
}
