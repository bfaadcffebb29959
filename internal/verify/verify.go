// Package verify applies deterministic oracles to task outputs. Every
// criterion gets exactly one result: a definite pass/fail when an oracle
// could check it, or an unverifiable result carrying the reason when none
// could. An oracle is never allowed to silently pass what it cannot check.
package verify

import (
	"fmt"
	"strings"

	"github.com/kalybrate/kalybrate/internal/models"
)

// Target is the classified output a task attempt produced.
type Target struct {
	Kind     models.OutputKind
	Response string
	// FilePath is the materialized artifact for file targets. Empty when the
	// task expected a file but none appeared in the work area.
	FilePath string
	// Code and Language carry the selected fenced region for code targets.
	Code     string
	Language string
}

// Apply checks every criterion against the target, one result per criterion,
// in the order given.
func Apply(target Target, criteria []models.Criterion) []models.CriterionResult {
	results := make([]models.CriterionResult, 0, len(criteria))

	var insp *inspection
	var inspErr error
	inspected := false
	// the file is opened once and the inspection shared across criteria
	loadInspection := func() (*inspection, error) {
		if !inspected {
			inspected = true
			if target.FilePath != "" {
				insp, inspErr = inspectFile(target.FilePath)
			}
		}
		return insp, inspErr
	}

	for _, c := range criteria {
		results = append(results, applyOne(target, c, loadInspection))
	}
	return results
}

func applyOne(target Target, c models.Criterion, load func() (*inspection, error)) models.CriterionResult {
	switch c.Name {
	case "response_exists":
		return models.VerifiedResult(c.Name, strings.TrimSpace(target.Response) != "", "")
	case "file_created", "file_valid",
		"has_formula", "has_chart", "has_table", "has_image", "has_images",
		"min_rows", "min_columns", "min_slides":
		return applyFileCriterion(target, c, load)
	case "min_paragraphs", "min_words":
		if target.FilePath != "" {
			return applyFileCriterion(target, c, load)
		}
		return applyTextThreshold(target.Response, c)
	case "code_extracted", "code_compiles", "has_type_annotations", "has_docstrings":
		return applyCodeCriterion(target, c)
	}

	if c.Kind == models.CriterionPattern {
		return applyPattern(target, c)
	}
	return models.UnverifiableResult(c.Name, fmt.Sprintf("no oracle registered for criterion %q", c.Name))
}

// applyPattern checks a marker substring against everything the attempt
// produced: the response text and, for code targets, the selected region.
func applyPattern(target Target, c models.Criterion) models.CriterionResult {
	haystack := target.Response
	if target.Code != "" {
		haystack += "\n" + target.Code
	}
	found := strings.Contains(strings.ToLower(haystack), strings.ToLower(c.Pattern))
	passed := found == expectOrDefault(c)
	return models.VerifiedResult(c.Name, passed, "")
}

// applyTextThreshold measures prose counts on the raw response.
func applyTextThreshold(response string, c models.Criterion) models.CriterionResult {
	var count int
	switch c.Name {
	case "min_words":
		count = len(strings.Fields(response))
	case "min_paragraphs":
		count = countProseParagraphs(response)
	}
	return thresholdResult(c, count)
}

func countProseParagraphs(response string) int {
	count := 0
	for _, block := range strings.Split(response, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

func thresholdResult(c models.Criterion, count int) models.CriterionResult {
	passed := float64(count) >= c.Minimum
	return models.VerifiedResult(c.Name, passed, fmt.Sprintf("measured %d, minimum %v", count, c.Minimum))
}

// expectOrDefault returns the expected outcome for a criterion; criteria
// parsed from non-boolean JSON values default to expecting presence.
func expectOrDefault(c models.Criterion) bool {
	if c.Kind == models.CriterionBoolean {
		return c.Expect
	}
	return true
}
