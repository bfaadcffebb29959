package verify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kalybrate/kalybrate/internal/models"
)

// applyFileCriterion routes a file-oriented criterion through the shared
// inspection. Existence is checked directly; everything else needs a format
// reader, and a missing reader is an unverifiable outcome, not a pass.
func applyFileCriterion(target Target, c models.Criterion, load func() (*inspection, error)) models.CriterionResult {
	if target.FilePath == "" {
		// no artifact materialized; existence-style criteria fail outright,
		// content criteria are moot for the same reason
		note := "no file artifact in work area"
		switch c.Name {
		case "file_created", "file_valid":
			return models.VerifiedResult(c.Name, !expectOrDefault(c), note)
		default:
			return models.VerifiedResult(c.Name, false, note)
		}
	}

	if c.Name == "file_created" {
		fi, err := os.Stat(target.FilePath)
		exists := err == nil && fi.Size() > 0
		return models.VerifiedResult(c.Name, exists == expectOrDefault(c), "")
	}

	insp, err := load()
	if err != nil {
		if isUnsupportedFormat(err) {
			return models.UnverifiableResult(c.Name,
				fmt.Sprintf("no reader for %s files", filepath.Ext(target.FilePath)))
		}
		// the file exists but the reader rejected it
		if c.Name == "file_valid" {
			return models.VerifiedResult(c.Name, !expectOrDefault(c), err.Error())
		}
		return models.VerifiedResult(c.Name, false, fmt.Sprintf("unreadable artifact: %v", err))
	}

	if c.Name == "file_valid" {
		return models.VerifiedResult(c.Name, expectOrDefault(c), "")
	}

	switch c.Kind {
	case models.CriterionThreshold:
		counter := counterForCriterion(c.Name)
		count, ok := insp.counters[counter]
		if !ok {
			return models.UnverifiableResult(c.Name,
				fmt.Sprintf("criterion %s not measurable for %s files", c.Name, filepath.Ext(target.FilePath)))
		}
		return thresholdResult(c, count)
	default:
		flag := flagForCriterion(c.Name)
		present, ok := insp.flags[flag]
		if !ok {
			return models.UnverifiableResult(c.Name,
				fmt.Sprintf("criterion %s not detectable for %s files", c.Name, filepath.Ext(target.FilePath)))
		}
		return models.VerifiedResult(c.Name, present == expectOrDefault(c), "")
	}
}

func counterForCriterion(name string) string {
	switch name {
	case "min_rows":
		return "rows"
	case "min_columns":
		return "columns"
	case "min_slides":
		return "slides"
	case "min_paragraphs":
		return "paragraphs"
	case "min_words":
		return "words"
	}
	return name
}

func flagForCriterion(name string) string {
	switch name {
	case "has_formula":
		return "formula"
	case "has_chart":
		return "chart"
	case "has_table":
		return "table"
	case "has_image", "has_images":
		return "image"
	}
	return name
}
