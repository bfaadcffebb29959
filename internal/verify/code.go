package verify

import (
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/kalybrate/kalybrate/internal/models"
)

// applyCodeCriterion routes code-oriented criteria. The extraction and
// syntax checks are definite; the annotation and docstring checks are
// pattern heuristics and say so in their notes.
func applyCodeCriterion(target Target, c models.Criterion) models.CriterionResult {
	extracted := strings.TrimSpace(target.Code) != ""

	switch c.Name {
	case "code_extracted":
		return models.VerifiedResult(c.Name, extracted == expectOrDefault(c), "")

	case "code_compiles":
		if !extracted {
			return models.VerifiedResult(c.Name, false, "no code region extracted")
		}
		return checkSyntax(c, target.Code, target.Language)

	case "has_type_annotations":
		if !extracted {
			return models.VerifiedResult(c.Name, false, "no code region extracted")
		}
		found := typeAnnotationRe.MatchString(target.Code)
		return models.VerifiedResult(c.Name, found == expectOrDefault(c), "heuristic pattern match")

	case "has_docstrings":
		if !extracted {
			return models.VerifiedResult(c.Name, false, "no code region extracted")
		}
		found := docstringRe.MatchString(target.Code)
		return models.VerifiedResult(c.Name, found == expectOrDefault(c), "heuristic pattern match")
	}

	return models.UnverifiableResult(c.Name, fmt.Sprintf("no code oracle for criterion %q", c.Name))
}

// checkSyntax runs a real syntax check where one exists. Go snippets go
// through go/parser; JSON through encoding/json. Other languages have no
// in-process checker, so the criterion is unverifiable rather than assumed.
func checkSyntax(c models.Criterion, code, language string) models.CriterionResult {
	switch strings.ToLower(language) {
	case "go", "golang":
		src := code
		if !strings.Contains(src, "package ") {
			// fenced snippets routinely omit the package clause
			src = "package main\n\n" + src
		}
		_, err := parser.ParseFile(token.NewFileSet(), "snippet.go", src, parser.AllErrors)
		if err != nil {
			return models.VerifiedResult(c.Name, !expectOrDefault(c), err.Error())
		}
		return models.VerifiedResult(c.Name, expectOrDefault(c), "")

	case "json":
		valid := json.Valid([]byte(code))
		return models.VerifiedResult(c.Name, valid == expectOrDefault(c), "")

	default:
		lang := language
		if lang == "" {
			lang = "untagged"
		}
		return models.UnverifiableResult(c.Name, fmt.Sprintf("no syntax checker for %s code", lang))
	}
}

var (
	// ": type" after an identifier, "-> type" returns, or generic brackets;
	// loose on purpose, it spans TypeScript and annotated Python
	typeAnnotationRe = regexp.MustCompile(`\w\s*:\s*[A-Za-z_][\w.\[\]<>|]*|->\s*[A-Za-z_]`)

	// triple-quoted strings, JSDoc blocks, or doc-comment lines
	docstringRe = regexp.MustCompile(`"""|'''|/\*\*|^\s*///`)
)
