package models

import (
	"fmt"
	"sort"
)

// CriterionKind discriminates the typed forms a success criterion can take.
type CriterionKind string

const (
	// CriterionBoolean expects a named check to hold (or not hold).
	CriterionBoolean CriterionKind = "boolean"
	// CriterionThreshold expects a measured quantity to meet a minimum.
	CriterionThreshold CriterionKind = "threshold"
	// CriterionPattern expects a substring or marker to be present.
	CriterionPattern CriterionKind = "pattern"
)

// Criterion is a single success criterion attached to a task. Exactly one of
// the kind-specific fields is meaningful, selected by Kind.
type Criterion struct {
	// Name identifies the check, e.g. "file_created", "min_rows", "has_formula".
	Name string        `json:"name"`
	Kind CriterionKind `json:"kind"`
	// Expect is the desired outcome for boolean criteria.
	Expect bool `json:"expect,omitempty"`
	// Minimum is the inclusive lower bound for threshold criteria.
	Minimum float64 `json:"minimum,omitempty"`
	// Pattern is the marker text for pattern criteria.
	Pattern string `json:"pattern,omitempty"`
}

// BooleanCriterion builds a criterion that requires check name to equal expect.
func BooleanCriterion(name string, expect bool) Criterion {
	return Criterion{Name: name, Kind: CriterionBoolean, Expect: expect}
}

// ThresholdCriterion builds a criterion that requires a measured count >= minimum.
func ThresholdCriterion(name string, minimum float64) Criterion {
	return Criterion{Name: name, Kind: CriterionThreshold, Minimum: minimum}
}

// PatternCriterion builds a criterion that requires pattern to appear in the output.
func PatternCriterion(name, pattern string) Criterion {
	return Criterion{Name: name, Kind: CriterionPattern, Pattern: pattern}
}

// ParseCriteria converts a loosely-typed criteria object, as produced by the
// generation capability, into typed criteria. The JSON value type selects the
// kind: booleans become boolean criteria, numbers become thresholds, strings
// become patterns. Keys are emitted in sorted order so parsing is stable.
func ParseCriteria(raw map[string]any) ([]Criterion, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	criteria := make([]Criterion, 0, len(raw))
	for _, name := range names {
		switch v := raw[name].(type) {
		case bool:
			criteria = append(criteria, BooleanCriterion(name, v))
		case float64:
			criteria = append(criteria, ThresholdCriterion(name, v))
		case int:
			criteria = append(criteria, ThresholdCriterion(name, float64(v)))
		case string:
			criteria = append(criteria, PatternCriterion(name, v))
		default:
			return nil, fmt.Errorf("criterion %q has unsupported value type %T", name, raw[name])
		}
	}
	return criteria, nil
}

// CriterionStatus records whether a criterion could actually be checked.
type CriterionStatus string

const (
	// CriterionVerified means an oracle ran and produced a definite pass/fail.
	CriterionVerified CriterionStatus = "verified"
	// CriterionUnverifiable means no oracle could check the criterion. The
	// Passed field carries no meaning for unverifiable results.
	CriterionUnverifiable CriterionStatus = "unverifiable"
)

// CriterionResult is the outcome of applying one oracle to one criterion.
type CriterionResult struct {
	Name   string          `json:"name"`
	Status CriterionStatus `json:"status"`
	Passed bool            `json:"passed"`
	// Note explains an unverifiable status or a heuristic check.
	Note string `json:"note,omitempty"`
}

// Verified reports whether the result came from a real oracle check.
func (cr CriterionResult) Verified() bool { return cr.Status == CriterionVerified }

// VerifiedResult builds a definite pass/fail criterion result.
func VerifiedResult(name string, passed bool, note string) CriterionResult {
	return CriterionResult{Name: name, Status: CriterionVerified, Passed: passed, Note: note}
}

// UnverifiableResult builds a result for a criterion no oracle could check.
// The note is required; a silent unverifiable result is useless for auditing.
func UnverifiableResult(name, note string) CriterionResult {
	if note == "" {
		note = "no oracle available"
	}
	return CriterionResult{Name: name, Status: CriterionUnverifiable, Note: note}
}
