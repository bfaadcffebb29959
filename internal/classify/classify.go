// Package classify decides what kind of artifact a task response produced
// and, for code responses, which fenced region is the candidate artifact.
package classify

import (
	"strings"

	"github.com/kalybrate/kalybrate/internal/models"
)

// Region is one fenced code block from a response.
type Region struct {
	Language string
	Body     string
}

// languages with a syntax checker or a strong enough convention that a
// tagged region should be treated as code rather than formatted text
var codeLanguages = map[string]bool{
	"go":         true,
	"golang":     true,
	"python":     true,
	"py":         true,
	"javascript": true,
	"js":         true,
	"typescript": true,
	"ts":         true,
	"java":       true,
	"c":          true,
	"cpp":        true,
	"c++":        true,
	"csharp":     true,
	"rust":       true,
	"ruby":       true,
	"swift":      true,
	"kotlin":     true,
	"php":        true,
	"sql":        true,
	"bash":       true,
	"sh":         true,
	"json":       true,
}

// regions below this size are usually inline examples, not the deliverable
const minRegionLength = 80

// Regions extracts fenced code blocks in document order.
func Regions(response string) []Region {
	var regions []Region

	lines := strings.Split(response, "\n")
	var (
		inFence bool
		lang    string
		body    []string
	)
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				regions = append(regions, Region{
					Language: lang,
					Body:     strings.Join(body, "\n"),
				})
				inFence, lang, body = false, "", nil
				continue
			}
			inFence = true
			lang = normalizeLang(strings.TrimPrefix(trimmed, "```"))
			continue
		}
		if inFence {
			body = append(body, line)
		}
	}
	// an unterminated fence still counts; the model just forgot to close it
	if inFence && len(body) > 0 {
		regions = append(regions, Region{Language: lang, Body: strings.Join(body, "\n")})
	}
	return regions
}

func normalizeLang(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, " \t"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// BestRegion selects the candidate artifact among regions: first region with
// a recognized code language tag, else the first substantial region, else
// the first region. Returns false when there are no regions at all.
func BestRegion(regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}
	for _, r := range regions {
		if codeLanguages[r.Language] {
			return r, true
		}
	}
	for _, r := range regions {
		if len(r.Body) >= minRegionLength {
			return r, true
		}
	}
	return regions[0], true
}

// Classify determines the output kind of a response. A materialized file in
// the work area always wins: when a declared output file exists, the file is
// the deliverable and any code in the response is just how it got made.
func Classify(response string, fileMaterialized bool) models.OutputKind {
	if fileMaterialized {
		return models.OutputFile
	}
	if regions := Regions(response); len(regions) > 0 {
		if _, ok := BestRegion(regions); ok {
			return models.OutputCode
		}
	}
	return models.OutputText
}

// IsCodeLanguage reports whether the language tag names a programming
// language the engine recognizes.
func IsCodeLanguage(lang string) bool { return codeLanguages[normalizeLang(lang)] }
