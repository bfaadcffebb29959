package skilldoc

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// claim bullets shorter than this are headings-in-disguise or noise
const minClaimLength = 12

const maxClaims = 20

// ExtractClaims recovers capability claims from a skill document body by
// walking the markdown AST and collecting list-item text. Claims steer
// benchmark generation toward what the document actually promises; an empty
// result is fine, the generator then works from the full body alone.
func ExtractClaims(body string) []string {
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var claims []string
	seen := make(map[string]bool)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		claim := strings.TrimSpace(itemText(item, src))
		if len(claim) < minClaimLength || seen[claim] {
			// skip the nested children too, they belong to this bullet
			return ast.WalkSkipChildren, nil
		}
		seen[claim] = true
		claims = append(claims, claim)
		if len(claims) >= maxClaims {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	return claims
}

// itemText flattens the text content of a list item's first paragraph line.
func itemText(item ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.List:
			// nested lists are separate bullets
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
