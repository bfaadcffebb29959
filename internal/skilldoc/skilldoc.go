// Package skilldoc fetches and parses skill documents. A skill document is a
// SKILL.md file: YAML frontmatter (name, description) followed by a markdown
// body that becomes the system context for the skill arm of an evaluation.
package skilldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kalybrate/kalybrate/internal/models"
)

// ErrMalformedSkillDocument means a skill document could not be parsed into
// a usable form. Evaluation of that skill cannot proceed.
var ErrMalformedSkillDocument = errors.New("malformed skill document")

// ErrSkillNotFound means no document exists for the requested skill id.
var ErrSkillNotFound = errors.New("skill not found")

// Fetcher retrieves skill documents by id. Discovery itself (registries,
// remote catalogs) lives behind this interface; the engine only ever asks
// for one document at a time.
type Fetcher interface {
	Fetch(ctx context.Context, skillID string) (*models.SkillDocument, error)
}

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Parse converts raw SKILL.md bytes into a SkillDocument. The document must
// be valid UTF-8, carry parseable frontmatter, and have a non-blank body.
func Parse(skillID string, data []byte) (*models.SkillDocument, error) {
	if !utf8.Valid(data) {
		return nil, errors.Wrap(ErrMalformedSkillDocument, "content is not valid UTF-8")
	}

	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, errors.Wrap(ErrMalformedSkillDocument, err.Error())
	}

	var meta frontmatter
	if fm != "" {
		if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
			return nil, errors.Wrapf(ErrMalformedSkillDocument, "frontmatter: %v", err)
		}
	}

	if strings.TrimSpace(body) == "" {
		return nil, errors.Wrap(ErrMalformedSkillDocument, "document body is empty")
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = skillID
	}

	return &models.SkillDocument{
		ID:          skillID,
		Name:        name,
		Description: strings.TrimSpace(meta.Description),
		Content:     body,
		Claims:      ExtractClaims(body),
	}, nil
}

// splitFrontmatter separates an optional leading YAML frontmatter block from
// the markdown body. A document that opens a frontmatter fence must close it.
func splitFrontmatter(content string) (fm, body string, err error) {
	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return "", content, nil
	}

	rest := strings.TrimPrefix(content, "---\n")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter block")
	}

	fm = rest[:idx]
	body = rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}

// DirFetcher reads skill documents from a directory tree laid out as
// <root>/<skill-id>/SKILL.md.
type DirFetcher struct {
	root string
}

// NewDirFetcher builds a fetcher rooted at the given skills directory.
func NewDirFetcher(root string) *DirFetcher {
	return &DirFetcher{root: root}
}

func (f *DirFetcher) Fetch(ctx context.Context, skillID string) (*models.SkillDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.root, skillID, "SKILL.md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrSkillNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	return Parse(skillID, data)
}

// List returns the skill ids available under the fetcher's root.
func (f *DirFetcher) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading skills dir %s", f.root)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(f.root, entry.Name(), "SKILL.md")); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}
