// Package store persists evaluation records as flat JSON files. Records are
// written atomically (temp file plus rename) and are self-describing: a
// score can be recomputed from the stored task and comparison records alone,
// with no capability access.
//
// Layout under the data root:
//
//	<root>/<skill-id>/suite.json
//	<root>/<skill-id>/tasks/<task-id>.json
//	<root>/<skill-id>/comparisons/<prompt-id>.json
//	<root>/<skill-id>/selectivity/<test-id>.json
//	<root>/<skill-id>/score.json
//	<root>/leaderboard.json
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kalybrate/kalybrate/internal/models"
)

// Store is a flat-file record store rooted at one data directory.
type Store struct {
	root string
	mu   sync.Mutex
}

// New opens a store at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating data dir %s", root)
	}
	return &Store{root: root}, nil
}

// Root returns the data directory.
func (s *Store) Root() string { return s.root }

// SkillDir returns the per-skill directory, without creating it.
func (s *Store) SkillDir(skillID string) string {
	return filepath.Join(s.root, sanitize(skillID))
}

// sanitize keeps record ids usable as file names.
func sanitize(id string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_", " ", "_")
	return replacer.Replace(id)
}

// writeAtomic serializes v and moves it into place with a rename, so readers
// never observe a half-written record.
func (s *Store) writeAtomic(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling record")
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp record")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing temp record")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp record")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "installing record %s", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SaveTaskResult persists one task attempt record. Re-running a task is an
// explicit operator action and replaces the record atomically.
func (s *Store) SaveTaskResult(r *models.TaskResult) error {
	path := filepath.Join(s.SkillDir(r.SkillID), "tasks", sanitize(r.TaskID)+".json")
	return s.writeAtomic(path, r)
}

// HasTaskResult reports whether a completed record exists for the task, so a
// resumed session can skip it.
func (s *Store) HasTaskResult(skillID, taskID string) bool {
	path := filepath.Join(s.SkillDir(skillID), "tasks", sanitize(taskID)+".json")
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// LoadTaskResults reads every task record for a skill.
func (s *Store) LoadTaskResults(skillID string) ([]models.TaskResult, error) {
	return loadDir[models.TaskResult](filepath.Join(s.SkillDir(skillID), "tasks"))
}

// SaveComparison persists one quality comparison record.
func (s *Store) SaveComparison(c *models.Comparison) error {
	path := filepath.Join(s.SkillDir(c.SkillID), "comparisons", sanitize(c.PromptID)+".json")
	return s.writeAtomic(path, c)
}

// HasComparison reports whether a record exists for the prompt.
func (s *Store) HasComparison(skillID, promptID string) bool {
	path := filepath.Join(s.SkillDir(skillID), "comparisons", sanitize(promptID)+".json")
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// LoadComparisons reads every comparison record for a skill.
func (s *Store) LoadComparisons(skillID string) ([]models.Comparison, error) {
	return loadDir[models.Comparison](filepath.Join(s.SkillDir(skillID), "comparisons"))
}

// SaveSelectivityResult persists one negative-probe record.
func (s *Store) SaveSelectivityResult(r *models.SelectivityResult) error {
	path := filepath.Join(s.SkillDir(r.SkillID), "selectivity", sanitize(r.TestID)+".json")
	return s.writeAtomic(path, r)
}

// LoadSelectivityResults reads every selectivity record for a skill.
func (s *Store) LoadSelectivityResults(skillID string) ([]models.SelectivityResult, error) {
	return loadDir[models.SelectivityResult](filepath.Join(s.SkillDir(skillID), "selectivity"))
}

// SaveScore persists the aggregate score record.
func (s *Store) SaveScore(score *models.SkillScore) error {
	return s.writeAtomic(filepath.Join(s.SkillDir(score.SkillID), "score.json"), score)
}

// LoadScore reads the aggregate score record for a skill.
func (s *Store) LoadScore(skillID string) (*models.SkillScore, error) {
	var score models.SkillScore
	if err := readJSON(filepath.Join(s.SkillDir(skillID), "score.json"), &score); err != nil {
		return nil, errors.Wrapf(err, "reading score for %s", skillID)
	}
	return &score, nil
}

// loadDir reads every .json record in dir, sorted by file name for stable
// output. A missing directory is an empty result, not an error.
func loadDir[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]T, 0, len(names))
	for _, name := range names {
		var rec T
		if err := readJSON(filepath.Join(dir, name), &rec); err != nil {
			return nil, errors.Wrapf(err, "reading record %s", name)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LeaderboardEntry is one ranked row of the cross-skill leaderboard.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	SkillID     string    `json:"skill_id"`
	Overall     *float64  `json:"overall,omitempty"`
	Grade       string    `json:"grade,omitempty"`
	Complete    bool      `json:"complete"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Leaderboard is the serialized leaderboard.json.
type Leaderboard struct {
	UpdatedAt time.Time          `json:"updated_at"`
	Entries   []LeaderboardEntry `json:"entries"`
}

func (s *Store) leaderboardPath() string { return filepath.Join(s.root, "leaderboard.json") }

// UpdateLeaderboard replaces the skill's leaderboard row, re-sorts by overall
// score (unscored skills last), renumbers ranks and rewrites atomically.
func (s *Store) UpdateLeaderboard(score *models.SkillScore) error {
	board, err := s.LoadLeaderboard()
	if err != nil {
		return err
	}

	entry := LeaderboardEntry{
		SkillID:     score.SkillID,
		Overall:     score.Overall,
		Grade:       score.Grade,
		Complete:    score.Complete,
		EvaluatedAt: score.EvaluatedAt,
	}

	replaced := false
	for i := range board.Entries {
		if board.Entries[i].SkillID == score.SkillID {
			board.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		board.Entries = append(board.Entries, entry)
	}

	sort.SliceStable(board.Entries, func(i, j int) bool {
		a, b := board.Entries[i].Overall, board.Entries[j].Overall
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	for i := range board.Entries {
		board.Entries[i].Rank = i + 1
	}
	board.UpdatedAt = time.Now().UTC()

	return s.writeAtomic(s.leaderboardPath(), board)
}

// LoadLeaderboard reads leaderboard.json, returning an empty board when none
// exists yet.
func (s *Store) LoadLeaderboard() (*Leaderboard, error) {
	var board Leaderboard
	if err := readJSON(s.leaderboardPath(), &board); err != nil {
		if os.IsNotExist(err) {
			return &Leaderboard{}, nil
		}
		return nil, errors.Wrap(err, "reading leaderboard")
	}
	return &board, nil
}
