package runner

import (
	"os"
	"path/filepath"
	"strings"
)

// createWorkArea makes the per-task scratch directory. Work areas are kept
// after the run; produced artifacts are evidence for the stored records.
func (r *Runner) createWorkArea(taskID string) (string, error) {
	if r.workRoot == "" {
		return os.MkdirTemp("", "kalybrate-"+sanitizeDirName(taskID)+"-")
	}
	dir := filepath.Join(r.workRoot, sanitizeDirName(taskID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func sanitizeDirName(id string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
}

// findArtifact returns the newest regular file under dir matching the
// expected extension, or any file when no extension was declared. Empty
// string means nothing materialized.
func findArtifact(dir, ext string) string {
	var newest string
	var newestMod int64

	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() == 0 {
			return nil
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = path, mod
		}
		return nil
	})
	return newest
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
