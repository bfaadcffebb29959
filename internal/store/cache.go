package store

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kalybrate/kalybrate/internal/models"
)

// SuiteCache is a read-through cache of generated benchmark suites, keyed by
// (skill id, generator model). A model change invalidates the key, so suites
// generated by different model versions never get mixed up.
type SuiteCache struct {
	store *Store
}

// SuiteCache returns the suite cache backed by this store.
func (s *Store) SuiteCache() *SuiteCache { return &SuiteCache{store: s} }

// cacheKey fingerprints the inputs the suite depends on. The null byte
// keeps ("a", "bc") and ("ab", "c") from colliding.
func cacheKey(skillID, generatorModel string) string {
	h := sha256.New()
	h.Write([]byte(skillID))
	h.Write([]byte{0})
	h.Write([]byte(generatorModel))
	return hex.EncodeToString(h.Sum(nil))
}

type cachedSuite struct {
	CacheKey string        `json:"cache_key"`
	Suite    *models.Suite `json:"suite"`
}

func (c *SuiteCache) path(skillID string) string {
	return filepath.Join(c.store.SkillDir(skillID), "suite.json")
}

// Get returns the cached suite when one exists under the exact key. A stale
// record (different generator model) is a miss, not an error.
func (c *SuiteCache) Get(skillID, generatorModel string) (*models.Suite, bool, error) {
	var rec cachedSuite
	if err := readJSON(c.path(skillID), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading cached suite for %s", skillID)
	}
	if rec.CacheKey != cacheKey(skillID, generatorModel) || rec.Suite == nil {
		return nil, false, nil
	}
	return rec.Suite, true, nil
}

// Put persists the suite under its cache key, atomically.
func (c *SuiteCache) Put(suite *models.Suite) error {
	rec := cachedSuite{
		CacheKey: cacheKey(suite.SkillID, suite.GeneratorModel),
		Suite:    suite,
	}
	return c.store.writeAtomic(c.path(suite.SkillID), rec)
}
