package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/domain"
)

const cacheFileName = "catalog.snapshot.json"

// catalogSnapshot is the on-disk merged-catalog cache. It is valid only
// while every source brand file still has the recorded mtime.
type catalogSnapshot struct {
	Sources map[string]int64      `json:"sources"`
	Models  []domain.ProductModel `json:"models"`
}

// LoadCatalogCached behaves like LoadCatalog but reuses a merged snapshot
// under cacheDir when the brand files are unchanged. A corrupt or stale
// snapshot is ignored and rebuilt; cache write failures are non-fatal.
func LoadCatalogCached(dir, cacheDir string, logger *zap.Logger) (*Catalog, error) {
	if cacheDir == "" {
		return LoadCatalog(dir, logger)
	}

	sources, err := sourceMTimes(dir)
	if err != nil {
		return nil, err
	}

	cachePath := filepath.Join(cacheDir, cacheFileName)
	if snap := readSnapshot(cachePath); snap != nil && sourcesMatch(snap.Sources, sources) {
		c, err := newCatalog(snap.Models, dir, logger)
		if err == nil {
			logger.Info("loaded product catalog from cache", zap.String("cache", cachePath))
			return c, nil
		}
		logger.Warn("catalog cache unusable, rebuilding", zap.Error(err))
	}

	models, err := readBrandFiles(dir)
	if err != nil {
		return nil, err
	}
	c, err := newCatalog(models, dir, logger)
	if err != nil {
		return nil, err
	}

	writeSnapshot(cachePath, &catalogSnapshot{Sources: sources, Models: models}, logger)
	return c, nil
}

func sourceMTimes(dir string) (map[string]int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sources := make(map[string]int64)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		sources[entry.Name()] = info.ModTime().UnixNano()
	}
	return sources, nil
}

func readSnapshot(path string) *catalogSnapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var snap catalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	return &snap
}

func sourcesMatch(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for name, mtime := range a {
		if b[name] != mtime {
			return false
		}
	}
	return true
}

func writeSnapshot(path string, snap *catalogSnapshot, logger *zap.Logger) {
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Warn("failed to encode catalog cache", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("failed to create cache dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("failed to write catalog cache", zap.Error(err))
	}
}
